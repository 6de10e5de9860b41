package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolportal/internal/account"
	"schoolportal/internal/attendance"
	"schoolportal/internal/config"
	"schoolportal/internal/contributors"
	"schoolportal/internal/homework"
	"schoolportal/internal/progress"
	"schoolportal/internal/roster"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// In-memory repositories backing the handler under test.

type memAccounts struct {
	accounts map[string]account.Account
	byEmail  map[string]string
	tokens   map[string]account.RefreshToken
}

func newMemAccounts() *memAccounts {
	return &memAccounts{
		accounts: map[string]account.Account{},
		byEmail:  map[string]string{},
		tokens:   map[string]account.RefreshToken{},
	}
}

func (m *memAccounts) Create(_ context.Context, a account.Account) error {
	if _, taken := m.byEmail[a.Email]; taken {
		return account.ErrEmailTaken
	}
	a.CreatedAt = time.Now()
	m.accounts[a.ID] = a
	m.byEmail[a.Email] = a.ID
	return nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (account.Account, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return m.accounts[id], nil
}

func (m *memAccounts) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return a, nil
}

func (m *memAccounts) ListByStatus(_ context.Context, status string) ([]account.Account, error) {
	out := []account.Account{}
	for _, a := range m.accounts {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAccounts) SetStatus(_ context.Context, id, status string) error {
	a, ok := m.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	a.Status = status
	m.accounts[id] = a
	return nil
}

func (m *memAccounts) SaveRefreshToken(_ context.Context, t account.RefreshToken) error {
	m.tokens[t.Token] = t
	return nil
}

func (m *memAccounts) GetRefreshToken(_ context.Context, token string) (account.RefreshToken, error) {
	t, ok := m.tokens[token]
	if !ok {
		return account.RefreshToken{}, account.ErrInvalidRefresh
	}
	return t, nil
}

func (m *memAccounts) RevokeRefreshToken(_ context.Context, token string) error {
	t, ok := m.tokens[token]
	if !ok {
		return account.ErrInvalidRefresh
	}
	t.Revoked = true
	m.tokens[token] = t
	return nil
}

func (m *memAccounts) DashboardCounts(context.Context) (account.DashboardCounts, error) {
	counts := account.DashboardCounts{}
	for _, a := range m.accounts {
		switch a.Status {
		case account.StatusVerified:
			counts.VerifiedTeachers++
		case account.StatusPending:
			counts.PendingTeachers++
		}
	}
	return counts, nil
}

type memRoster struct {
	accounts *memAccounts
	students map[string]roster.Student
}

func newMemRoster(accounts *memAccounts) *memRoster {
	return &memRoster{accounts: accounts, students: map[string]roster.Student{}}
}

func (m *memRoster) ListStudents(context.Context) ([]roster.Student, error) {
	out := []roster.Student{}
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, nil
}

func (m *memRoster) GetStudent(_ context.Context, id string) (roster.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return roster.Student{}, roster.ErrNotFound
	}
	return s, nil
}

func (m *memRoster) CreateStudent(_ context.Context, s roster.Student) error {
	for _, existing := range m.students {
		if existing.RollNumber == s.RollNumber {
			return roster.ErrDuplicateRoll
		}
	}
	m.students[s.ID] = s
	return nil
}

func (m *memRoster) UpdateStudent(_ context.Context, s roster.Student) error {
	if _, ok := m.students[s.ID]; !ok {
		return roster.ErrNotFound
	}
	m.students[s.ID] = s
	return nil
}

func (m *memRoster) DeleteStudent(_ context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return roster.ErrNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *memRoster) StudentIDs(context.Context) ([]string, error) {
	ids := []string{}
	for id := range m.students {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memRoster) ListTeachers(context.Context) ([]roster.Teacher, error) {
	out := []roster.Teacher{}
	for _, a := range m.accounts.accounts {
		out = append(out, roster.Teacher{ID: a.ID, Name: a.Name, Email: a.Email, Department: a.Department, Status: a.Status})
	}
	return out, nil
}

func (m *memRoster) GetTeacher(_ context.Context, id string) (roster.Teacher, error) {
	a, ok := m.accounts.accounts[id]
	if !ok {
		return roster.Teacher{}, roster.ErrNotFound
	}
	return roster.Teacher{ID: a.ID, Name: a.Name, Email: a.Email, Department: a.Department, Status: a.Status}, nil
}

func (m *memRoster) UpdateTeacher(_ context.Context, t roster.Teacher) error {
	a, ok := m.accounts.accounts[t.ID]
	if !ok {
		return roster.ErrNotFound
	}
	a.Name = t.Name
	a.Department = t.Department
	m.accounts.accounts[t.ID] = a
	return nil
}

func (m *memRoster) DeleteTeacher(_ context.Context, id string) error {
	a, ok := m.accounts.accounts[id]
	if !ok {
		return roster.ErrNotFound
	}
	delete(m.accounts.accounts, id)
	delete(m.accounts.byEmail, a.Email)
	return nil
}

func (m *memRoster) VerifiedTeacherIDs(context.Context) ([]string, error) {
	ids := []string{}
	for id, a := range m.accounts.accounts {
		if a.Status == account.StatusVerified {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type memMarks struct {
	rows []attendance.MarkRow
}

func (m *memMarks) SaveMark(_ context.Context, kind, entityID, date, status, timeMarked string) error {
	m.rows = append(m.rows, attendance.MarkRow{Kind: kind, EntityID: entityID, Date: date, Status: status, TimeMarked: timeMarked})
	return nil
}

func (m *memMarks) PresentOn(context.Context, string, string) ([]attendance.Entry, error) {
	return []attendance.Entry{}, nil
}

func (m *memMarks) EntityHistory(_ context.Context, kind, entityID string) ([]attendance.DatedMark, error) {
	out := []attendance.DatedMark{}
	for _, r := range m.rows {
		if r.Kind == kind && r.EntityID == entityID {
			out = append(out, attendance.DatedMark{Date: r.Date, Status: r.Status, TimeMarked: r.TimeMarked})
		}
	}
	return out, nil
}

func (m *memMarks) AllMarks(context.Context) ([]attendance.MarkRow, error) {
	return m.rows, nil
}

type memHomework struct{ items map[string]homework.Homework }

func (m *memHomework) List(context.Context) ([]homework.Homework, error) {
	out := []homework.Homework{}
	for _, h := range m.items {
		out = append(out, h)
	}
	return out, nil
}

func (m *memHomework) Get(_ context.Context, id string) (homework.Homework, error) {
	h, ok := m.items[id]
	if !ok {
		return homework.Homework{}, homework.ErrNotFound
	}
	return h, nil
}

func (m *memHomework) Create(_ context.Context, h homework.Homework) error {
	m.items[h.ID] = h
	return nil
}

func (m *memHomework) Update(_ context.Context, h homework.Homework) error {
	if _, ok := m.items[h.ID]; !ok {
		return homework.ErrNotFound
	}
	m.items[h.ID] = h
	return nil
}

func (m *memHomework) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return homework.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memContributors struct{ items map[string]contributors.Contributor }

func (m *memContributors) List(context.Context) ([]contributors.Contributor, error) {
	out := []contributors.Contributor{}
	for _, c := range m.items {
		out = append(out, c)
	}
	return out, nil
}

func (m *memContributors) Create(_ context.Context, c contributors.Contributor) error {
	m.items[c.ID] = c
	return nil
}

func (m *memContributors) Update(_ context.Context, c contributors.Contributor) error {
	if _, ok := m.items[c.ID]; !ok {
		return contributors.ErrNotFound
	}
	m.items[c.ID] = c
	return nil
}

func (m *memContributors) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return contributors.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memProgress struct{ items map[string]progress.Log }

func (m *memProgress) ListByMentor(_ context.Context, mentorID string) ([]progress.Log, error) {
	out := []progress.Log{}
	for _, l := range m.items {
		if l.MentorID == mentorID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memProgress) Get(_ context.Context, id string) (progress.Log, error) {
	l, ok := m.items[id]
	if !ok {
		return progress.Log{}, progress.ErrNotFound
	}
	return l, nil
}

func (m *memProgress) Create(_ context.Context, l progress.Log) error {
	m.items[l.ID] = l
	return nil
}

func (m *memProgress) Update(_ context.Context, l progress.Log) error {
	if _, ok := m.items[l.ID]; !ok {
		return progress.ErrNotFound
	}
	m.items[l.ID] = l
	return nil
}

func (m *memProgress) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return progress.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memProgress) Report(_ context.Context, mentorID string) (progress.MentorReport, error) {
	return progress.MentorReport{MentorID: mentorID}, nil
}

type env struct {
	router   *gin.Engine
	accounts *memAccounts
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := config.App{
		Env:             "test",
		JWTIssuer:       "schoolportal-test",
		JWTSigningKey:   "test-signing-key",
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      24 * time.Hour,
		RateLimitPerMin: 10000,
	}

	accountRepo := newMemAccounts()
	accountSvc := account.NewService(accountRepo, account.TokenConfig{
		Issuer:     cfg.JWTIssuer,
		SigningKey: cfg.JWTSigningKey,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})
	require.NoError(t, accountSvc.EnsureAdmin(context.Background(), "admin@school.example", "adminpass123"))

	rosterSvc := roster.NewService(newMemRoster(accountRepo))
	book := attendance.NewBook(time.Now().Format(attendance.DateLayout))
	attendanceSvc := attendance.NewService(book, &memMarks{}, rosterSvc, nil, nil, 0)
	homeworkSvc := homework.NewService(&memHomework{items: map[string]homework.Homework{}})
	contributorsSvc := contributors.NewService(&memContributors{items: map[string]contributors.Contributor{}})
	progressSvc := progress.NewService(&memProgress{items: map[string]progress.Log{}})

	h := New(cfg, accountSvc, rosterSvc, attendanceSvc, homeworkSvc, contributorsSvc, progressSvc, nil, nil)
	return &env{router: h.Router(), accounts: accountRepo}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (e *env) loginToken(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Asha Rao",
		"email":    "asha@school.example",
		"password": "longenough",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	teacher := decode(t, rec)["teacher"].(map[string]any)
	teacherID := teacher["id"].(string)
	assert.Equal(t, "pending", teacher["status"])

	// Pending accounts cannot log in.
	rec = e.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "asha@school.example", "password": "longenough"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := e.loginToken(t, "admin@school.example", "adminpass123")
	rec = e.do(t, http.MethodPost, "/api/v1/admin/teachers/"+teacherID+"/verify", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	token := e.loginToken(t, "asha@school.example", "longenough")
	assert.NotEmpty(t, token)
}

func TestAuthRequired(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/student/all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/student/all", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesNeedAdminRole(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "A", "email": "a@school.example", "password": "longenough",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	teacherID := decode(t, rec)["teacher"].(map[string]any)["id"].(string)

	admin := e.loginToken(t, "admin@school.example", "adminpass123")
	rec = e.do(t, http.MethodPost, "/api/v1/admin/teachers/"+teacherID+"/verify", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	teacher := e.loginToken(t, "a@school.example", "longenough")
	rec = e.do(t, http.MethodGet, "/api/v1/admin/dashboard", teacher, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/admin/dashboard", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStudentCRUD(t *testing.T) {
	e := newEnv(t)
	admin := e.loginToken(t, "admin@school.example", "adminpass123")

	rec := e.do(t, http.MethodPost, "/api/v1/student/add", admin, gin.H{
		"name": "Asha", "rollNumber": "17", "grade": "Grade 5",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode(t, rec)["id"].(string)

	rec = e.do(t, http.MethodPost, "/api/v1/student/add", admin, gin.H{"name": "Ben", "rollNumber": "17"})
	assert.Equal(t, http.StatusConflict, rec.Code, "duplicate roll number")

	rec = e.do(t, http.MethodPut, "/api/v1/student/"+id, admin, gin.H{
		"name": "Asha", "rollNumber": "17", "grade": "Grade 6",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Grade 6", decode(t, rec)["grade"])

	rec = e.do(t, http.MethodGet, "/api/v1/student/all", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = e.do(t, http.MethodDelete, "/api/v1/students/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/v1/students/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttendanceMarkOverHTTP(t *testing.T) {
	e := newEnv(t)
	admin := e.loginToken(t, "admin@school.example", "adminpass123")

	rec := e.do(t, http.MethodPost, "/api/v1/student/add", admin, gin.H{"name": "Asha", "rollNumber": "17", "grade": "Grade 5"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["id"].(string)

	rec = e.do(t, http.MethodPost, "/api/v1/attendance/mark", admin, gin.H{"id": id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decode(t, rec)
	assert.Equal(t, "Asha", entry["name"])
	assert.NotEmpty(t, entry["timeMarked"])

	rec = e.do(t, http.MethodPost, "/api/v1/attendance/mark", admin, gin.H{"id": id})
	assert.Equal(t, http.StatusConflict, rec.Code, "second mark on the same day")

	rec = e.do(t, http.MethodPost, "/api/v1/attendance/mark", admin, gin.H{"id": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/attendance/today", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	today := decode(t, rec)
	assert.Len(t, today["presentStudents"], 1)

	rec = e.do(t, http.MethodPost, "/api/v1/attendance/unmark", admin, gin.H{"id": id})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/v1/attendance/today", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["presentStudents"])
}

func TestAttendanceDateValidation(t *testing.T) {
	e := newEnv(t)
	admin := e.loginToken(t, "admin@school.example", "adminpass123")

	rec := e.do(t, http.MethodGet, "/api/v1/attendance/date?date=June-1", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/attendance/stats/S1?start=%s&end=%s", "2024-06-01", "bad"), admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContributorsPublicList(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/contributors/all", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "contributors page needs no token")

	admin := e.loginToken(t, "admin@school.example", "adminpass123")
	rec = e.do(t, http.MethodPost, "/api/v1/contributors/add", admin, gin.H{
		"name": "Priya", "githubUrl": "https://github.com/priya",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/api/v1/contributors/all", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])
}
