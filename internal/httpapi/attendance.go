package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"schoolportal/internal/attendance"
)

type markRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *Handler) markStudent(c *gin.Context)   { h.mark(c, attendance.KindStudent) }
func (h *Handler) unmarkStudent(c *gin.Context) { h.unmark(c, attendance.KindStudent) }
func (h *Handler) markTeacher(c *gin.Context)   { h.mark(c, attendance.KindTeacher) }
func (h *Handler) unmarkTeacher(c *gin.Context) { h.unmark(c, attendance.KindTeacher) }

func (h *Handler) mark(c *gin.Context, kind string) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := h.attendance.Mark(c.Request.Context(), kind, req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) unmark(c *gin.Context, kind string) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.attendance.Unmark(c.Request.Context(), kind, req.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": req.ID, "status": attendance.StatusAbsent})
}

func (h *Handler) attendanceToday(c *gin.Context) {
	c.JSON(http.StatusOK, h.attendance.Today())
}

func (h *Handler) studentsOnDate(c *gin.Context) { h.presentOn(c, attendance.KindStudent) }
func (h *Handler) teachersOnDate(c *gin.Context) { h.presentOn(c, attendance.KindTeacher) }

func (h *Handler) presentOn(c *gin.Context, kind string) {
	date := c.Query("date")
	if _, err := time.Parse(attendance.DateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	entries, err := h.attendance.PresentOn(c.Request.Context(), kind, date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "present": entries, "count": len(entries)})
}

func (h *Handler) studentStats(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	for _, d := range []string{start, end} {
		if _, err := time.Parse(attendance.DateLayout, d); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be YYYY-MM-DD"})
			return
		}
	}
	stats, err := h.attendance.Stats(attendance.KindStudent, c.Param("studentId"), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) studentHistory(c *gin.Context) {
	marks, err := h.attendance.EntityHistory(c.Request.Context(), attendance.KindStudent, c.Param("studentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"studentId": c.Param("studentId"), "records": marks})
}
