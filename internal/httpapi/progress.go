package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolportal/internal/auth"
	"schoolportal/internal/progress"
)

type progressRequest struct {
	MentorID  string `json:"mentorId"`
	StudentID string `json:"studentId" binding:"required"`
	Date      string `json:"date"`
	Topic     string `json:"topic" binding:"required"`
	Notes     string `json:"notes"`
	Rating    int    `json:"rating"`
}

func (h *Handler) mentorLogs(c *gin.Context) {
	logs, err := h.progress.ForMentor(c.Request.Context(), c.Param("mentorId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

func (h *Handler) mentorReport(c *gin.Context) {
	report, err := h.progress.Report(c.Request.Context(), c.Param("mentorId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) addProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// The caller is the mentor unless another id is given explicitly.
	if req.MentorID == "" {
		if claims, ok := auth.FromContext(c); ok {
			req.MentorID = claims.Subject
		}
	}
	entry, err := h.progress.Add(c.Request.Context(), progress.Log{
		MentorID:  req.MentorID,
		StudentID: req.StudentID,
		Date:      req.Date,
		Topic:     req.Topic,
		Notes:     req.Notes,
		Rating:    req.Rating,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) updateProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MentorID == "" {
		if claims, ok := auth.FromContext(c); ok {
			req.MentorID = claims.Subject
		}
	}
	entry, err := h.progress.Update(c.Request.Context(), progress.Log{
		ID:        c.Param("id"),
		MentorID:  req.MentorID,
		StudentID: req.StudentID,
		Date:      req.Date,
		Topic:     req.Topic,
		Notes:     req.Notes,
		Rating:    req.Rating,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) deleteProgress(c *gin.Context) {
	if err := h.progress.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
