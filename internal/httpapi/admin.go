package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) dashboard(c *gin.Context) {
	counts, err := h.accounts.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	today := h.attendance.Today()
	c.JSON(http.StatusOK, gin.H{
		"counts":          counts,
		"presentStudents": len(today.PresentStudents),
		"presentTeachers": len(today.PresentTeachers),
		"date":            today.Date,
	})
}

func (h *Handler) pendingTeachers(c *gin.Context) {
	pending, err := h.accounts.Pending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending, "count": len(pending)})
}

func (h *Handler) verifyTeacher(c *gin.Context) {
	if err := h.accounts.Verify(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": "verified"})
}

func (h *Handler) rejectTeacher(c *gin.Context) {
	if err := h.accounts.Reject(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": "rejected"})
}
