package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolportal/internal/roster"
)

type studentRequest struct {
	Name            string `json:"name" binding:"required"`
	RollNumber      string `json:"rollNumber" binding:"required"`
	Grade           string `json:"grade"`
	GuardianContact string `json:"guardianContact"`
}

func (h *Handler) listStudents(c *gin.Context) {
	students, err := h.roster.Students(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students, "count": len(students)})
}

func (h *Handler) addStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.roster.AddStudent(c.Request.Context(), roster.Student{
		Name:            req.Name,
		RollNumber:      req.RollNumber,
		Grade:           req.Grade,
		GuardianContact: req.GuardianContact,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) updateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.roster.UpdateStudent(c.Request.Context(), roster.Student{
		ID:              c.Param("id"),
		Name:            req.Name,
		RollNumber:      req.RollNumber,
		Grade:           req.Grade,
		GuardianContact: req.GuardianContact,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) deleteStudent(c *gin.Context) {
	if err := h.roster.DeleteStudent(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
