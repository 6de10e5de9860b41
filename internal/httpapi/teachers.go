package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolportal/internal/account"
	"schoolportal/internal/roster"
)

func (h *Handler) listTeachers(c *gin.Context) {
	teachers, err := h.roster.Teachers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teachers": teachers, "count": len(teachers)})
}

type addTeacherRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password"`
	EmployeeNumber string `json:"employeeNumber"`
	Department     string `json:"department"`
	Phone          string `json:"phone"`
}

func (h *Handler) addTeacher(c *gin.Context) {
	var req addTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, err := h.accounts.AddVerified(c.Request.Context(), account.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		EmployeeNumber: req.EmployeeNumber,
		Department:     req.Department,
		Phone:          req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

type updateTeacherRequest struct {
	Name           string `json:"name" binding:"required"`
	EmployeeNumber string `json:"employeeNumber"`
	Department     string `json:"department"`
	Phone          string `json:"phone"`
}

func (h *Handler) updateTeacher(c *gin.Context) {
	var req updateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.roster.UpdateTeacher(c.Request.Context(), roster.Teacher{
		ID:             c.Param("id"),
		Name:           req.Name,
		EmployeeNumber: req.EmployeeNumber,
		Department:     req.Department,
		Phone:          req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) deleteTeacher(c *gin.Context) {
	if err := h.roster.DeleteTeacher(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
