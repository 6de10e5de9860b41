package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolportal/internal/auth"
	"schoolportal/internal/homework"
)

type homeworkRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Subject      string `json:"subject"`
	Grade        string `json:"grade"`
	AssignedDate string `json:"assignedDate"`
	DueDate      string `json:"dueDate" binding:"required"`
}

func (h *Handler) listHomework(c *gin.Context) {
	items, err := h.homework.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"homework": items, "count": len(items)})
}

func (h *Handler) addHomework(c *gin.Context) {
	var req homeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	createdBy := ""
	if claims, ok := auth.FromContext(c); ok {
		createdBy = claims.Subject
	}
	hw, err := h.homework.Add(c.Request.Context(), homework.Homework{
		Title:        req.Title,
		Description:  req.Description,
		Subject:      req.Subject,
		Grade:        req.Grade,
		AssignedDate: req.AssignedDate,
		DueDate:      req.DueDate,
		CreatedBy:    createdBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, hw)
}

func (h *Handler) updateHomework(c *gin.Context) {
	var req homeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hw, err := h.homework.Update(c.Request.Context(), homework.Homework{
		ID:           c.Param("id"),
		Title:        req.Title,
		Description:  req.Description,
		Subject:      req.Subject,
		Grade:        req.Grade,
		AssignedDate: req.AssignedDate,
		DueDate:      req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hw)
}

func (h *Handler) deleteHomework(c *gin.Context) {
	if err := h.homework.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
