package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolportal/internal/contributors"
)

type contributorRequest struct {
	Name      string `json:"name" binding:"required"`
	Role      string `json:"role"`
	GithubURL string `json:"githubUrl"`
	AvatarURL string `json:"avatarUrl"`
}

func (h *Handler) listContributors(c *gin.Context) {
	items, err := h.contributors.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contributors": items, "count": len(items)})
}

func (h *Handler) addContributor(c *gin.Context) {
	var req contributorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.contributors.Add(c.Request.Context(), contributors.Contributor{
		Name:      req.Name,
		Role:      req.Role,
		GithubURL: req.GithubURL,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) updateContributor(c *gin.Context) {
	var req contributorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.contributors.Update(c.Request.Context(), contributors.Contributor{
		ID:        c.Param("id"),
		Name:      req.Name,
		Role:      req.Role,
		GithubURL: req.GithubURL,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) deleteContributor(c *gin.Context) {
	if err := h.contributors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
