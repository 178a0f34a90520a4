package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gymcore/internal/api"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) ListTypes(c *gin.Context) {
	types, err := h.repo.ListTypes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load membership types"})
		return
	}

	c.JSON(http.StatusOK, types)
}
