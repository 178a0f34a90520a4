package resource

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gymcore/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateLocation(c *gin.Context) {
	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	loc, err := h.service.CreateLocation(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create location"})
		return
	}

	c.JSON(http.StatusCreated, loc)
}

func (h *Handler) ListLocations(c *gin.Context) {
	locs, err := h.service.ListLocations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch locations"})
		return
	}

	c.JSON(http.StatusOK, locs)
}

func (h *Handler) CreateGroupClass(c *gin.Context) {
	var req CreateGroupClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	gc, err := h.service.CreateGroupClass(c.Request.Context(), req)
	if err != nil {
		writeResourceError(c, err, "Failed to create group class")
		return
	}

	c.JSON(http.StatusCreated, gc)
}

func (h *Handler) CreateInstructor(c *gin.Context) {
	var req CreateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	ins, err := h.service.CreateInstructor(c.Request.Context(), req)
	if err != nil {
		writeResourceError(c, err, "Failed to create instructor")
		return
	}

	c.JSON(http.StatusCreated, ins)
}

func (h *Handler) AddInstructorWindow(c *gin.Context) {
	instructorID, err := strconv.Atoi(c.Param("instructorID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid instructor ID"})
		return
	}

	var req CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	w, err := h.service.AddInstructorWindow(c.Request.Context(), instructorID, req)
	if err != nil {
		writeResourceError(c, err, "Failed to add working window")
		return
	}

	c.JSON(http.StatusCreated, w)
}

func (h *Handler) CreateSpace(c *gin.Context) {
	var req CreateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	sp, err := h.service.CreateSpace(c.Request.Context(), req)
	if err != nil {
		writeResourceError(c, err, "Failed to create specialized space")
		return
	}

	c.JSON(http.StatusCreated, sp)
}

func (h *Handler) AddSpaceWindow(c *gin.Context) {
	spaceID, err := strconv.Atoi(c.Param("spaceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid space ID"})
		return
	}

	var req CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	w, err := h.service.AddSpaceWindow(c.Request.Context(), spaceID, req)
	if err != nil {
		writeResourceError(c, err, "Failed to add space window")
		return
	}

	c.JSON(http.StatusCreated, w)
}

func writeResourceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrLocationNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Location not found"})
	case errors.Is(err, ErrInstructorNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Instructor not found"})
	case errors.Is(err, ErrSpaceNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Specialized space not found"})
	case errors.Is(err, ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid time window"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}
