package availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gymcore/internal/api"
	"gymcore/internal/resource"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) ListSlots(c *gin.Context) {
	q := Query{Type: ResourceType(c.Query("type"))}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}
	q.Date = date

	if v := c.Query("location_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid location_id"})
			return
		}
		q.LocationID = &id
	}

	if v := c.Query("class_type"); v != "" {
		q.ClassType = &v
	}

	if v := c.Query("instructor_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid instructor_id"})
			return
		}
		q.InstructorID = &id
	}

	if v := c.Query("space_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid space_id"})
			return
		}
		q.SpaceID = &id
	}

	seq, err := h.engine.Slots(c.Request.Context(), q)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownResourceType):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "type must be group_class, personal_training or specialized_space"})
		case errors.Is(err, resource.ErrInstructorNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Instructor not found"})
		case errors.Is(err, resource.ErrSpaceNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Specialized space not found"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to compute availability"})
		}
		return
	}

	slots := []Slot{}
	for slot := range seq {
		slots = append(slots, slot)
	}

	c.JSON(http.StatusOK, slots)
}
