package membership

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gymcore/internal/api"
	"gymcore/internal/auth"
	"gymcore/internal/payment"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type PurchaseRequest struct {
	MembershipTypeID int  `json:"membership_type_id" binding:"required"`
	HomeLocationID   *int `json:"home_location_id,omitempty"`
	AutoRenewal      bool `json:"auto_renewal"`
}

type ActivateRequest struct {
	PaymentConfirmationID string `json:"payment_confirmation_id" binding:"required"`
}

type RenewRequest struct {
	PaymentConfirmationID string `json:"payment_confirmation_id" binding:"required"`
	AutoRenewal           bool   `json:"auto_renewal"`
}

type SuspendRequest struct {
	Days   int    `json:"days" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

type CancelRequest struct {
	Reason          string `json:"reason" binding:"required"`
	RefundRequested bool   `json:"refund_requested"`
}

// MembershipResponse is the exported view: the raw suspension columns stay
// internal, the current suspension is surfaced as a nested object.
type MembershipResponse struct {
	*Membership
	CurrentSuspension *Suspension    `json:"current_suspension,omitempty"`
	Cascade           *CascadeReport `json:"cascade,omitempty"`
}

func newResponse(m *Membership, report *CascadeReport) MembershipResponse {
	return MembershipResponse{
		Membership:        m,
		CurrentSuspension: m.CurrentSuspension(),
		Cascade:           report,
	}
}

func (h *Handler) GetMy(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	m, err := h.service.GetForUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No membership found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to load membership"})
		return
	}

	c.JSON(http.StatusOK, newResponse(m, nil))
}

func (h *Handler) Purchase(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	m, err := h.service.Purchase(c.Request.Context(), userID, req.MembershipTypeID, req.HomeLocationID, req.AutoRenewal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create membership"})
		return
	}

	c.JSON(http.StatusCreated, newResponse(m, nil))
}

func (h *Handler) Activate(c *gin.Context) {
	userID, membershipID, ok := h.identify(c)
	if !ok {
		return
	}

	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	m, err := h.service.Activate(c.Request.Context(), userID, membershipID, req.PaymentConfirmationID)
	if err != nil {
		h.writeError(c, err, "Failed to activate membership")
		return
	}

	c.JSON(http.StatusOK, newResponse(m, nil))
}

func (h *Handler) Renew(c *gin.Context) {
	userID, membershipID, ok := h.identify(c)
	if !ok {
		return
	}

	var req RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	m, err := h.service.Renew(c.Request.Context(), userID, membershipID, req.PaymentConfirmationID, req.AutoRenewal)
	if err != nil {
		h.writeError(c, err, "Failed to renew membership")
		return
	}

	c.JSON(http.StatusOK, newResponse(m, nil))
}

func (h *Handler) Suspend(c *gin.Context) {
	userID, membershipID, ok := h.identify(c)
	if !ok {
		return
	}

	var req SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	m, report, err := h.service.Suspend(c.Request.Context(), userID, membershipID, req.Days, req.Reason)
	if err != nil {
		h.writeError(c, err, "Failed to suspend membership")
		return
	}

	c.JSON(http.StatusOK, newResponse(m, report))
}

func (h *Handler) Reactivate(c *gin.Context) {
	userID, membershipID, ok := h.identify(c)
	if !ok {
		return
	}

	m, err := h.service.Reactivate(c.Request.Context(), userID, membershipID)
	if err != nil {
		h.writeError(c, err, "Failed to reactivate membership")
		return
	}

	c.JSON(http.StatusOK, newResponse(m, nil))
}

func (h *Handler) Cancel(c *gin.Context) {
	userID, membershipID, ok := h.identify(c)
	if !ok {
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BindError(c, err)
		return
	}

	m, report, err := h.service.Cancel(c.Request.Context(), userID, membershipID, req.Reason, req.RefundRequested)
	if err != nil {
		h.writeError(c, err, "Failed to cancel membership")
		return
	}

	c.JSON(http.StatusOK, newResponse(m, report))
}

func (h *Handler) identify(c *gin.Context) (userID, membershipID int, ok bool) {
	userID, authed := auth.GetUserID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return 0, 0, false
	}

	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership ID"})
		return 0, 0, false
	}

	return userID, membershipID, true
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMembershipNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership not found"})
	case errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Membership belongs to another user"})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Membership status does not allow this operation"})
	case errors.Is(err, ErrInvalidSuspensionPeriod):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Suspension must be between 15 and 90 days"})
	case errors.Is(err, ErrSuspensionLimitExceeded):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Suspension limit reached for the rolling year"})
	case errors.Is(err, ErrRenewalPayment), errors.Is(err, payment.ErrConfirmationRejected):
		c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: "Payment was not confirmed"})
	case errors.Is(err, payment.ErrConfirmationNotFound):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown payment confirmation"})
	case errors.Is(err, payment.ErrProcessorUnavailable):
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "Payment processor unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}
