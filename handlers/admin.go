package handlers

import (
	"net/http"

	catalogRepo "chefbook/database/repository/catalog"
	"chefbook/models"
	"chefbook/services/booking"
	"chefbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exposes the operator endpoints: accept/reject/complete
// bookings and manage the menu template catalog.
type AdminHandler struct {
	Svc     booking.BookingService
	Catalog catalogRepo.Repository
	Logger  *zap.Logger
}

func NewAdminHandler(svc booking.BookingService, catalog catalogRepo.Repository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Catalog: catalog, Logger: logger}
}

// ListBookingsHandler lists bookings, optionally filtered by ?status=.
func (h *AdminHandler) ListBookingsHandler(c *gin.Context) {
	status := models.BookingStatus(c.Query("status"))
	bookings, err := h.Svc.ListBookings(c.Request.Context(), status)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// AcceptBookingHandler confirms a pending booking.
func (h *AdminHandler) AcceptBookingHandler(c *gin.Context) {
	var input struct {
		AcceptedBy string `json:"acceptedBy"`
		ChefID     string `json:"chefId,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Svc.AcceptBooking(c.Request.Context(), c.Param("id"), input.AcceptedBy, input.ChefID)
	if err != nil {
		h.Logger.Warn("accept failed", zap.String("bookingId", c.Param("id")), zap.Error(err))
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RejectBookingHandler cancels a pending or confirmed booking.
func (h *AdminHandler) RejectBookingHandler(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
		Notes  string `json:"notes,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Svc.RejectBooking(c.Request.Context(), c.Param("id"), input.Reason, input.Notes)
	if err != nil {
		h.Logger.Warn("reject failed", zap.String("bookingId", c.Param("id")), zap.Error(err))
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CompleteBookingHandler marks a confirmed booking as completed. ?force=true
// applies the admin override for events that have not happened yet.
func (h *AdminHandler) CompleteBookingHandler(c *gin.Context) {
	force := c.Query("force") == "true"
	b, err := h.Svc.CompleteBooking(c.Request.Context(), c.Param("id"), force)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// UpsertTemplateHandler creates or replaces a menu template.
func (h *AdminHandler) UpsertTemplateHandler(c *gin.Context) {
	var t models.MenuTemplate
	if err := c.ShouldBindJSON(&t); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if t.ID == "" || t.Title == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "id and title are required")
		return
	}

	if err := h.Catalog.Upsert(c.Request.Context(), &t); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to save template", err.Error())
		return
	}
	c.JSON(http.StatusOK, t)
}

// ListTemplatesHandler lists active menu templates.
func (h *AdminHandler) ListTemplatesHandler(c *gin.Context) {
	templates, err := h.Catalog.ListActive(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list templates", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}
