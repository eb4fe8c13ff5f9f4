package handlers

import (
	"errors"
	"net/http"

	"chefbook/models"
	"chefbook/services/booking"
	"chefbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the public booking endpoints.
type BookingHandler struct {
	Svc    booking.BookingService
	Logger *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: logger}
}

// RequestBookingHandler creates a new booking request.
func (h *BookingHandler) RequestBookingHandler(c *gin.Context) {
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Svc.RequestBooking(c.Request.Context(), input)
	if err != nil {
		h.Logger.Warn("booking request rejected", zap.Error(err))
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"bookingId": b.ID,
		"status":    b.Status,
		"booking":   b,
	})
}

// GetBookingHandler returns a single booking by id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Svc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// respondBookingError maps core error codes onto HTTP statuses.
func respondBookingError(c *gin.Context, err error) {
	var be *booking.Error
	if !errors.As(err, &be) {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch be.Code {
	case booking.CodeValidation:
		status = http.StatusBadRequest
	case booking.CodeNotFound, booking.CodeProductNotFound:
		status = http.StatusNotFound
	case booking.CodeConflict, booking.CodeInvalidTransition:
		status = http.StatusConflict
	case booking.CodePricingUnavailable:
		status = http.StatusUnprocessableEntity
	}
	utils.JSONError(c, status, be.Message, err.Error())
}
