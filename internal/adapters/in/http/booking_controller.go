package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/suchimauz/booking-link-engine/internal/config"
	"github.com/suchimauz/booking-link-engine/internal/core/domain"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/in"
	"github.com/suchimauz/booking-link-engine/internal/utils"
)

type BookingController struct {
	availability in.AvailabilityUseCase
	booking      in.BookingUseCase
	cfg          *config.Config
}

func NewBookingController(availability in.AvailabilityUseCase, booking in.BookingUseCase, cfg *config.Config) *BookingController {
	return &BookingController{
		availability: availability,
		booking:      booking,
		cfg:          cfg,
	}
}

func (c *BookingController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		api.GET("/links/:linkId/slots", c.getAvailableSlots)
		api.POST("/links/:linkId/bookings", c.createBooking)
	}
}

type CreateBookingRequest struct {
	Start      string `json:"start" binding:"required"`
	End        string `json:"end" binding:"required"`
	GuestName  string `json:"guestName" binding:"required"`
	GuestEmail string `json:"guestEmail" binding:"required,email"`
	GuestNotes string `json:"guestNotes"`
}

func (c *BookingController) getAvailableSlots(ctx *gin.Context) {
	linkID, err := uuid.Parse(ctx.Param("linkId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link ID format"})
		return
	}

	timezone := ctx.Query("timezone")

	loc := time.UTC
	if timezone != "" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timezone"})
			return
		}
	}

	startDate, err := utils.ParseDateInLocation(ctx.Query("startDate"), loc)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date format"})
		return
	}

	endDate, err := utils.ParseDateInLocation(ctx.Query("endDate"), loc)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format"})
		return
	}

	if !endDate.After(startDate) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "End date must be after start date"})
		return
	}

	slots, debugInfo, err := c.availability.GetAvailableSlots(ctx.Request.Context(), in.AvailabilityQuery{
		LinkID:    linkID,
		StartDate: startDate,
		EndDate:   endDate,
		Timezone:  timezone,
	})
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	response := gin.H{
		"linkId": linkID,
		"slots":  slots,
	}
	if ctx.Query("debug") == "true" {
		response["debug"] = debugInfo
	}

	ctx.JSON(http.StatusOK, response)
}

func (c *BookingController) createBooking(ctx *gin.Context) {
	linkID, err := uuid.Parse(ctx.Param("linkId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid link ID format"})
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date format"})
		return
	}

	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format"})
		return
	}

	result, err := c.booking.CreateBooking(ctx.Request.Context(), in.BookingRequest{
		LinkID:     linkID,
		Start:      start,
		End:        end,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestNotes: req.GuestNotes,
	})
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"booking":        result.Booking,
		"assignedUserId": result.Booking.AssignedUserID,
		"degraded":       result.Degraded,
	})
}

// renderError переводит вид ошибки бронирования в HTTP-статус
func (c *BookingController) renderError(ctx *gin.Context, err error) {
	bookingErr, ok := domain.AsBookingError(err)
	if !ok {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch bookingErr.Kind {
	case domain.BookingErrorValidation:
		status = http.StatusBadRequest
	case domain.BookingErrorLeadTimeViolation:
		status = http.StatusUnprocessableEntity
	case domain.BookingErrorCapacityExceeded,
		domain.BookingErrorSlotConflict,
		domain.BookingErrorNoMemberAvailable:
		status = http.StatusConflict
	case domain.BookingErrorLinkExpired:
		status = http.StatusGone
	}

	ctx.JSON(status, gin.H{
		"error":   bookingErr.Message,
		"kind":    bookingErr.Kind,
		"details": bookingErr.Details,
	})
}

func (c *BookingController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range c.cfg.Auth.BasicClients {
			if subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1 {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}
