package routes

import (
	"net/http"

	"chefbook/handlers"
	"chefbook/middleware"
	"chefbook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires all endpoints onto the router.
func RegisterRoutes(r *gin.Engine, bookingHandler *handlers.BookingHandler, adminHandler *handlers.AdminHandler) {
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})

	api := r.Group("/api")
	{
		bookings := api.Group("/bookings")
		{
			bookings.POST("", bookingHandler.RequestBookingHandler)
			bookings.GET("/:id", bookingHandler.GetBookingHandler)
		}

		admin := api.Group("/admin", middleware.AdminAuthMiddleware())
		{
			admin.GET("/bookings", adminHandler.ListBookingsHandler)
			admin.POST("/bookings/:id/accept", adminHandler.AcceptBookingHandler)
			admin.POST("/bookings/:id/reject", adminHandler.RejectBookingHandler)
			admin.POST("/bookings/:id/complete", adminHandler.CompleteBookingHandler)

			admin.PUT("/templates", adminHandler.UpsertTemplateHandler)
			admin.GET("/templates", adminHandler.ListTemplatesHandler)
		}
	}
}
