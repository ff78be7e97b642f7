package booking

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the owner-facing booking endpoints. rg must already
// carry JWT auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	b := rg.Group("/bookings")
	{
		b.GET("", h.ListMyBookings)
		b.POST("", h.CreateBooking)
		b.GET("/:id", h.GetBooking)
		b.PATCH("/:id", h.EditBooking)
		b.DELETE("/:id", h.DeleteBooking)
		b.POST("/:id/cancel", h.CancelBooking)
		b.POST("/:id/extend", h.ExtendBooking)
	}
}

// RegisterGateRoutes mounts the QR scanner endpoints. rg must carry the
// gate token middleware.
func (h *Handler) RegisterGateRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/gate")
	{
		g.POST("/entrance", h.ScanEntrance)
		g.POST("/exit", h.ScanExit)
	}
}
