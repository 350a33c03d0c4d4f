package http

import (
	"github.com/gin-gonic/gin"

	"github.com/kora-rentals/pricingservice/internal/pricing/usecase"
)

// NewRouter wires routes over the use cases.
func NewRouter(quotes *usecase.QuoteUseCase, admin *usecase.AdjustmentUseCase) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(), RequestID(), Logging())

	h := NewHandler(quotes, admin)

	router.GET("/healthz", h.Healthz)

	v1 := router.Group("/v1")
	{
		v1.POST("/pricing/quote", h.Quote)
		v1.POST("/schedules", h.UpsertSchedule)
		v1.GET("/schedules", h.ListSchedules)
		v1.POST("/schedules/bulk-adjust", h.BulkAdjust)
	}

	return router
}
