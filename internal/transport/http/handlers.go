package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
	"github.com/kora-rentals/pricingservice/internal/pricing/usecase"
)

// Handler carries the HTTP surface over the quote and adjustment use cases.
type Handler struct {
	quotes *usecase.QuoteUseCase
	admin  *usecase.AdjustmentUseCase
}

func NewHandler(quotes *usecase.QuoteUseCase, admin *usecase.AdjustmentUseCase) *Handler {
	return &Handler{quotes: quotes, admin: admin}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type quoteRequest struct {
	ProductID     string     `json:"product_id"`
	CountryID     string     `json:"country_id"`
	Currency      string     `json:"currency"`
	DurationHours int        `json:"rental_duration_hours"`
	Quantity      int        `json:"quantity"`
	RentalStart   *time.Time `json:"rental_start_date"`
	PeakDate      bool       `json:"peak_date"`
	// Both default to true when omitted.
	IncludeSecurityDeposit *bool `json:"include_security_deposit"`
	ApplyDiscounts         *bool `json:"apply_discounts"`
}

// Quote handles POST /v1/pricing/quote.
func (h *Handler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, errorResponse{
			Code:    domain.ErrCodeValidation,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeError(c, http.StatusBadRequest, errorResponse{
			Code:    domain.ErrCodeValidation,
			Message: "product_id must be a uuid",
			Details: req.ProductID,
		})
		return
	}

	result, err := h.quotes.Quote(c.Request.Context(), domain.CalculationRequest{
		ProductID:              productID,
		CountryID:              req.CountryID,
		Currency:               req.Currency,
		DurationHours:          req.DurationHours,
		Quantity:               req.Quantity,
		RentalStart:            req.RentalStart,
		PeakDate:               req.PeakDate,
		IncludeSecurityDeposit: boolOrTrue(req.IncludeSecurityDeposit),
		ApplyDiscounts:         boolOrTrue(req.ApplyDiscounts),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpsertSchedule handles POST /v1/schedules.
func (h *Handler) UpsertSchedule(c *gin.Context) {
	var schedule domain.PriceSchedule
	if err := c.ShouldBindJSON(&schedule); err != nil {
		writeError(c, http.StatusBadRequest, errorResponse{
			Code:    domain.ErrCodeValidation,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	saved, err := h.admin.UpsertSchedule(c.Request.Context(), &schedule)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// ListSchedules handles GET /v1/schedules.
func (h *Handler) ListSchedules(c *gin.Context) {
	limit := queryInt(c, "limit", 100)
	offset := queryInt(c, "offset", 0)

	schedules, err := h.admin.ListSchedules(c.Request.Context(), c.Query("country_id"), limit, offset)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": schedules, "count": len(schedules)})
}

// BulkAdjust handles POST /v1/schedules/bulk-adjust.
func (h *Handler) BulkAdjust(c *gin.Context) {
	var adjustment domain.BulkAdjustment
	if err := c.ShouldBindJSON(&adjustment); err != nil {
		writeError(c, http.StatusBadRequest, errorResponse{
			Code:    domain.ErrCodeValidation,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	touched, err := h.admin.ApplyBulkAdjustment(c.Request.Context(), adjustment)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules_adjusted": touched})
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, body errorResponse) {
	c.AbortWithStatusJSON(status, body)
}

func writeDomainError(c *gin.Context, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		writeError(c, http.StatusInternalServerError, errorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "internal error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case domain.ErrCodeValidation, domain.ErrCodeRange:
		status = http.StatusBadRequest
	case domain.ErrCodeNotFound:
		status = http.StatusNotFound
	case domain.ErrCodeCurrencyConversion, domain.ErrCodeConfiguration:
		status = http.StatusUnprocessableEntity
	}
	writeError(c, status, errorResponse{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Details: domainErr.Details,
	})
}

func boolOrTrue(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
