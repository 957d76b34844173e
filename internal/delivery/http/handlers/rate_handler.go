package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/niagahub/niaga-rate-service/internal/domain"
	"github.com/niagahub/niaga-rate-service/internal/usecase/rate"
)

type RateHandler struct {
	rateUC     rate.RateUsecase
	switchRepo domain.ProviderSwitchRepository
}

func NewRateHandler(rateUC rate.RateUsecase, switchRepo domain.ProviderSwitchRepository) *RateHandler {
	return &RateHandler{rateUC: rateUC, switchRepo: switchRepo}
}

type RateResponse struct {
	Rate         float64   `json:"rate"`
	Source       string    `json:"source"`
	ProviderName string    `json:"provider_name,omitempty"`
	ObservedAt   time.Time `json:"observed_at"`
}

type SetManualRateRequest struct {
	Rate float64 `json:"rate" binding:"required"`
}

// GetCurrentRate returns the last known rate without contacting providers.
func (h *RateHandler) GetCurrentRate(c *gin.Context) {
	quote, err := h.rateUC.GetCurrentRate(c.Request.Context(), c.Param("tenantID"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toRateResponse(quote))
}

// RefreshRate runs a full acquisition for the tenant right now.
func (h *RateHandler) RefreshRate(c *gin.Context) {
	quote, err := h.rateUC.UpdateRate(c.Request.Context(), c.Param("tenantID"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toRateResponse(quote))
}

func (h *RateHandler) SetManualRate(c *gin.Context) {
	var req SetManualRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.rateUC.SetManualRate(c.Request.Context(), c.Param("tenantID"), req.Rate); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type SwitchEventResponse struct {
	ID              string    `json:"id"`
	OldProviderName string    `json:"old_provider_name,omitempty"`
	NewProviderName string    `json:"new_provider_name"`
	Reason          string    `json:"reason"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (h *RateHandler) ListProviderSwitches(c *gin.Context) {
	events, err := h.switchRepo.GetForTenant(c.Request.Context(), c.Param("tenantID"), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]SwitchEventResponse, len(events))
	for i, e := range events {
		out[i] = SwitchEventResponse{
			ID:              e.ID,
			OldProviderName: e.OldProviderName,
			NewProviderName: e.NewProviderName,
			Reason:          string(e.Reason),
			OccurredAt:      e.OccurredAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

func toRateResponse(quote *domain.RateQuote) RateResponse {
	return RateResponse{
		Rate:         quote.Rate,
		Source:       string(quote.Source),
		ProviderName: quote.ProviderName,
		ObservedAt:   quote.ObservedAt,
	}
}

func statusForError(err error) int {
	var invalidRate *domain.InvalidManualRateError
	var noRate *domain.NoRateAvailableError

	switch {
	case errors.As(err, &invalidRate):
		return http.StatusUnprocessableEntity
	case errors.As(err, &noRate):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
