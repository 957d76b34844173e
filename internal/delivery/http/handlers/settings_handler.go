package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/niagahub/niaga-rate-service/internal/domain"
	"github.com/niagahub/niaga-rate-service/internal/usecase"
)

type SettingsHandler struct {
	settingsUC usecase.SettingsUsecase
}

func NewSettingsHandler(settingsUC usecase.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{settingsUC: settingsUC}
}

type SettingsResponse struct {
	TenantID          string    `json:"tenant_id"`
	Mode              string    `json:"mode"`
	ManualRate        *float64  `json:"manual_rate,omitempty"`
	ActiveProviderID  *string   `json:"active_provider_id,omitempty"`
	CurrentRate       *float64  `json:"current_rate,omitempty"`
	AutoUpdateEnabled bool      `json:"auto_update_enabled"`
	AutoUpdateTime    string    `json:"auto_update_time"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type SetModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

type SetAutoUpdateRequest struct {
	Enabled    *bool  `json:"enabled" binding:"required"`
	UpdateTime string `json:"update_time"`
}

type SetActiveProviderRequest struct {
	ProviderID string `json:"provider_id" binding:"required"`
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsUC.GetSettings(c.Request.Context(), c.Param("tenantID"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	if settings == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "settings not found"})
		return
	}

	c.JSON(http.StatusOK, SettingsResponse{
		TenantID:          settings.TenantID,
		Mode:              string(settings.Mode),
		ManualRate:        settings.ManualRate,
		ActiveProviderID:  settings.ActiveProviderID,
		CurrentRate:       settings.CurrentRate,
		AutoUpdateEnabled: settings.AutoUpdateEnabled,
		AutoUpdateTime:    settings.AutoUpdateTime,
		UpdatedAt:         settings.UpdatedAt,
	})
}

func (h *SettingsHandler) SetMode(c *gin.Context) {
	var req SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settingsUC.SetMode(c.Request.Context(), c.Param("tenantID"), domain.RateMode(req.Mode)); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SettingsHandler) SetAutoUpdate(c *gin.Context) {
	var req SetAutoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settingsUC.SetAutoUpdate(c.Request.Context(), c.Param("tenantID"), *req.Enabled, req.UpdateTime); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SettingsHandler) SetActiveProvider(c *gin.Context) {
	var req SetActiveProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settingsUC.SetActiveProvider(c.Request.Context(), c.Param("tenantID"), req.ProviderID); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
