package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/niagahub/niaga-rate-service/internal/usecase"
	providerdto "github.com/niagahub/niaga-rate-service/internal/usecase/dto/provider"
)

type ProviderHandler struct {
	providerUC usecase.ProviderUsecase
}

func NewProviderHandler(providerUC usecase.ProviderUsecase) *ProviderHandler {
	return &ProviderHandler{providerUC: providerUC}
}

type CreateProviderRequest struct {
	Name              string `json:"name" binding:"required"`
	Code              string `json:"code" binding:"required"`
	APIURL            string `json:"api_url" binding:"required"`
	APIKey            string `json:"api_key"`
	RequiresAPIKey    bool   `json:"requires_api_key"`
	IsUnlimited       bool   `json:"is_unlimited"`
	MonthlyQuota      int    `json:"monthly_quota"`
	Priority          int    `json:"priority"`
	Enabled           bool   `json:"enabled"`
	WarningThreshold  int    `json:"warning_threshold"`
	CriticalThreshold int    `json:"critical_threshold"`
}

type UpdateProviderRequest struct {
	Name              *string `json:"name"`
	APIURL            *string `json:"api_url"`
	APIKey            *string `json:"api_key"`
	MonthlyQuota      *int    `json:"monthly_quota"`
	Priority          *int    `json:"priority"`
	Enabled           *bool   `json:"enabled"`
	WarningThreshold  *int    `json:"warning_threshold"`
	CriticalThreshold *int    `json:"critical_threshold"`
}

type SetEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (h *ProviderHandler) ListProviders(c *gin.Context) {
	providers, err := h.providerUC.ListProviders(c.Request.Context(), c.Param("tenantID"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers})
}

func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	var req CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	output, err := h.providerUC.CreateProvider(c.Request.Context(), &providerdto.CreateProviderInput{
		TenantID:          c.Param("tenantID"),
		Name:              req.Name,
		Code:              req.Code,
		APIURL:            req.APIURL,
		APIKey:            req.APIKey,
		RequiresAPIKey:    req.RequiresAPIKey,
		IsUnlimited:       req.IsUnlimited,
		MonthlyQuota:      req.MonthlyQuota,
		Priority:          req.Priority,
		Enabled:           req.Enabled,
		WarningThreshold:  req.WarningThreshold,
		CriticalThreshold: req.CriticalThreshold,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, output)
}

func (h *ProviderHandler) UpdateProvider(c *gin.Context) {
	var req UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.providerUC.UpdateProvider(c.Request.Context(), &providerdto.UpdateProviderInput{
		ProviderID:        c.Param("providerID"),
		Name:              req.Name,
		APIURL:            req.APIURL,
		APIKey:            req.APIKey,
		MonthlyQuota:      req.MonthlyQuota,
		Priority:          req.Priority,
		Enabled:           req.Enabled,
		WarningThreshold:  req.WarningThreshold,
		CriticalThreshold: req.CriticalThreshold,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ProviderHandler) SetProviderEnabled(c *gin.Context) {
	var req SetEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.providerUC.SetProviderEnabled(c.Request.Context(), c.Param("providerID"), *req.Enabled); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ProviderHandler) DeleteProvider(c *gin.Context) {
	if err := h.providerUC.DeleteProvider(c.Request.Context(), c.Param("providerID")); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
