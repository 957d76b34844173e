package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/niagahub/niaga-rate-service/internal/delivery/http/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Rate     *handlers.RateHandler
	Provider *handlers.ProviderHandler
	Settings *handlers.SettingsHandler
}

func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	tenant := api.Group("/tenants/:tenantID")
	{
		tenant.GET("/rate", h.Rate.GetCurrentRate)
		tenant.POST("/rate/refresh", h.Rate.RefreshRate)
		tenant.PUT("/rate/manual", h.Rate.SetManualRate)
		tenant.GET("/provider-switches", h.Rate.ListProviderSwitches)

		tenant.GET("/providers", h.Provider.ListProviders)
		tenant.POST("/providers", h.Provider.CreateProvider)

		tenant.GET("/settings", h.Settings.GetSettings)
		tenant.PATCH("/settings/mode", h.Settings.SetMode)
		tenant.PATCH("/settings/auto-update", h.Settings.SetAutoUpdate)
		tenant.PATCH("/settings/active-provider", h.Settings.SetActiveProvider)
	}

	providers := api.Group("/providers/:providerID")
	{
		providers.PATCH("", h.Provider.UpdateProvider)
		providers.PATCH("/enabled", h.Provider.SetProviderEnabled)
		providers.DELETE("", h.Provider.DeleteProvider)
	}

	return router
}
