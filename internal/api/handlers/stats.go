package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/crickwise/dream11-optimizer/internal/services"
	"github.com/crickwise/dream11-optimizer/pkg/utils"
)

// StatsHandler exposes the protected ingestion maintenance routes.
type StatsHandler struct {
	dataFetcher *services.DataFetcherService
	logger      *logrus.Logger
}

func NewStatsHandler(dataFetcher *services.DataFetcherService, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{dataFetcher: dataFetcher, logger: logger}
}

// RefreshStats triggers an immediate provider refresh. The fetch runs in the
// foreground so the caller sees failures directly.
func (h *StatsHandler) RefreshStats(c *gin.Context) {
	if err := h.dataFetcher.RefreshPlayers(c.Request.Context()); err != nil {
		h.logger.Errorf("Manual stats refresh failed: %v", err)
		utils.SendInternalError(c, "Stats refresh failed")
		return
	}
	utils.SendSuccess(c, gin.H{"refreshed": true})
}

// GetStatus reports the fetch scheduler state.
func (h *StatsHandler) GetStatus(c *gin.Context) {
	utils.SendSuccess(c, h.dataFetcher.GetFetchStatus())
}
