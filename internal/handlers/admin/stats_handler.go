// internal/handlers/admin/stats_handler.go
package admin

import (
	"net/http"

	"fleetwash-service/internal/pkg/response"
	"fleetwash-service/internal/repository/postgres"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsHandler struct {
	washRepo *postgres.WashRequestRepository
	logger   *zap.Logger
}

func NewStatsHandler(washRepo *postgres.WashRequestRepository, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		washRepo: washRepo,
		logger:   logger,
	}
}

// GetStats aggregates wash request counts and revenue, optionally
// scoped to one organization via ?organization_id=.
func (h *StatsHandler) GetStats(c *gin.Context) {
	orgID := c.Query("organization_id")

	stats, err := h.washRepo.GetStats(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("stats aggregation failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to compute stats", err)
		return
	}

	response.Success(c, http.StatusOK, "stats retrieved", stats)
}
