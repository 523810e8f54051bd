package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/habitgrid/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habitgrid/internal/core/services"
)

type StatsHandler struct {
	svc    *services.StatsService
	logger *zap.Logger
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc, logger: zap.NewNop()}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/weekly", h.GetWeeklyStats)
}

func (h *StatsHandler) GetWeeklyStats(c *gin.Context) {
	board, ok := middleware.GetBoard(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.svc.GetWeeklyStats(c.Request.Context(), board)
	if err != nil {
		respondBoardError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
