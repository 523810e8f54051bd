package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/habitgrid/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
	"github.com/comitanigiacomo/habitgrid/internal/core/services"
)

type HabitHandler struct {
	boards *services.BoardRegistry
	logger *zap.Logger
}

func NewHabitHandler(boards *services.BoardRegistry, logger *zap.Logger) *HabitHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HabitHandler{
		boards: boards,
		logger: logger,
	}
}

type createHabitRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

type renameHabitRequest struct {
	Name string `json:"name" binding:"max=200"`
}

type reorderRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

type boardResponse struct {
	Active      domain.Board `json:"active"`
	Archived    domain.Board `json:"archived"`
	HasArchived bool         `json:"has_archived"`
	Days        [7]string    `json:"days"`
}

type toggleDayResponse struct {
	Habit     domain.Habit `json:"habit"`
	Celebrate bool         `json:"celebrate"`
}

func newBoardResponse(b domain.Board) boardResponse {
	active, archived := domain.Partition(b)
	return boardResponse{
		Active:      active,
		Archived:    archived,
		HasArchived: len(archived) > 0,
		Days:        domain.DayLabels,
	}
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.GET("", h.List)
		habits.POST("", h.Create)
		habits.POST("/reorder", h.Reorder)
		habits.DELETE("/completed", h.DeleteCompleted)
		habits.PUT("/:id", h.Rename)
		habits.PUT("/:id/complete", h.ToggleComplete)
		habits.PUT("/:id/days/:day", h.ToggleDay)
	}
}

func (h *HabitHandler) store(c *gin.Context) (*services.HabitStore, bool) {
	board, ok := middleware.GetBoard(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "board context missing"})
		return nil, false
	}

	s, err := h.boards.Board(c.Request.Context(), board)
	if err != nil {
		respondBoardError(c, h.logger, err)
		return nil, false
	}
	return s, true
}

// respondBoardError answers a failed board lookup. A board that could not be
// loaded is a 503 so clients retry.
func respondBoardError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidBoardName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrStoreUnavailable):
		logger.Warn("board unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "habit storage unavailable, try again"})
	default:
		logger.Error("board lookup failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondError maps store errors to status codes. Persistence failures are
// 500s even though the in-memory board already moved on.
func (h *HabitHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit not found"})
	case errors.Is(err, domain.ErrHabitNameEmpty),
		errors.Is(err, domain.ErrInvalidDay),
		errors.Is(err, domain.ErrInvalidIndex):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("habit request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *HabitHandler) List(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newBoardResponse(s.Snapshot()))
}

func (h *HabitHandler) Create(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := s.Add(c.Request.Context(), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) ToggleDay(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}

	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidDay.Error()})
		return
	}

	habit, celebrate, err := s.ToggleDayByID(c.Request.Context(), c.Param("id"), day)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toggleDayResponse{Habit: habit, Celebrate: celebrate})
}

func (h *HabitHandler) ToggleComplete(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}

	habit, err := s.ToggleComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Rename(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}

	var req renameHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := s.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Reorder takes positions within the active list, as reported by a drag.
func (h *HabitHandler) Reorder(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := s.Reorder(c.Request.Context(), *req.From, *req.To)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBoardResponse(board))
}

func (h *HabitHandler) DeleteCompleted(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}

	if _, err := s.DeleteCompleted(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
