package services

import (
	"context"

	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
)

type StatsService struct {
	boards *BoardRegistry
}

func NewStatsService(boards *BoardRegistry) *StatsService {
	return &StatsService{
		boards: boards,
	}
}

func (s *StatsService) GetWeeklyStats(ctx context.Context, board string) (*domain.WeeklyStats, error) {
	store, err := s.boards.Board(ctx, board)
	if err != nil {
		return nil, err
	}

	stats := store.Summary()
	return &stats, nil
}
