package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
)

// Celebrator receives the habit whose week just became fully complete.
type Celebrator interface {
	Celebrate(ctx context.Context, habit domain.Habit)
}

type nopCelebrator struct{}

func (nopCelebrator) Celebrate(context.Context, domain.Habit) {}

// HabitStore owns the board for one storage key. Commands are applied one at
// a time; after each change the full board is written back to the store.
type HabitStore struct {
	store      domain.StateStore
	key        string
	celebrator Celebrator
	logger     *zap.Logger

	mu    sync.Mutex
	board domain.Board
}

// ErrStoreUnavailable wraps a failed read of the persisted board.
var ErrStoreUnavailable = errors.New("habit storage unavailable")

// NewHabitStore reads the board once. Missing or unparseable state starts an
// empty board; a failed read is returned as ErrStoreUnavailable and no store
// is built.
func NewHabitStore(ctx context.Context, store domain.StateStore, key string, celebrator Celebrator, logger *zap.Logger) (*HabitStore, error) {
	if key == "" {
		key = domain.DefaultStateKey
	}
	if celebrator == nil {
		celebrator = nopCelebrator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &HabitStore{
		store:      store,
		key:        key,
		celebrator: celebrator,
		logger:     logger,
	}

	board, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.board = board
	return s, nil
}

func (s *HabitStore) load(ctx context.Context) (domain.Board, error) {
	data, err := s.store.Get(ctx, s.key)
	if errors.Is(err, domain.ErrStateNotFound) {
		return domain.Board{}, nil
	}
	if err != nil {
		s.logger.Error("failed to read habits", zap.String("key", s.key), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	board, err := domain.Decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable habits", zap.String("key", s.key), zap.Error(err))
	}

	s.logger.Info("habits loaded", zap.String("key", s.key), zap.Int("count", len(board)))
	return board, nil
}

func (s *HabitStore) Key() string {
	return s.key
}

// Snapshot returns a copy of the current board.
func (s *HabitStore) Snapshot() domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(domain.Board, len(s.board))
	copy(out, s.board)
	return out
}

func (s *HabitStore) Summary() domain.WeeklyStats {
	return domain.Summarize(s.Snapshot())
}

// Dispatch applies cmd, persists the board if it changed and fires any
// celebration. A failed write is returned but the new board is kept.
func (s *HabitStore) Dispatch(ctx context.Context, cmd domain.Command) (domain.Result, error) {
	return s.dispatch(ctx, func(domain.Board) (domain.Command, error) {
		return cmd, nil
	})
}

// dispatch builds the command from the current board under the lock, so the
// checks in prepare and the transition see the same state.
func (s *HabitStore) dispatch(ctx context.Context, prepare func(domain.Board) (domain.Command, error)) (domain.Result, error) {
	s.mu.Lock()
	cmd, err := prepare(s.board)
	if err != nil {
		board := s.board
		s.mu.Unlock()
		return domain.Result{Board: board}, err
	}

	res := domain.Apply(s.board, cmd)
	var saveErr error
	if res.Changed {
		s.board = res.Board
		saveErr = s.persist(ctx, res.Board)
	}
	s.mu.Unlock()

	s.logger.Debug("command applied",
		zap.Stringer("command", cmd.Kind),
		zap.Bool("changed", res.Changed),
		zap.Int("effects", len(res.Effects)))

	for _, effect := range res.Effects {
		if effect.Kind != domain.EffectCelebrate {
			continue
		}
		if i := domain.IndexOf(res.Board, effect.HabitID); i >= 0 {
			s.celebrator.Celebrate(ctx, res.Board[i])
		}
	}

	return res, saveErr
}

func (s *HabitStore) persist(ctx context.Context, board domain.Board) error {
	data, err := domain.Encode(board)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		s.logger.Error("failed to persist habits", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("failed to persist habits: %w", err)
	}
	return nil
}

func (s *HabitStore) Add(ctx context.Context, name string) (domain.Habit, error) {
	res, err := s.dispatch(ctx, func(domain.Board) (domain.Command, error) {
		if strings.TrimSpace(name) == "" {
			return domain.Command{}, domain.ErrHabitNameEmpty
		}
		return domain.Command{Kind: domain.CmdAdd, Name: name}, nil
	})
	if errors.Is(err, domain.ErrHabitNameEmpty) {
		return domain.Habit{}, err
	}

	return res.Board[len(res.Board)-1], err
}

// ToggleDay flips a day of the habit at a full-board position and reports
// whether its week just became complete.
func (s *HabitStore) ToggleDay(ctx context.Context, index, day int) (domain.Habit, bool, error) {
	res, err := s.dispatch(ctx, func(b domain.Board) (domain.Command, error) {
		if index < 0 || index >= len(b) {
			return domain.Command{}, domain.ErrInvalidIndex
		}
		if !domain.ValidDay(day) {
			return domain.Command{}, domain.ErrInvalidDay
		}
		return domain.Command{Kind: domain.CmdToggleDay, Index: index, Day: day}, nil
	})
	if errors.Is(err, domain.ErrInvalidIndex) || errors.Is(err, domain.ErrInvalidDay) {
		return domain.Habit{}, false, err
	}

	return res.Board[index], len(res.Effects) > 0, err
}

func (s *HabitStore) ToggleDayByID(ctx context.Context, id string, day int) (domain.Habit, bool, error) {
	index := -1
	res, err := s.dispatch(ctx, func(b domain.Board) (domain.Command, error) {
		index = domain.IndexOf(b, id)
		if index < 0 {
			return domain.Command{}, domain.ErrHabitNotFound
		}
		if !domain.ValidDay(day) {
			return domain.Command{}, domain.ErrInvalidDay
		}
		return domain.Command{Kind: domain.CmdToggleDay, Index: index, Day: day}, nil
	})
	if errors.Is(err, domain.ErrHabitNotFound) || errors.Is(err, domain.ErrInvalidDay) {
		return domain.Habit{}, false, err
	}

	return res.Board[index], len(res.Effects) > 0, err
}

func (s *HabitStore) ToggleComplete(ctx context.Context, id string) (domain.Habit, error) {
	res, err := s.dispatch(ctx, func(b domain.Board) (domain.Command, error) {
		if domain.IndexOf(b, id) < 0 {
			return domain.Command{}, domain.ErrHabitNotFound
		}
		return domain.Command{Kind: domain.CmdToggleComplete, ID: id}, nil
	})
	if errors.Is(err, domain.ErrHabitNotFound) {
		return domain.Habit{}, err
	}

	return res.Board[domain.IndexOf(res.Board, id)], err
}

// Rename rejects blank names the same way Add does.
func (s *HabitStore) Rename(ctx context.Context, id, name string) (domain.Habit, error) {
	res, err := s.dispatch(ctx, func(b domain.Board) (domain.Command, error) {
		if domain.IndexOf(b, id) < 0 {
			return domain.Command{}, domain.ErrHabitNotFound
		}
		if strings.TrimSpace(name) == "" {
			return domain.Command{}, domain.ErrHabitNameEmpty
		}
		return domain.Command{Kind: domain.CmdRename, ID: id, Name: name}, nil
	})
	if errors.Is(err, domain.ErrHabitNotFound) || errors.Is(err, domain.ErrHabitNameEmpty) {
		return domain.Habit{}, err
	}

	return res.Board[domain.IndexOf(res.Board, id)], err
}

// Reorder moves an active habit; from and to count active habits only.
func (s *HabitStore) Reorder(ctx context.Context, from, to int) (domain.Board, error) {
	res, err := s.dispatch(ctx, func(b domain.Board) (domain.Command, error) {
		active, _ := domain.Partition(b)
		if from < 0 || from >= len(active) || to < 0 || to >= len(active) {
			return domain.Command{}, domain.ErrInvalidIndex
		}
		return domain.Command{Kind: domain.CmdReorder, From: from, To: to}, nil
	})
	if errors.Is(err, domain.ErrInvalidIndex) {
		return nil, err
	}

	return res.Board, err
}

// DeleteCompleted removes archived habits and returns how many were dropped.
func (s *HabitStore) DeleteCompleted(ctx context.Context) (int, error) {
	before := 0
	res, err := s.dispatch(ctx, func(b domain.Board) (domain.Command, error) {
		before = len(b)
		return domain.Command{Kind: domain.CmdDeleteCompleted}, nil
	})

	return before - len(res.Board), err
}
