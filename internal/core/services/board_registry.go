package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
)

var ErrInvalidBoardName = errors.New("invalid board name (lowercase letters, digits, '-' or '_', max 64)")

var boardNameRegex = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// DefaultBoard is stored under the plain "habits" key.
const DefaultBoard = "default"

const loadTimeout = 10 * time.Second

func ValidBoardName(name string) bool {
	return boardNameRegex.MatchString(name)
}

// StateKey maps a board name to its storage slot.
func StateKey(board string) string {
	if board == "" || board == DefaultBoard {
		return domain.DefaultStateKey
	}
	return domain.DefaultStateKey + ":" + board
}

// BoardRegistry hands out one HabitStore per board name, all backed by the
// same StateStore. Boards are loaded on first use; a board whose load failed
// is not kept, so the next call reads the store again.
type BoardRegistry struct {
	store      domain.StateStore
	celebrator Celebrator
	logger     *zap.Logger

	mu     sync.Mutex
	boards map[string]*HabitStore
}

func NewBoardRegistry(store domain.StateStore, celebrator Celebrator, logger *zap.Logger) *BoardRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoardRegistry{
		store:      store,
		celebrator: celebrator,
		logger:     logger,
		boards:     make(map[string]*HabitStore),
	}
}

func (r *BoardRegistry) Board(ctx context.Context, name string) (*HabitStore, error) {
	if name == "" {
		name = DefaultBoard
	}
	if !ValidBoardName(name) {
		return nil, ErrInvalidBoardName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.boards[name]; ok {
		return s, nil
	}

	// The board outlives the request that first asked for it.
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
	defer cancel()

	s, err := NewHabitStore(loadCtx, r.store, StateKey(name), r.celebrator, r.logger.With(zap.String("board", name)))
	if err != nil {
		return nil, err
	}
	r.boards[name] = s
	return s, nil
}
