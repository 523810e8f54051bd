package domain

import (
	"encoding/json"
	"fmt"
)

// DefaultStateKey is the storage slot holding the whole board.
const DefaultStateKey = "habits"

// Encode serializes the board in its persisted layout: a JSON array of
// habit records. A nil board encodes as an empty array.
func Encode(b Board) ([]byte, error) {
	if b == nil {
		b = Board{}
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal habits: %w", err)
	}
	return data, nil
}

// Decode parses a persisted board. It always returns a usable board: on
// malformed input the board is empty and err explains why. Later records
// reusing an earlier id are dropped.
func Decode(data []byte) (Board, error) {
	if len(data) == 0 {
		return Board{}, nil
	}

	var raw []struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Completed    bool   `json:"completed"`
		WeekProgress []bool `json:"weekProgress"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Board{}, fmt.Errorf("failed to unmarshal habits: %w", err)
	}

	board := make(Board, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		if r.ID == "" {
			return Board{}, fmt.Errorf("habit at position %d has no id", i)
		}
		if len(r.WeekProgress) != DaysPerWeek {
			return Board{}, fmt.Errorf("habit %s has %d progress days, want %d", r.ID, len(r.WeekProgress), DaysPerWeek)
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true

		h := Habit{ID: r.ID, Name: r.Name, Completed: r.Completed}
		copy(h.WeekProgress[:], r.WeekProgress)
		board = append(board, h)
	}

	return board, nil
}
