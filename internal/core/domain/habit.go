package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty = errors.New("habit name cannot be empty")
	ErrInvalidIndex   = errors.New("habit index out of range")
	ErrInvalidDay     = errors.New("invalid day (must be 0-6)")
)

const DaysPerWeek = 7

// DayLabels are the fixed column headers of the weekly grid, Monday first.
var DayLabels = [DaysPerWeek]string{"M", "T", "W", "Th", "F", "S", "Su"}

// Week is the static Mon..Sun progress grid. It is not calendar-aware.
type Week [DaysPerWeek]bool

type Habit struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Completed    bool   `json:"completed"`
	WeekProgress Week   `json:"weekProgress"`
}

// NewHabit returns an active habit with an empty week. The name must not be
// blank once trimmed.
func NewHabit(name string) (Habit, error) {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return Habit{}, ErrHabitNameEmpty
	}

	return Habit{
		ID:   uuid.New().String(),
		Name: clean,
	}, nil
}

// WeekComplete reports whether every day of the week is ticked.
func (h Habit) WeekComplete() bool {
	for _, done := range h.WeekProgress {
		if !done {
			return false
		}
	}
	return true
}

func (h Habit) DaysDone() int {
	n := 0
	for _, done := range h.WeekProgress {
		if done {
			n++
		}
	}
	return n
}

func ValidDay(day int) bool {
	return day >= 0 && day < DaysPerWeek
}
