package domain

import "strings"

// Board is the ordered habit list. Every transition below returns a fresh
// slice and leaves its input untouched.
type Board []Habit

func (b Board) clone() Board {
	out := make(Board, len(b))
	copy(out, b)
	return out
}

// IndexOf returns the position of the habit with the given id, or -1.
func IndexOf(b Board, id string) int {
	for i, h := range b {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// Partition splits the board into active and archived habits, keeping order.
func Partition(b Board) (active, archived Board) {
	active = make(Board, 0, len(b))
	archived = make(Board, 0)
	for _, h := range b {
		if h.Completed {
			archived = append(archived, h)
		} else {
			active = append(active, h)
		}
	}
	return active, archived
}

func Add(b Board, name string) Board {
	habit, err := NewHabit(name)
	if err != nil {
		return b
	}

	out := make(Board, 0, len(b)+1)
	out = append(out, b...)
	return append(out, habit)
}

// ToggleDay flips one day of the habit at index. celebrate is true only when
// this flip moved the week from incomplete to fully complete.
func ToggleDay(b Board, index, day int) (Board, bool) {
	if index < 0 || index >= len(b) || !ValidDay(day) {
		return b, false
	}

	out := b.clone()
	before := out[index].WeekComplete()
	out[index].WeekProgress[day] = !out[index].WeekProgress[day]
	after := out[index].WeekComplete()

	return out, !before && after
}

// ToggleComplete flips the archive flag of id, then moves archived habits
// behind active ones without disturbing the order inside each group.
func ToggleComplete(b Board, id string) Board {
	out := b.clone()
	if i := IndexOf(out, id); i >= 0 {
		out[i].Completed = !out[i].Completed
	}

	active, archived := Partition(out)
	return append(active, archived...)
}

func DeleteCompleted(b Board) Board {
	active, _ := Partition(b)
	return active
}

// Rename replaces the name of id. Blank names are ignored, as in Add.
func Rename(b Board, id, name string) Board {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return b
	}

	i := IndexOf(b, id)
	if i < 0 {
		return b
	}

	out := b.clone()
	out[i].Name = clean
	return out
}

// Reorder removes the habit at from and reinserts it at to, both positions
// counted over the full board. to is clamped into range.
func Reorder(b Board, from, to int) Board {
	if from < 0 || from >= len(b) {
		return b
	}
	to = clamp(to, 0, len(b)-1)
	if from == to {
		return b
	}

	out := b.clone()
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append(Board{moved}, out[to:]...)...)
	return out
}

// ReorderActive moves an active habit using positions counted over the
// active habits only, which is what a drag over the active list reports.
// Archived habits keep their absolute positions.
func ReorderActive(b Board, from, to int) Board {
	positions := make([]int, 0, len(b))
	for i, h := range b {
		if !h.Completed {
			positions = append(positions, i)
		}
	}
	if from < 0 || from >= len(positions) {
		return b
	}
	to = clamp(to, 0, len(positions)-1)
	if from == to {
		return b
	}

	out := b.clone()
	moved := out[positions[from]]
	if from < to {
		for k := from; k < to; k++ {
			out[positions[k]] = out[positions[k+1]]
		}
	} else {
		for k := from; k > to; k-- {
			out[positions[k]] = out[positions[k-1]]
		}
	}
	out[positions[to]] = moved
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
