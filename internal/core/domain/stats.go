package domain

type WeeklyStats struct {
	TotalHabits    int         `json:"total_habits"`
	ActiveHabits   int         `json:"active_habits"`
	ArchivedHabits int         `json:"archived_habits"`
	FullWeeks      int         `json:"full_weeks"`
	OverallRate    float64     `json:"overall_completion_rate"`
	DayTotals      [7]int      `json:"day_totals"`
	HabitStats     []HabitStat `json:"habits"`
}

type HabitStat struct {
	HabitID        string  `json:"habit_id"`
	HabitName      string  `json:"habit_name"`
	Completed      bool    `json:"completed"`
	DaysCompleted  int     `json:"days_completed"`
	CompletionRate float64 `json:"completion_rate"`
	WeekComplete   bool    `json:"week_complete"`
}

// Summarize derives grid statistics from the board. Nothing here is stored.
func Summarize(b Board) WeeklyStats {
	stats := WeeklyStats{
		TotalHabits: len(b),
		HabitStats:  make([]HabitStat, 0, len(b)),
	}

	totalDone := 0
	for _, h := range b {
		if h.Completed {
			stats.ArchivedHabits++
		} else {
			stats.ActiveHabits++
		}

		for day, done := range h.WeekProgress {
			if done {
				stats.DayTotals[day]++
			}
		}

		done := h.DaysDone()
		totalDone += done

		hStat := HabitStat{
			HabitID:        h.ID,
			HabitName:      h.Name,
			Completed:      h.Completed,
			DaysCompleted:  done,
			CompletionRate: float64(done) / DaysPerWeek * 100,
			WeekComplete:   h.WeekComplete(),
		}
		if hStat.WeekComplete {
			stats.FullWeeks++
		}
		stats.HabitStats = append(stats.HabitStats, hStat)
	}

	if len(b) > 0 {
		stats.OverallRate = float64(totalDone) / float64(len(b)*DaysPerWeek) * 100
	}

	return stats
}
