package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the weekly grid",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a habit to the end of the list",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <habit> <day>",
	Short: "Check or uncheck one day of a habit",
	Long: `Flips one cell of the weekly grid.

<habit> is the row number shown by "habits list" or a habit id prefix.
<day> is a label (M, T, W, Th, F, S, Su), a short name (mon..sun) or 1-7.`,
	Args: cobra.ExactArgs(2),
	RunE: runToggle,
}

var completeCmd = &cobra.Command{
	Use:     "complete <habit>",
	Aliases: []string{"archive"},
	Short:   "Archive a habit, or restore an archived one",
	Args:    cobra.ExactArgs(1),
	RunE:    runComplete,
}

var renameCmd = &cobra.Command{
	Use:   "rename <habit> <name>",
	Short: "Rename a habit",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRename,
}

var moveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move an active habit to another row",
	Long:  `Positions count active habits only, starting at 1.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all archived habits",
	Args:  cobra.NoArgs,
	RunE:  runPurge,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize this week's progress",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var errAmbiguousHabit = errors.New("habit reference matches more than one habit")

func boardTitle() string {
	return "Habits · " + cfg.Board
}

func runList(cmd *cobra.Command, args []string) error {
	store, b, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	fmt.Fprintln(cmd.OutOrStdout(), renderBoard(boardTitle(), store.Snapshot()))
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	store, b, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	habit, err := store.Add(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%s)\n", habit.Name, habit.ID)
	return nil
}

func runToggle(cmd *cobra.Command, args []string) error {
	day, err := parseDay(args[1])
	if err != nil {
		return err
	}

	store, b, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	target, err := resolveHabit(store.Snapshot(), args[0])
	if err != nil {
		return err
	}

	habit, celebrate, err := store.ToggleDayByID(cmd.Context(), target.ID, day)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	state := "unchecked"
	if habit.WeekProgress[day] {
		state = "checked"
	}
	fmt.Fprintf(out, "%s: %s %s (%d/%d)\n", habit.Name, domain.DayLabels[day], state, habit.DaysDone(), domain.DaysPerWeek)
	if celebrate {
		fmt.Fprintln(out, headerStyle.Render("🎉 Full week for "+habit.Name+"!"))
	}
	return nil
}

func runComplete(cmd *cobra.Command, args []string) error {
	store, b, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	target, err := resolveHabit(store.Snapshot(), args[0])
	if err != nil {
		return err
	}

	habit, err := store.ToggleComplete(cmd.Context(), target.ID)
	if err != nil {
		return err
	}

	if habit.Completed {
		fmt.Fprintf(cmd.OutOrStdout(), "Archived %q\n", habit.Name)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %q\n", habit.Name)
	}
	return nil
}

func runRename(cmd *cobra.Command, args []string) error {
	store, b, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	target, err := resolveHabit(store.Snapshot(), args[0])
	if err != nil {
		return err
	}

	habit, err := store.Rename(cmd.Context(), target.ID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q\n", target.Name, habit.Name)
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	from, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid position %q", args[0])
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid position %q", args[1])
	}

	store, b, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	board, err := store.Reorder(cmd.Context(), from-1, to-1)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderBoard(boardTitle(), board))
	return nil
}

func runPurge(cmd *cobra.Command, args []string) error {
	store, b, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	n, err := store.DeleteCompleted(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d archived habit(s)\n", n)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	store, b, err := openBoard(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()

	fmt.Fprintln(cmd.OutOrStdout(), renderStats(store.Summary()))
	return nil
}

// resolveHabit accepts an exact id, a 1-based row number counted the way
// list renders the board, or an id prefix, tried in that order. Imported ids
// may be all digits, so an exact id wins over a row number.
func resolveHabit(b domain.Board, ref string) (domain.Habit, error) {
	active, archived := domain.Partition(b)
	b = append(append(make(domain.Board, 0, len(b)), active...), archived...)

	for _, h := range b {
		if h.ID == ref {
			return h, nil
		}
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(b) {
			return domain.Habit{}, fmt.Errorf("%w: row %d", domain.ErrHabitNotFound, n)
		}
		return b[n-1], nil
	}

	var match *domain.Habit
	for i := range b {
		if !strings.HasPrefix(b[i].ID, ref) {
			continue
		}
		if match != nil {
			return domain.Habit{}, fmt.Errorf("%w: %q", errAmbiguousHabit, ref)
		}
		match = &b[i]
	}
	if match == nil {
		return domain.Habit{}, fmt.Errorf("%w: %q", domain.ErrHabitNotFound, ref)
	}
	return *match, nil
}

var dayNames = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// parseDay maps user input to a day index, Monday being 0.
func parseDay(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > domain.DaysPerWeek {
			return 0, fmt.Errorf("%w: %d", domain.ErrInvalidDay, n)
		}
		return n - 1, nil
	}

	for i, label := range domain.DayLabels {
		if strings.EqualFold(s, label) {
			return i, nil
		}
	}
	lower := strings.ToLower(s)
	for i, name := range dayNames {
		if strings.HasPrefix(lower, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrInvalidDay, s)
}
