package domain

import "slices"

type CommandKind int

const (
	CmdAdd CommandKind = iota + 1
	CmdToggleDay
	CmdToggleComplete
	CmdRename
	CmdReorder
	CmdDeleteCompleted
)

var commandNames = map[CommandKind]string{
	CmdAdd:             "add",
	CmdToggleDay:       "toggle_day",
	CmdToggleComplete:  "toggle_complete",
	CmdRename:          "rename",
	CmdReorder:         "reorder",
	CmdDeleteCompleted: "delete_completed",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is a user intent. Only the fields relevant to Kind are read:
//
//	CmdAdd             Name
//	CmdToggleDay       Index, Day
//	CmdToggleComplete  ID
//	CmdRename          ID, Name
//	CmdReorder         From, To (active-list positions)
//	CmdDeleteCompleted -
type Command struct {
	Kind  CommandKind
	ID    string
	Name  string
	Index int
	Day   int
	From  int
	To    int
}

type EffectKind int

const (
	EffectCelebrate EffectKind = iota + 1
)

type Effect struct {
	Kind    EffectKind
	HabitID string
}

type Result struct {
	Board   Board
	Effects []Effect
	Changed bool
}

// Apply is the board reducer. It never fails; commands that do not apply
// return the board unchanged with Changed set to false.
func Apply(b Board, cmd Command) Result {
	var next Board
	var effects []Effect

	switch cmd.Kind {
	case CmdAdd:
		next = Add(b, cmd.Name)
	case CmdToggleDay:
		var celebrate bool
		next, celebrate = ToggleDay(b, cmd.Index, cmd.Day)
		if celebrate {
			effects = append(effects, Effect{Kind: EffectCelebrate, HabitID: next[cmd.Index].ID})
		}
	case CmdToggleComplete:
		next = ToggleComplete(b, cmd.ID)
	case CmdRename:
		next = Rename(b, cmd.ID, cmd.Name)
	case CmdReorder:
		next = ReorderActive(b, cmd.From, cmd.To)
	case CmdDeleteCompleted:
		next = DeleteCompleted(b)
	default:
		next = b
	}

	return Result{
		Board:   next,
		Effects: effects,
		Changed: !slices.Equal(b, next),
	}
}
