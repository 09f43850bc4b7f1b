package tictactoe

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder - anything but "desc" keeps the natural order.
func ParseOrder(raw string) Order {
	if Order(raw) == OrderDesc {
		return OrderDesc
	}
	return OrderAsc
}

// MoveItem is one line of the history list a renderer shows.
type MoveItem struct {
	Move        int              `json:"move"`
	Description string           `json:"description"`
	Location    *entity.Location `json:"location,omitempty"`
	Current     bool             `json:"current"`
}

func StatusText(snapshot Snapshot) string {
	switch {
	case snapshot.Status.IsWin():
		return "Winner: " + string(snapshot.Status.Winner)
	case snapshot.Status.IsDraw():
		return "Draw"
	default:
		return "Next player: " + string(snapshot.NextPlayer)
	}
}

func MoveDescription(move int, record entity.MoveRecord) string {
	if move == 0 || record.Location == nil {
		return "Go to game start"
	}

	return fmt.Sprintf("Go to move #%d %s", move, record.Location)
}

// MoveList - builds the history list in the requested order. Sorting here never reaches the engine.
func MoveList(snapshot Snapshot, order Order) []MoveItem {
	items := make([]MoveItem, 0, len(snapshot.Moves))
	for i, record := range snapshot.Moves {
		item := MoveItem{
			Move:        i,
			Description: MoveDescription(i, record),
			Location:    record.Location,
			Current:     i == snapshot.CurrentMove,
		}

		if item.Current {
			item.Description = fmt.Sprintf("You are at move #%d", i)
		}

		items = append(items, item)
	}

	if order == OrderDesc {
		slices.Reverse(items)
	}

	return items
}
