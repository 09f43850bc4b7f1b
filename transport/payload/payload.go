package payload

import (
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/service"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

// Session is the body both transports send for a session view.
type Session struct {
	ID      string   `json:"id"`
	Game    *Game    `json:"game,omitempty"`
	Counter *Counter `json:"counter,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type Game struct {
	Board       entity.Board         `json:"board"`
	CurrentMove int                  `json:"current_move"`
	Status      entity.GameStatus    `json:"status"`
	StatusText  string               `json:"status_text"`
	NextPlayer  entity.Cell          `json:"next_player,omitempty"`
	Moves       []tictactoe.MoveItem `json:"moves"`
}

type Counter struct {
	Clicks int    `json:"clicks"`
	Label  string `json:"label"`
}

func FromView(view *service.View, order tictactoe.Order) *Session {
	return &Session{
		ID: view.SessionID,
		Game: &Game{
			Board:       view.Game.Board,
			CurrentMove: view.Game.CurrentMove,
			Status:      view.Game.Status,
			StatusText:  tictactoe.StatusText(view.Game),
			NextPlayer:  view.Game.NextPlayer,
			Moves:       tictactoe.MoveList(view.Game, order),
		},
		Counter: CounterOf(view),
	}
}

func CounterOf(view *service.View) *Counter {
	return &Counter{
		Clicks: view.Counter.Clicks,
		Label:  view.Counter.Label(),
	}
}

// Rejected - the view with the reason a move or jump was ignored.
func Rejected(view *service.View, order tictactoe.Order, err error) *Session {
	session := FromView(view, order)
	session.Error = err.Error()

	return session
}
