package entity

// Session is everything one visitor owns: the tic-tac-toe history with its cursor and the click counter.
type Session struct {
	ID          string       `json:"id"`
	History     []MoveRecord `json:"history"`
	CurrentMove int          `json:"current_move"`
	Counter     Counter      `json:"counter"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:      id,
		History: []MoveRecord{{}},
	}
}
