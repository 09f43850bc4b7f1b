package tictactoe

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

// Snapshot is a read-only view of the engine handed to renderers.
type Snapshot struct {
	Board       entity.Board        `json:"board"`
	CurrentMove int                 `json:"current_move"`
	Moves       []entity.MoveRecord `json:"moves"`
	Status      entity.GameStatus   `json:"status"`
	NextPlayer  entity.Cell         `json:"next_player,omitempty"`
}

// Engine keeps the move history and a cursor into it. The board is always History[CurrentMove].
// It is not safe for concurrent use.
type Engine struct {
	history     []entity.MoveRecord
	currentMove int
}

func NewEngine() *Engine {
	return &Engine{
		history: []entity.MoveRecord{{}},
	}
}

// Restore - rebuilds an engine from stored history, checking every record against the rules.
func Restore(history []entity.MoveRecord, currentMove int) (*Engine, error) {
	if err := validateHistory(history); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrCorruptHistory, err)
	}

	if currentMove < 0 || currentMove >= len(history) {
		return nil, fmt.Errorf("%w: current move %d outside 0..%d", apperror.ErrCorruptHistory, currentMove, len(history)-1)
	}

	return &Engine{
		history:     cloneHistory(history),
		currentMove: currentMove,
	}, nil
}

// ApplyMove - plays the current player's mark at cell. A rejected move leaves the engine untouched
// and is reported through an error wrapping apperror.ErrIllegalMove.
func (that *Engine) ApplyMove(cell int) (Snapshot, error) {
	if err := that.validateMove(cell); err != nil {
		return that.Snapshot(), fmt.Errorf("%w: %w", apperror.ErrIllegalMove, err)
	}

	location := entity.LocationOf(cell)
	next := that.board().Place(cell, entity.PlayerForMove(that.currentMove))

	// playing from a rewound position drops the moves after it
	that.history = append(that.history[:that.currentMove+1:that.currentMove+1], entity.MoveRecord{
		Board:    next,
		Location: &location,
	})
	that.currentMove = len(that.history) - 1

	return that.Snapshot(), nil
}

// JumpTo - moves the cursor to a recorded move without touching the history.
func (that *Engine) JumpTo(move int) (Snapshot, error) {
	if move < 0 || move >= len(that.history) {
		return that.Snapshot(), fmt.Errorf("%w: move %d outside 0..%d", apperror.ErrIllegalJump, move, len(that.history)-1)
	}

	that.currentMove = move

	return that.Snapshot(), nil
}

func (that *Engine) Snapshot() Snapshot {
	board := that.board()
	status := entity.EvaluateStatus(board)

	var next entity.Cell
	if !status.IsFinished() {
		next = entity.PlayerForMove(that.currentMove)
	}

	return Snapshot{
		Board:       board,
		CurrentMove: that.currentMove,
		Moves:       cloneHistory(that.history),
		Status:      status,
		NextPlayer:  next,
	}
}

func (that *Engine) History() []entity.MoveRecord {
	return cloneHistory(that.history)
}

func (that *Engine) CurrentMove() int {
	return that.currentMove
}

func (that *Engine) board() entity.Board {
	return that.history[that.currentMove].Board
}

// validateMove - checks if the move is valid.
func (that *Engine) validateMove(cell int) error {
	if !entity.IsValidCell(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	board := that.board()

	if entity.EvaluateStatus(board).IsFinished() {
		return apperror.ErrGameFinished
	}

	if board[cell] != entity.EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	return nil
}

func validateHistory(history []entity.MoveRecord) error {
	if len(history) == 0 {
		return errors.New("history is empty")
	}

	if history[0].Board != (entity.Board{}) || history[0].Location != nil {
		return errors.New("record 0 is not the empty board")
	}

	for i := 1; i < len(history); i++ {
		prev, record := history[i-1], history[i]

		if record.Location == nil {
			return fmt.Errorf("record %d has no location", i)
		}

		cell := record.Location.Index()
		if cell < 0 {
			return fmt.Errorf("record %d location %s is off the board", i, record.Location)
		}

		if entity.EvaluateStatus(prev.Board).IsFinished() {
			return fmt.Errorf("record %d follows a finished game", i)
		}

		if prev.Board[cell] != entity.EmptyCell {
			return fmt.Errorf("record %d plays occupied cell %d", i, cell)
		}

		if record.Board != prev.Board.Place(cell, entity.PlayerForMove(i-1)) {
			return fmt.Errorf("record %d does not follow from record %d", i, i-1)
		}
	}

	return nil
}

func cloneHistory(history []entity.MoveRecord) []entity.MoveRecord {
	out := make([]entity.MoveRecord, len(history))
	for i, record := range history {
		out[i] = record.Clone()
	}

	return out
}
