package entity

import "fmt"

type Cell string

const (
	EmptyCell Cell = ""
	PlayerX   Cell = "X"
	PlayerO   Cell = "O"
)

const (
	BoardSize = 9
	BoardSide = 3
)

// Board is a row-major 3x3 grid. It is a value type, so every move yields a new board.
type Board [BoardSize]Cell

// WinLine is a triple of board indexes that wins when all three hold the same mark.
type WinLine [3]int

// WinLines are scanned in this order: rows, columns, then the two diagonals.
var WinLines = [8]WinLine{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type StatusKind string

const (
	StatusInProgress StatusKind = "in_progress"
	StatusWin        StatusKind = "win"
	StatusDraw       StatusKind = "draw"
)

// GameStatus is derived from a board on every read and never stored.
type GameStatus struct {
	Kind   StatusKind `json:"kind"`
	Winner Cell       `json:"winner,omitempty"`
	Line   *WinLine   `json:"line,omitempty"`
}

func InProgress() GameStatus {
	return GameStatus{Kind: StatusInProgress}
}

func Draw() GameStatus {
	return GameStatus{Kind: StatusDraw}
}

func Win(player Cell, line WinLine) GameStatus {
	return GameStatus{Kind: StatusWin, Winner: player, Line: &line}
}

func (that GameStatus) IsWin() bool {
	return that.Kind == StatusWin
}

func (that GameStatus) IsDraw() bool {
	return that.Kind == StatusDraw
}

func (that GameStatus) IsFinished() bool {
	return that.IsWin() || that.IsDraw()
}

// EvaluateStatus - classifies the board. The first matching line wins.
func EvaluateStatus(board Board) GameStatus {
	for _, line := range WinLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != EmptyCell && a == b && b == c {
			return Win(a, line)
		}
	}

	// the game will continue until all the squares are full
	if !board.IsFull() {
		return InProgress()
	}

	return Draw()
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Place - returns a copy of the board with mark written to index.
func (that Board) Place(index int, mark Cell) Board {
	that[index] = mark
	return that
}

// PlayerForMove - X moves on even move numbers, O on odd ones.
func PlayerForMove(move int) Cell {
	if move%2 == 0 {
		return PlayerX
	}
	return PlayerO
}

func IsValidCell(index int) bool {
	return index >= 0 && index < BoardSize
}

// Location is the 1-based row and column of a played cell.
type Location struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func LocationOf(index int) Location {
	return Location{Row: index/BoardSide + 1, Col: index%BoardSide + 1}
}

// Index - returns the board index of the location, or -1 when it is off the board.
func (that Location) Index() int {
	if that.Row < 1 || that.Row > BoardSide || that.Col < 1 || that.Col > BoardSide {
		return -1
	}
	return (that.Row-1)*BoardSide + that.Col - 1
}

func (that Location) String() string {
	return fmt.Sprintf("(%d, %d)", that.Row, that.Col)
}

// MoveRecord pairs a board with the move that produced it. The opening record has no location.
type MoveRecord struct {
	Board    Board     `json:"board"`
	Location *Location `json:"location,omitempty"`
}

func (that MoveRecord) Clone() MoveRecord {
	if that.Location == nil {
		return that
	}

	loc := *that.Location
	that.Location = &loc
	return that
}
