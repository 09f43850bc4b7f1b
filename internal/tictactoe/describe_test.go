package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusText(t *testing.T) {
	t.Run("Next player", func(t *testing.T) {
		engine := NewEngine()
		playMoves(t, engine, 4)

		assert.Equal(t, "Next player: O", StatusText(engine.Snapshot()))
	})

	t.Run("Winner", func(t *testing.T) {
		engine := NewEngine()
		snapshot := playMoves(t, engine, 0, 1, 3, 2, 6)

		assert.Equal(t, "Winner: X", StatusText(snapshot))
	})

	t.Run("Draw", func(t *testing.T) {
		engine := NewEngine()
		snapshot := playMoves(t, engine, 0, 4, 8, 1, 7, 6, 2, 5, 3)

		assert.Equal(t, "Draw", StatusText(snapshot))
	})
}

func TestMoveList(t *testing.T) {
	// Given: three moves rewound to move 1
	engine := NewEngine()
	playMoves(t, engine, 0, 4, 8)
	snapshot, err := engine.JumpTo(1)
	require.NoError(t, err)

	t.Run("Ascending", func(t *testing.T) {
		// When: listing moves in natural order
		items := MoveList(snapshot, OrderAsc)

		// Then: the start comes first and the current move is marked
		require.Len(t, items, 4)
		assert.Equal(t, "Go to game start", items[0].Description)
		assert.Equal(t, "You are at move #1", items[1].Description)
		assert.True(t, items[1].Current)
		assert.Equal(t, "Go to move #2 (2, 2)", items[2].Description)
		assert.Equal(t, "Go to move #3 (3, 3)", items[3].Description)
	})

	t.Run("Descending", func(t *testing.T) {
		// When: listing moves newest first
		items := MoveList(snapshot, OrderDesc)

		// Then: the order is reversed
		require.Len(t, items, 4)
		assert.Equal(t, 3, items[0].Move)
		assert.Equal(t, 0, items[3].Move)
	})

	t.Run("Sorting never touches the snapshot", func(t *testing.T) {
		MoveList(snapshot, OrderDesc)

		assert.Nil(t, snapshot.Moves[0].Location)
		assert.Equal(t, snapshot, engine.Snapshot())
	})
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, OrderDesc, ParseOrder("desc"))
	assert.Equal(t, OrderAsc, ParseOrder("asc"))
	assert.Equal(t, OrderAsc, ParseOrder(""))
	assert.Equal(t, OrderAsc, ParseOrder("sideways"))
}
