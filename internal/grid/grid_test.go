package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionShoeCupboard(t *testing.T) {
	testCases := []struct {
		doorNo int
		row    int
		col    int
	}{
		{1, 0, 0},
		{2, 0, 1},
		{3, 1, 0},
		{4, 1, 1},
		{17, 8, 0},
		{18, 8, 1},
		{19, 0, 2}, // second column pair starts here
		{20, 0, 3},
		{36, 8, 3},
		{37, 0, 4},
	}
	for _, tc := range testCases {
		row, col := Position(ShoeCupboard, tc.doorNo)
		assert.Equal(t, tc.row, row, "door %d row", tc.doorNo)
		assert.Equal(t, tc.col, col, "door %d col", tc.doorNo)
	}
}

func TestPositionWardrobe(t *testing.T) {
	testCases := []struct {
		doorNo int
		row    int
		col    int
	}{
		{1, 0, 0},
		{2, 0, 1},
		{3, 1, 0},
		{4, 1, 1},
		{5, 0, 2}, // new column pair
		{8, 1, 3},
	}
	for _, tc := range testCases {
		row, col := Position(Wardrobe, tc.doorNo)
		assert.Equal(t, tc.row, row, "door %d row", tc.doorNo)
		assert.Equal(t, tc.col, col, "door %d col", tc.doorNo)
	}
}

func TestPositionDispenser(t *testing.T) {
	// Matches the physical sticker pattern:
	// top row 1,2,5,6,9,10..., bottom row 3,4,7,8,11,12...
	testCases := []struct {
		doorNo int
		row    int
		col    int
	}{
		{1, 0, 0},
		{2, 0, 1},
		{3, 1, 0},
		{4, 1, 1},
		{5, 0, 2},
		{6, 0, 3},
		{7, 1, 2},
		{8, 1, 3},
		{23, 1, 10},
		{24, 1, 11},
	}
	for _, tc := range testCases {
		row, col := Position(Dispenser, tc.doorNo)
		assert.Equal(t, tc.row, row, "door %d row", tc.doorNo)
		assert.Equal(t, tc.col, col, "door %d col", tc.doorNo)
	}
}

func TestPositionDispenserHasNoCollisions(t *testing.T) {
	// All 24 doors of one block must land on distinct cells of the
	// 2-row by 12-column grid.
	seen := make(map[[2]int]int)
	for no := 1; no <= 24; no++ {
		row, col := Position(Dispenser, no)
		assert.Less(t, row, 2, "door %d row", no)
		assert.Less(t, col, DispenserColumns, "door %d col", no)
		if prev, dup := seen[[2]int{row, col}]; dup {
			t.Fatalf("doors %d and %d collide on (%d,%d)", prev, no, row, col)
		}
		seen[[2]int{row, col}] = no
	}
}

func TestPositionIsDeterministic(t *testing.T) {
	for no := 1; no <= 120; no++ {
		r1, c1 := Position(ShoeCupboard, no)
		r2, c2 := Position(ShoeCupboard, no)
		assert.Equal(t, r1, r2)
		assert.Equal(t, c1, c2)
	}
}

func TestGridColumnSeparatorRemap(t *testing.T) {
	// One separator column after every two data columns.
	expected := map[int]int{0: 0, 1: 1, 2: 3, 3: 4, 4: 6, 5: 7, 6: 9}
	for dataCol, actual := range expected {
		assert.Equal(t, actual, GridColumn(dataCol), "data col %d", dataCol)
	}
}

func TestSeparatorColumns(t *testing.T) {
	assert.Nil(t, SeparatorColumns(2))
	assert.Equal(t, []int{2}, SeparatorColumns(4))
	assert.Equal(t, []int{2, 5, 8, 11}, SeparatorColumns(10))
	assert.Equal(t, []int{2, 5, 8, 11, 14}, SeparatorColumns(12))
}

func TestTotalColumns(t *testing.T) {
	assert.Equal(t, 2, TotalColumns(2))
	assert.Equal(t, 14, TotalColumns(10))
	assert.Equal(t, 17, TotalColumns(12))
}

func TestWardrobeColumns(t *testing.T) {
	assert.Equal(t, 0, WardrobeColumns(0))
	assert.Equal(t, 2, WardrobeColumns(4))
	assert.Equal(t, 4, WardrobeColumns(5))
	assert.Equal(t, 4, WardrobeColumns(8))
	assert.Equal(t, 6, WardrobeColumns(9))
}

func TestShoeColumns(t *testing.T) {
	assert.Equal(t, 0, ShoeColumns(0))
	assert.Equal(t, 2, ShoeColumns(18))
	assert.Equal(t, 4, ShoeColumns(19))
	assert.Equal(t, 4, ShoeColumns(36))
	assert.Equal(t, 10, ShoeColumns(90))
}

func TestInRangeDropsMalformedDoors(t *testing.T) {
	// A dispenser block has 24 doors; door 25 would land in column 12.
	assert.True(t, InRange(Dispenser, 24, DispenserColumns))
	assert.False(t, InRange(Dispenser, 25, DispenserColumns))
	assert.False(t, InRange(Dispenser, 0, DispenserColumns))

	// Male shoe cupboard tab has 10 data columns (90 doors).
	assert.True(t, InRange(ShoeCupboard, 90, 10))
	assert.False(t, InRange(ShoeCupboard, 91, 10))
}
