// Package grid maps physical door numbers to fixed (row, column) positions
// for the three cabinet layout variants, including the non-data separator
// columns inserted between physical cabinet groups.
package grid

// Layout selects the pairing rule for a view.
type Layout int

const (
	// ShoeCupboard packs 18 doors per column pair, 9 rows.
	ShoeCupboard Layout = iota
	// Wardrobe packs 4 doors per column pair, 2 rows.
	Wardrobe
	// Dispenser is the fixed 24-door block: 2 rows by 12 columns per
	// address, numbered to match the physical cabinet stickers
	// (top row 1,2,5,6,..., bottom row 3,4,7,8,...).
	Dispenser
)

// Position computes the data-grid coordinates for a door number. Door
// numbers start at 1; columns are data columns, before separator remapping.
func Position(layout Layout, doorNo int) (row, col int) {
	base := doorNo - 1
	switch layout {
	case ShoeCupboard:
		group := base / 18
		pos := base % 18
		return pos / 2, group*2 + pos%2
	case Wardrobe:
		group := base / 4
		pos := base % 4
		return pos / 2, group*2 + pos%2
	case Dispenser:
		g := base / 4
		within := base % 4
		return within / 2, g*2 + within%2
	}
	return 0, 0
}

// Rows returns the row count of a layout.
func Rows(layout Layout) int {
	switch layout {
	case ShoeCupboard:
		return 9
	case Wardrobe:
		return 2
	case Dispenser:
		return 2
	}
	return 0
}

// DispenserColumns is the fixed data-column count of one dispenser address.
const DispenserColumns = 12

// WardrobeColumns derives the data-column count from the highest door
// number present: one column pair per started group of four.
func WardrobeColumns(maxDoorNo int) int {
	if maxDoorNo <= 0 {
		return 0
	}
	return ((maxDoorNo-1)/4 + 1) * 2
}

// ShoeColumns derives the data-column count from the highest door number
// present: one column pair per started group of eighteen.
func ShoeColumns(maxDoorNo int) int {
	if maxDoorNo <= 0 {
		return 0
	}
	return ((maxDoorNo-1)/18 + 1) * 2
}

// GridColumn remaps a data column to its on-screen column, accounting for
// one separator column inserted after every two data columns.
func GridColumn(dataCol int) int {
	return dataCol + dataCol/2
}

// SeparatorColumns returns the on-screen column indices reserved for the
// separators between cabinet groups, given the data-column count.
func SeparatorColumns(dataCols int) []int {
	groups := dataCols / 2
	if groups <= 1 {
		return nil
	}
	seps := make([]int, 0, groups-1)
	for g := 1; g < groups; g++ {
		seps = append(seps, g*3-1)
	}
	return seps
}

// TotalColumns is the on-screen column count: data columns plus separators.
func TotalColumns(dataCols int) int {
	groups := dataCols / 2
	sep := 0
	if groups > 1 {
		sep = groups - 1
	}
	return dataCols + sep
}

// InRange reports whether a door's data column fits the declared column
// count. Doors outside the range are dropped instead of breaking the layout;
// this guards against malformed rows.
func InRange(layout Layout, doorNo, dataCols int) bool {
	row, col := Position(layout, doorNo)
	return doorNo >= 1 && col < dataCols && row < Rows(layout)
}
