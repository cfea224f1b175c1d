// Package reconcile keeps a persistent tile set in sync with freshly fetched
// door snapshots. Tiles keep their identity across polls: a pure state change
// updates the cached tile in place, and only a membership change is allowed
// to rebuild the layout. This is what keeps the rendered grid stable between
// refresh cycles.
package reconcile

import (
	"sort"

	"cabinet-status-backend/internal/grid"
	"cabinet-status-backend/internal/model"
	"cabinet-status-backend/internal/style"
)

// Tile is the view-model of one slot: stable identity plus the current
// snapshot, position and visual state.
type Tile struct {
	Key  model.TileKey    `json:"key"`
	Door model.DoorStatus `json:"door"`
	// Row and Col are on-screen coordinates, separator columns included.
	Row int `json:"row"`
	Col int `json:"col"`
	// Address is set for dispenser tiles; blocks of one address form one
	// physical cabinet.
	Address int             `json:"address,omitempty"`
	Style   style.TileStyle `json:"style"`
}

// Result reports what a reconcile pass did.
type Result struct {
	// Rebuilt is true when tile membership changed and the layout must be
	// recomputed. Pure data updates never set it.
	Rebuilt bool
	Created int
	Removed int
	Updated int
	// NewlyLocked holds the door labels whose lock state transitioned to
	// locked during this pass; they feed the alert worker.
	NewlyLocked []string
}

// GroupedView reconciles a variable-membership view (changing cupboards).
type GroupedView struct {
	layout   grid.Layout
	wardrobe bool
	// dataCols is the declared data-column count; 0 means derive it from
	// the highest door number in each snapshot.
	dataCols int
	tiles    map[model.TileKey]*Tile
}

// NewGroupedView creates an empty grouped view.
func NewGroupedView(layout grid.Layout, dataCols int) *GroupedView {
	return &GroupedView{
		layout:   layout,
		wardrobe: layout == grid.Wardrobe,
		dataCols: dataCols,
		tiles:    make(map[model.TileKey]*Tile),
	}
}

// Reconcile diffs the fresh snapshot against the cached tile set.
func (v *GroupedView) Reconcile(doors []model.DoorStatus) Result {
	var res Result

	// A declared column count bounds the layout; without one it is derived
	// from the highest door number in the snapshot.
	dataCols := v.dataCols
	if dataCols == 0 {
		maxNo := 0
		for i := range doors {
			if doors[i].DoorNo > maxNo {
				maxNo = doors[i].DoorNo
			}
		}
		if v.wardrobe {
			dataCols = grid.WardrobeColumns(maxNo)
		} else {
			dataCols = grid.ShoeColumns(maxNo)
		}
	}

	current := make(map[model.TileKey]*model.DoorStatus, len(doors))
	for i := range doors {
		d := &doors[i]
		if !grid.InRange(v.layout, d.DoorNo, dataCols) {
			continue // malformed door number, drop instead of breaking layout
		}
		current[d.Key()] = d
	}

	// Drop tiles whose key vanished from the snapshot.
	for key := range v.tiles {
		if _, ok := current[key]; !ok {
			delete(v.tiles, key)
			res.Removed++
		}
	}

	// Membership changed when anything vanished or anything is new. Only
	// then is the layout rebuilt; equal key sets update in place.
	rebuild := res.Removed > 0 || len(current) != len(v.tiles)

	for key, d := range current {
		tile, exists := v.tiles[key]
		if !exists {
			tile = &Tile{Key: key}
			v.tiles[key] = tile
			res.Created++
		} else {
			if !tile.Door.Locked() && d.Locked() {
				res.NewlyLocked = append(res.NewlyLocked, d.DoorName)
			}
			res.Updated++
		}
		tile.Door = *d
		tile.Style = style.ResolveCupboard(d, v.wardrobe)
		if rebuild || !exists {
			row, col := grid.Position(v.layout, d.DoorNo)
			tile.Row = row
			tile.Col = grid.GridColumn(col)
		}
	}

	res.Rebuilt = rebuild
	return res
}

// Tiles returns a stable-ordered snapshot copy of the view.
func (v *GroupedView) Tiles() []Tile {
	out := make([]Tile, 0, len(v.tiles))
	for _, t := range v.tiles {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.CabinetKey != out[j].Key.CabinetKey {
			return out[i].Key.CabinetKey < out[j].Key.CabinetKey
		}
		return out[i].Key.DoorNo < out[j].Key.DoorNo
	})
	return out
}

// Len returns the cached tile count.
func (v *GroupedView) Len() int { return len(v.tiles) }

// DispenserDoors is the fixed slot count of one dispenser address block.
const DispenserDoors = 24

type slotKey struct {
	address int
	doorNo  int
}

// FixedView reconciles a fixed-membership dispenser view: every
// (address, door 1..24) pair gets exactly one tile at construction time, and
// polls may only update tile data. Tiles are never destroyed or recreated.
type FixedView struct {
	addresses []int
	tiles     map[slotKey]*Tile
	built     bool
}

// NewFixedView pre-allocates placeholder tiles for every slot of the given
// addresses.
func NewFixedView(addresses []int) *FixedView {
	v := &FixedView{
		addresses: append([]int(nil), addresses...),
		tiles:     make(map[slotKey]*Tile, len(addresses)*DispenserDoors),
	}
	for _, addr := range v.addresses {
		for no := 1; no <= DispenserDoors; no++ {
			door := model.PlaceholderDoor(addr, no)
			row, col := grid.Position(grid.Dispenser, no)
			v.tiles[slotKey{addr, no}] = &Tile{
				Key:     door.Key(),
				Door:    door,
				Row:     row,
				Col:     grid.GridColumn(col),
				Address: addr,
				Style:   style.ResolveDispenser(&door),
			}
		}
	}
	return v
}

// Reconcile updates tile data by (address, door_no) lookup. Doors outside
// the fixed layout are dropped; slots missing from the snapshot fall back to
// the unoccupied/cycling placeholder. The first pass reports Rebuilt so the
// renderer lays the blocks out once.
func (v *FixedView) Reconcile(doors []model.DoorStatus) Result {
	var res Result

	fresh := make(map[slotKey]*model.DoorStatus, len(doors))
	for i := range doors {
		d := &doors[i]
		if d.Address == nil || !grid.InRange(grid.Dispenser, d.DoorNo, grid.DispenserColumns) {
			continue
		}
		fresh[slotKey{*d.Address, d.DoorNo}] = d
	}

	for key, tile := range v.tiles {
		next, ok := fresh[key]
		if !ok {
			placeholder := model.PlaceholderDoor(key.address, key.doorNo)
			next = &placeholder
		}
		if !tile.Door.Locked() && next.Locked() {
			res.NewlyLocked = append(res.NewlyLocked, next.DoorName)
		}
		tile.Door = *next
		// Key follows the door so it never disagrees with the row data;
		// the slot position itself is the fixed identity.
		tile.Key = next.Key()
		tile.Style = style.ResolveDispenser(next)
		res.Updated++
	}

	if !v.built {
		v.built = true
		res.Rebuilt = true
	}
	return res
}

// Tiles returns a stable-ordered snapshot copy of the view.
func (v *FixedView) Tiles() []Tile {
	out := make([]Tile, 0, len(v.tiles))
	for _, t := range v.tiles {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Address != out[j].Address {
			return out[i].Address < out[j].Address
		}
		return out[i].Door.DoorNo < out[j].Door.DoorNo
	})
	return out
}

// Len returns the cached tile count.
func (v *FixedView) Len() int { return len(v.tiles) }
