package model

import "fmt"

// CabinetType distinguishes the two physical cabinet families.
type CabinetType string

const (
	CabinetCupboard     CabinetType = "cupboard"
	CabinetShoeDispense CabinetType = "disshoegoods"
)

// LockStateLocked is the controller code meaning the slot is locked and
// unavailable; it overrides occupancy in the display rules.
const LockStateLocked = 20

// DoorStatus is one slot/door in any cabinet. Instances are pure snapshots,
// recreated wholesale on every poll; nothing mutates them after normalization
// except the best-effort user-name backfill.
type DoorStatus struct {
	CabinetType CabinetType `json:"cabinetType"`
	CabinetKey  string      `json:"cabinetKey"`
	CabinetName string      `json:"cabinetName"`

	DoorNo   int    `json:"doorNo"`
	DoorName string `json:"doorName"`

	UserID   string `json:"userId"`
	UserName string `json:"userName"`

	LastUpdateTime string `json:"lastUpdateTime,omitempty"`
	ReservedMark   *int   `json:"reservedMark,omitempty"`
	// Ending is the fixed-assignment flag: 1 = permanently pinned to one
	// user, anything else = freely cycling.
	Ending *int `json:"ending,omitempty"`

	LockState *int   `json:"lockState,omitempty"`
	LockName  string `json:"lockName,omitempty"`

	SizeName  string `json:"sizeName,omitempty"`
	StyleName string `json:"styleName,omitempty"`

	DeviceName string `json:"deviceName,omitempty"`
	DeviceID   string `json:"deviceId,omitempty"`
	Address    *int   `json:"address,omitempty"`

	HasItem bool `json:"hasItem"`
	Amount  *int `json:"amount,omitempty"`

	// IsCycle is a derived tri-state: nil when unknown, true when the slot
	// is not user-bound and not explicitly fixed.
	IsCycle *bool `json:"isCycle,omitempty"`
}

// Fixed reports whether the slot is pinned to one user (Ending == 1).
func (d *DoorStatus) Fixed() bool {
	return d.Ending != nil && *d.Ending == 1
}

// Locked reports whether the physical lock code marks the slot unavailable.
func (d *DoorStatus) Locked() bool {
	return d.LockState != nil && *d.LockState == LockStateLocked
}

// Occupied reports whether the slot physically contains an item.
func (d *DoorStatus) Occupied() bool {
	return d.Amount != nil && *d.Amount > 0
}

// Key returns the natural identity of the slot. Within one cabinet key the
// door numbers are unique, so the pair identifies exactly one tile.
func (d *DoorStatus) Key() TileKey {
	return TileKey{CabinetKey: d.CabinetKey, DoorNo: d.DoorNo}
}

// TileKey identifies one tile across refresh cycles.
type TileKey struct {
	CabinetKey string `json:"cabinetKey"`
	DoorNo     int    `json:"doorNo"`
}

func (k TileKey) String() string {
	return fmt.Sprintf("%s|%d", k.CabinetKey, k.DoorNo)
}

// DispenserKey builds the composite cabinet key for one dispenser block.
func DispenserKey(deviceID string, address int) string {
	return fmt.Sprintf("%s|%d", deviceID, address)
}

// PlaceholderDoor is the synthetic record used for fixed-layout dispenser
// slots that have no database row yet: unoccupied and cycling.
func PlaceholderDoor(address, doorNo int) DoorStatus {
	cycle := true
	amount := 0
	return DoorStatus{
		CabinetType: CabinetShoeDispense,
		CabinetKey:  DispenserKey("0", address),
		CabinetName: fmt.Sprintf("%d", address),
		DoorNo:      doorNo,
		DoorName:    fmt.Sprintf("%d-%02d", address, doorNo),
		IsCycle:     &cycle,
		Amount:      &amount,
	}
}
