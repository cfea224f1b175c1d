// Package store is the query-layer boundary: parameterized reads against the
// OperRoom SQL Server schema, normalized into DoorStatus snapshots, plus the
// single write path (slot assignment).
package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"cabinet-status-backend/internal/model"
)

// CabinetRef is one selectable cabinet (id + display label).
type CabinetRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserRef is one row of the user picker source.
type UserRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LoginName string `json:"loginName,omitempty"`
}

// Store defines the database surface the dashboard core depends on.
type Store interface {
	ListCupboards(ctx context.Context) ([]CabinetRef, error)
	ListDoorsByCupboardNos(ctx context.Context, nos []int) ([]model.DoorStatus, error)
	// ListDisshoeDoorsAll returns all shoe-dispenser doors, optionally
	// filtered to the given device ids.
	ListDisshoeDoorsAll(ctx context.Context, deviceIDs []string) ([]model.DoorStatus, error)
	ListUserNamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
	ListUsersBySex(ctx context.Context, sex int) ([]UserRef, error)
	// AssignDisshoeUser overwrites the assigned user of one dispenser slot;
	// nil reverts the slot to cycling. Last writer wins.
	AssignDisshoeUser(ctx context.Context, deviceID string, address, doorNo int, userID *string) error
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM raw queries.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

type cupboardRow struct {
	CupboardID string
	CupboardNo int
	Sex        int
	BoxCount   int
	AreaName   string
}

const listCupboardsSQL = `
SELECT
  c.CupboardId AS cupboard_id,
  c.No AS cupboard_no,
  c.Sex AS sex,
  c.BoxCount AS box_count,
  a.Name AS area_name
FROM OperRoom.dbo.Cupboard c
JOIN OperRoom.dbo.Area a
  ON c.AreaDeviceId = a.AreaDeviceId
 AND c.Sex = a.Sex
ORDER BY a.Name, c.Sex, c.No`

func (s *gormStore) ListCupboards(ctx context.Context) ([]CabinetRef, error) {
	var rows []cupboardRow
	if err := s.db.WithContext(ctx).Raw(listCupboardsSQL).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list cupboards: %w", err)
	}

	out := make([]CabinetRef, 0, len(rows))
	for _, r := range rows {
		name := fmt.Sprintf("%s%s %d号柜(%d门)", sexName(r.Sex), r.AreaName, r.CupboardNo, r.BoxCount)
		out = append(out, CabinetRef{ID: r.CupboardID, Name: name})
	}
	return out, nil
}

type boxRow struct {
	CupboardID     string
	CupboardNo     int
	Sex            int
	AreaName       string
	BoxNo          int
	BoxShowName    *string
	UserID         *string
	UserName       *string
	LastUpdateTime *string
	ReservedMark   *int
	Ending         *int
}

const listDoorsByCupboardNosSQL = `
SELECT
  c.CupboardId AS cupboard_id,
  c.No AS cupboard_no,
  c.Sex AS sex,
  a.Name AS area_name,
  b.No AS box_no,
  b.BoxShowName AS box_show_name,
  b.UserId AS user_id,
  u.Name AS user_name,
  b.LastUpdateTime AS last_update_time,
  b.ReservedMark AS reserved_mark,
  b.Ending AS ending
FROM OperRoom.dbo.Box b
JOIN OperRoom.dbo.Cupboard c
  ON b.CupboardId = c.CupboardId
JOIN OperRoom.dbo.Area a
  ON c.AreaDeviceId = a.AreaDeviceId
 AND c.Sex = a.Sex
LEFT JOIN OperRoom.dbo.[User] u
  ON b.UserId = u.UserId
WHERE c.No IN ?
ORDER BY c.No, b.No`

func (s *gormStore) ListDoorsByCupboardNos(ctx context.Context, nos []int) ([]model.DoorStatus, error) {
	if len(nos) == 0 {
		return nil, nil
	}

	var rows []boxRow
	if err := s.db.WithContext(ctx).Raw(listDoorsByCupboardNosSQL, nos).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list doors by cupboard nos: %w", err)
	}

	out := make([]model.DoorStatus, 0, len(rows))
	for _, r := range rows {
		out = append(out, normalizeBoxRow(r))
	}
	return out, nil
}

func normalizeBoxRow(r boxRow) model.DoorStatus {
	show := fmt.Sprintf("%d", r.BoxNo)
	if r.BoxShowName != nil && *r.BoxShowName != "" {
		show = *r.BoxShowName
	}
	// Padded composite label so doors read as "cupboard-slot" across tabs.
	label := fmt.Sprintf("%d-%02d", r.CupboardNo, r.BoxNo)
	if show != fmt.Sprintf("%d", r.BoxNo) {
		label = fmt.Sprintf("%d-%s", r.CupboardNo, show)
	}

	return model.DoorStatus{
		CabinetType:    model.CabinetCupboard,
		CabinetKey:     r.CupboardID,
		CabinetName:    fmt.Sprintf("%s%s %d号柜", sexName(r.Sex), r.AreaName, r.CupboardNo),
		DoorNo:         r.BoxNo,
		DoorName:       label,
		UserID:         deref(r.UserID),
		UserName:       deref(r.UserName),
		LastUpdateTime: deref(r.LastUpdateTime),
		ReservedMark:   r.ReservedMark,
		Ending:         r.Ending,
	}
}

type disshoeRow struct {
	DeviceID   string
	Address    int
	BoxNo      int
	Amount     *int
	RFIDMsg    *string
	State      *int
	SizeName   *string
	StyleName  *string
	UserID     *string
	UserName   *string
	DeviceName *string
}

const listDisshoeDoorsSQL = `
SELECT
  dsg.DeviceId AS device_id,
  dsg.Address AS address,
  dsg.BoxNo AS box_no,
  dsg.Amount AS amount,
  dsg.RFIDMsg AS rfid_msg,
  dsg.State AS state,
  s.Name AS size_name,
  sl.Name AS style_name,
  dsg.UserId AS user_id,
  u.Name AS user_name,
  dv.Name AS device_name
FROM OperRoom.dbo.DisShoeGoods dsg
JOIN OperRoom.dbo.Device dv ON dv.DeviceId = dsg.DeviceId
LEFT JOIN OperRoom.dbo.[Size]  s  ON dsg.SizeId = s.SizeId
LEFT JOIN OperRoom.dbo.[Style] sl ON s.StyleId  = sl.StyleId
LEFT JOIN OperRoom.dbo.[User]  u  ON dsg.UserId = u.UserId
WHERE dv.DeviceType = 100 AND dv.Name LIKE N'%发鞋柜%'`

func (s *gormStore) ListDisshoeDoorsAll(ctx context.Context, deviceIDs []string) ([]model.DoorStatus, error) {
	sql := listDisshoeDoorsSQL
	args := []any{}
	if len(deviceIDs) > 0 {
		sql += " AND dsg.DeviceId IN ?"
		args = append(args, deviceIDs)
	}
	sql += " ORDER BY dsg.DeviceId, dsg.Address, dsg.BoxNo"

	var rows []disshoeRow
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list disshoe doors: %w", err)
	}

	out := make([]model.DoorStatus, 0, len(rows))
	for _, r := range rows {
		out = append(out, normalizeDisshoeRow(r))
	}
	return out, nil
}

func normalizeDisshoeRow(r disshoeRow) model.DoorStatus {
	addr := r.Address
	hasItem := r.Amount != nil && *r.Amount > 0
	if deref(r.SizeName) != "" || deref(r.StyleName) != "" || deref(r.RFIDMsg) != "" {
		hasItem = true
	}

	return model.DoorStatus{
		CabinetType: model.CabinetShoeDispense,
		CabinetKey:  model.DispenserKey(r.DeviceID, r.Address),
		CabinetName: fmt.Sprintf("发鞋柜 Dev%s Addr%d", r.DeviceID, r.Address),
		DeviceID:    r.DeviceID,
		Address:     &addr,
		DoorNo:      r.BoxNo,
		DoorName:    fmt.Sprintf("%d-%02d", r.Address, r.BoxNo),
		UserID:      deref(r.UserID),
		UserName:    deref(r.UserName),
		LockState:   r.State,
		LockName:    lockName(r.State),
		SizeName:    deref(r.SizeName),
		StyleName:   deref(r.StyleName),
		DeviceName:  deref(r.DeviceName),
		HasItem:     hasItem,
		Amount:      r.Amount,
	}
}

const listUserNamesSQL = `
SELECT u.UserId AS user_id, u.Name AS name
FROM OperRoom.dbo.[User] u
WHERE u.UserId IN ?`

func (s *gormStore) ListUserNamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	var rows []struct {
		UserID string
		Name   *string
	}
	if err := s.db.WithContext(ctx).Raw(listUserNamesSQL, ids).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list user names: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.UserID] = deref(r.Name)
	}
	return out, nil
}

const listUsersBySexSQL = `
SELECT u.UserId AS user_id, u.Name AS name, u.LoginName AS login_name
FROM OperRoom.dbo.[User] u
WHERE u.Sex = ?
ORDER BY u.Name`

func (s *gormStore) ListUsersBySex(ctx context.Context, sex int) ([]UserRef, error) {
	var rows []struct {
		UserID    string
		Name      *string
		LoginName *string
	}
	if err := s.db.WithContext(ctx).Raw(listUsersBySexSQL, sex).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users by sex: %w", err)
	}

	out := make([]UserRef, 0, len(rows))
	for _, r := range rows {
		out = append(out, UserRef{ID: r.UserID, Name: deref(r.Name), LoginName: deref(r.LoginName)})
	}
	return out, nil
}

const assignDisshoeUserSQL = `
UPDATE OperRoom.dbo.DisShoeGoods
SET UserId = ?
WHERE DeviceId = ? AND Address = ? AND BoxNo = ?`

func (s *gormStore) AssignDisshoeUser(ctx context.Context, deviceID string, address, doorNo int, userID *string) error {
	res := s.db.WithContext(ctx).Exec(assignDisshoeUserSQL, userID, deviceID, address, doorNo)
	if res.Error != nil {
		return fmt.Errorf("assign disshoe user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("assign disshoe user: slot %s|%d door %d does not exist", deviceID, address, doorNo)
	}
	return nil
}

func sexName(sex int) string {
	switch sex {
	case 1:
		return "男"
	case 0, 2:
		return "女"
	default:
		return fmt.Sprintf("Sex%d", sex)
	}
}

func lockName(state *int) string {
	if state == nil {
		return ""
	}
	switch *state {
	case 10:
		return "未锁定"
	case model.LockStateLocked:
		return "锁定"
	default:
		return "未知"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
