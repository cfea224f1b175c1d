package store

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"

	"cabinet-status-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(sqlserver.New(sqlserver.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestGormStore_ListCupboards(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(`FROM OperRoom.dbo.Cupboard`).
		WillReturnRows(sqlmock.NewRows([]string{"cupboard_id", "cupboard_no", "sex", "box_count", "area_name"}).
			AddRow("C-1", 2, 1, 36, "更衣区").
			AddRow("C-2", 8, 0, 36, "更衣区"))

	refs, err := s.ListCupboards(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, CabinetRef{ID: "C-1", Name: "男更衣区 2号柜(36门)"}, refs[0])
	assert.Equal(t, CabinetRef{ID: "C-2", Name: "女更衣区 8号柜(36门)"}, refs[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListDoorsByCupboardNos(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	cols := []string{"cupboard_id", "cupboard_no", "sex", "area_name", "box_no",
		"box_show_name", "user_id", "user_name", "last_update_time", "reserved_mark", "ending"}
	mock.ExpectQuery(`FROM OperRoom.dbo.Box`).
		WithArgs(Any{}, Any{}).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("C-1", 2, 1, "更衣区", 7, nil, "u1", "张三", "2026-08-01 09:30:00", nil, 1).
			AddRow("C-1", 2, 1, "更衣区", 8, "8A", nil, nil, nil, nil, nil))

	doors, err := s.ListDoorsByCupboardNos(context.Background(), []int{2, 3})
	require.NoError(t, err)
	require.Len(t, doors, 2)

	d := doors[0]
	assert.Equal(t, model.CabinetCupboard, d.CabinetType)
	assert.Equal(t, "C-1", d.CabinetKey)
	assert.Equal(t, "男更衣区 2号柜", d.CabinetName)
	assert.Equal(t, 7, d.DoorNo)
	assert.Equal(t, "2-07", d.DoorName) // padded composite label
	assert.Equal(t, "u1", d.UserID)
	assert.Equal(t, "张三", d.UserName)
	assert.True(t, d.Fixed())

	d = doors[1]
	assert.Equal(t, "2-8A", d.DoorName) // explicit show name kept
	assert.Empty(t, d.UserID)
	assert.False(t, d.Fixed())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListDoorsByCupboardNos_Empty(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	doors, err := s.ListDoorsByCupboardNos(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, doors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListDisshoeDoorsAll(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	cols := []string{"device_id", "address", "box_no", "amount", "rfid_msg",
		"state", "size_name", "style_name", "user_id", "user_name", "device_name"}
	mock.ExpectQuery(`FROM OperRoom.dbo.DisShoeGoods`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("9", 64, 3, 1, nil, 10, "38", "布鞋", "u2", "李四", "女发鞋柜").
			AddRow("9", 64, 4, 0, nil, 20, nil, nil, nil, nil, "女发鞋柜"))

	doors, err := s.ListDisshoeDoorsAll(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, doors, 2)

	d := doors[0]
	assert.Equal(t, model.CabinetShoeDispense, d.CabinetType)
	assert.Equal(t, "9|64", d.CabinetKey)
	assert.Equal(t, "64-03", d.DoorName)
	assert.Equal(t, "未锁定", d.LockName)
	assert.True(t, d.HasItem)
	assert.Equal(t, "李四", d.UserName)

	d = doors[1]
	assert.Equal(t, "锁定", d.LockName)
	assert.True(t, d.Locked())
	assert.False(t, d.HasItem)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListUserNamesByIDs(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(`FROM OperRoom.dbo.\[User\]`).
		WithArgs(Any{}, Any{}).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name"}).
			AddRow("u1", "Alice"))

	names, err := s.ListUserNamesByIDs(context.Background(), []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": "Alice"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())

	// No ids: no query issued.
	names, err = s.ListUserNamesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_AssignDisshoeUser(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectExec(`UPDATE OperRoom.dbo.DisShoeGoods`).
		WithArgs(Any{}, Any{}, Any{}, Any{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	uid := "u7"
	err := s.AssignDisshoeUser(context.Background(), "9", 64, 3, &uid)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_AssignDisshoeUser_MissingSlot(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectExec(`UPDATE OperRoom.dbo.DisShoeGoods`).
		WithArgs(Any{}, Any{}, Any{}, Any{}).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.AssignDisshoeUser(context.Background(), "9", 99, 42, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}
