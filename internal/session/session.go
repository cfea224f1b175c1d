// Package session owns the live dashboard state: the configured views, the
// refresh loop and the single write path. Exactly one view is active at a
// time; switching views cancels any in-flight fetch and bumps a generation
// counter so a stale result can never overwrite fresher state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cabinet-status-backend/config"
	"cabinet-status-backend/internal/grid"
	"cabinet-status-backend/internal/model"
	"cabinet-status-backend/internal/reconcile"
	"cabinet-status-backend/internal/store"
)

// Kind names the view families. Each kind decides the fetch query and the
// grid layout.
type Kind string

const (
	KindShoeCupboard    Kind = "shoe_cupboard"
	KindWardrobe        Kind = "wardrobe"
	KindDispenserMale   Kind = "dispenser_male"
	KindDispenserFemale Kind = "dispenser_female"
)

var (
	// ErrUnknownView is returned when a view id does not exist.
	ErrUnknownView = errors.New("unknown view")
	// ErrSlotOutOfRange is returned when an assignment names a slot outside
	// the fixed dispenser layout.
	ErrSlotOutOfRange = errors.New("slot out of range")
	// ErrNotAssignable is returned when an assignment targets a device the
	// configuration does not allow writes to.
	ErrNotAssignable = errors.New("device is not assignable")
)

// LockAlerter receives the labels of doors whose lock just engaged.
type LockAlerter interface {
	Dispatch(doorLabel string)
}

// ViewInfo is the public descriptor of one configured view.
type ViewInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// view is one configured tab and its persistent reconciler.
type view struct {
	info ViewInfo

	// grouped views
	cupboardNos []int
	grouped     *reconcile.GroupedView

	// fixed dispenser views
	addresses []int
	deviceIDs []string
	nameToken string // device-name fallback when no ids are configured
	fixed     *reconcile.FixedView
}

// Snapshot is the renderable state of the active view at one point in time.
type Snapshot struct {
	View        ViewInfo         `json:"view"`
	Tiles       []reconcile.Tile `json:"tiles"`
	Generation  uint64           `json:"generation"`
	LastRefresh time.Time        `json:"lastRefresh"`
	LastError   string           `json:"lastError,omitempty"`
}

// Status reports the refresh loop state.
type Status struct {
	Enabled         bool      `json:"enabled"`
	IntervalSeconds int       `json:"intervalSeconds"`
	Generation      uint64    `json:"generation"`
	ActiveView      string    `json:"activeView"`
	LastRefresh     time.Time `json:"lastRefresh"`
	LastError       string    `json:"lastError,omitempty"`
}

// Session coordinates views, polling and assignment over one Store.
type Session struct {
	store store.Store
	alert LockAlerter

	femaleDeviceIDs []string

	mu          sync.Mutex
	views       map[string]*view
	order       []string
	activeID    string
	generation  uint64
	enabled     bool
	intervalSec int
	cancelFetch context.CancelFunc
	lastRefresh time.Time
	lastErr     error

	kick chan struct{}
}

// New builds a session from the configured tabs. The first declared view is
// active. alert may be nil when lock notifications are not wanted.
func New(cfg *config.Config, st store.Store, alert LockAlerter) *Session {
	s := &Session{
		store:           st,
		alert:           alert,
		femaleDeviceIDs: cfg.Cabinets.FemaleShoeDeviceIDs,
		views:           make(map[string]*view),
		enabled:         cfg.Poller.Enabled,
		intervalSec:     cfg.Poller.IntervalSeconds,
		kick:            make(chan struct{}, 1),
	}

	for i, tab := range cfg.Cabinets.ShoeCupboardTabs {
		id := fmt.Sprintf("shoe-cupboard-%d", i+1)
		s.addView(&view{
			info:        ViewInfo{ID: id, Name: tab.Name, Kind: KindShoeCupboard},
			cupboardNos: tab.CupboardNos,
			grouped:     reconcile.NewGroupedView(grid.ShoeCupboard, tab.Columns),
		})
	}
	for i, tab := range cfg.Cabinets.WardrobeTabs {
		id := fmt.Sprintf("wardrobe-%d", i+1)
		s.addView(&view{
			info:        ViewInfo{ID: id, Name: tab.Name, Kind: KindWardrobe},
			cupboardNos: tab.CupboardNos,
			grouped:     reconcile.NewGroupedView(grid.Wardrobe, tab.Columns),
		})
	}

	maleAddrs := addressRange(cfg.Cabinets.AddressStart, cfg.Cabinets.MaleAddressCount)
	femAddrs := addressRange(cfg.Cabinets.AddressStart, cfg.Cabinets.FemAddressCount)
	s.addView(&view{
		info:      ViewInfo{ID: "dispenser-male", Name: "男发鞋柜", Kind: KindDispenserMale},
		addresses: maleAddrs,
		deviceIDs: cfg.Cabinets.MaleShoeDeviceIDs,
		nameToken: "男",
		fixed:     reconcile.NewFixedView(maleAddrs),
	})
	s.addView(&view{
		info:      ViewInfo{ID: "dispenser-female", Name: "女发鞋柜", Kind: KindDispenserFemale},
		addresses: femAddrs,
		deviceIDs: cfg.Cabinets.FemaleShoeDeviceIDs,
		nameToken: "女",
		fixed:     reconcile.NewFixedView(femAddrs),
	})

	if len(s.order) > 0 {
		s.activeID = s.order[0]
	}
	return s
}

func (s *Session) addView(v *view) {
	s.views[v.info.ID] = v
	s.order = append(s.order, v.info.ID)
}

func addressRange(start, count int) []int {
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, start+i)
	}
	return out
}

// Views lists the configured views in declaration order.
func (s *Session) Views() []ViewInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ViewInfo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.views[id].info)
	}
	return out
}

// Run drives the refresh loop until ctx is cancelled. Ticks never stack: the
// timer is re-armed only after a cycle completes, so a slow database stretches
// the effective period instead of queueing refreshes.
func (s *Session) Run(ctx context.Context) {
	log.Println("Starting dashboard session...")
	if s.Enabled() {
		s.RefreshOnce(ctx)
	}

	timer := time.NewTimer(s.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Dashboard session shutting down.")
			return
		case <-s.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			// Kicks come from user actions (view switch, assignment,
			// interval change) and refresh even while the poller is
			// paused; only the periodic ticks honor the toggle.
			s.RefreshOnce(ctx)
			timer.Reset(s.interval())
		case <-timer.C:
			if s.Enabled() {
				s.RefreshOnce(ctx)
			}
			timer.Reset(s.interval())
		}
	}
}

// RefreshOnce runs a single fetch-and-reconcile cycle for the active view.
// A result that arrives after the view was switched is discarded whole.
func (s *Session) RefreshOnce(ctx context.Context) {
	s.mu.Lock()
	v := s.views[s.activeID]
	if v == nil {
		s.mu.Unlock()
		return
	}
	gen := s.generation
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancelFetch = cancel
	s.mu.Unlock()
	defer cancel()

	doors, err := s.fetch(fetchCtx, v)

	s.mu.Lock()
	if gen != s.generation {
		// The view changed while the fetch was running.
		s.mu.Unlock()
		return
	}
	if err != nil {
		// Keep showing the previous tiles; only record the failure.
		s.lastErr = err
		s.mu.Unlock()
		log.Printf("Refresh cycle failed: %v", err)
		return
	}
	s.lastErr = nil
	s.lastRefresh = time.Now()

	var res reconcile.Result
	if v.fixed != nil {
		res = v.fixed.Reconcile(doors)
	} else {
		res = v.grouped.Reconcile(doors)
	}
	s.mu.Unlock()

	if res.Rebuilt {
		log.Printf("View %s rebuilt: %d tiles created, %d removed", v.info.ID, res.Created, res.Removed)
	}
	// Alerts go out after the lock is released; a slow or full queue must
	// never block the session.
	if s.alert != nil {
		for _, label := range res.NewlyLocked {
			s.alert.Dispatch(label)
		}
	}
}

// fetch loads and normalizes the doors of one view. Runs without the lock.
func (s *Session) fetch(ctx context.Context, v *view) ([]model.DoorStatus, error) {
	if v.fixed != nil {
		return s.fetchDispenser(ctx, v)
	}

	doors, err := s.store.ListDoorsByCupboardNos(ctx, v.cupboardNos)
	if err != nil {
		return nil, err
	}
	for i := range doors {
		cycle := !doors[i].Fixed()
		doors[i].IsCycle = &cycle
	}
	s.backfillNames(ctx, doors)
	return doors, nil
}

func (s *Session) fetchDispenser(ctx context.Context, v *view) ([]model.DoorStatus, error) {
	doors, err := s.store.ListDisshoeDoorsAll(ctx, v.deviceIDs)
	if err != nil {
		return nil, err
	}

	inAddr := make(map[int]bool, len(v.addresses))
	for _, a := range v.addresses {
		inAddr[a] = true
	}

	out := doors[:0]
	for i := range doors {
		d := doors[i]
		if d.Address == nil || !inAddr[*d.Address] {
			continue
		}
		// With no configured device ids the query returned every dispenser;
		// fall back to the device-name token to pick this view's sex.
		if len(v.deviceIDs) == 0 && !strings.Contains(d.DeviceName, v.nameToken) {
			continue
		}
		cycle := d.UserID == ""
		d.IsCycle = &cycle
		out = append(out, d)
	}
	s.backfillNames(ctx, out)
	return out, nil
}

// backfillNames resolves user names the main query left empty with one batch
// lookup. Best effort: a failure leaves the ids unlabeled.
func (s *Session) backfillNames(ctx context.Context, doors []model.DoorStatus) {
	var missing []string
	seen := make(map[string]bool)
	for i := range doors {
		id := doors[i].UserID
		if id != "" && doors[i].UserName == "" && !seen[id] {
			seen[id] = true
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return
	}

	names, err := s.store.ListUserNamesByIDs(ctx, missing)
	if err != nil {
		log.Printf("Warning: user name backfill failed: %v", err)
		return
	}
	for i := range doors {
		if doors[i].UserName == "" {
			doors[i].UserName = names[doors[i].UserID]
		}
	}
}

// SwitchView makes another view active. Any in-flight fetch is cancelled and
// its late result invalidated by the generation bump.
func (s *Session) SwitchView(id string) error {
	s.mu.Lock()
	v, ok := s.views[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownView, id)
	}
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	s.generation++
	s.activeID = v.info.ID
	s.mu.Unlock()

	s.nudge()
	return nil
}

// SetInterval changes the poll period at runtime, clamped to the allowed
// range, and returns the applied value.
func (s *Session) SetInterval(seconds int) int {
	seconds = config.ClampInterval(seconds)
	s.mu.Lock()
	s.intervalSec = seconds
	s.mu.Unlock()
	s.nudge()
	return seconds
}

// SetEnabled pauses or resumes the refresh loop.
func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
	if enabled {
		s.nudge()
	}
}

// Enabled reports whether the refresh loop is running cycles.
func (s *Session) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

func (s *Session) interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.intervalSec) * time.Second
}

func (s *Session) nudge() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Snapshot returns the tiles of the active view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.views[s.activeID]
	snap := Snapshot{
		Generation:  s.generation,
		LastRefresh: s.lastRefresh,
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	if v == nil {
		return snap
	}
	snap.View = v.info
	if v.fixed != nil {
		snap.Tiles = v.fixed.Tiles()
	} else {
		snap.Tiles = v.grouped.Tiles()
	}
	return snap
}

// Status reports the loop state for the control API.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Enabled:         s.enabled,
		IntervalSeconds: s.intervalSec,
		Generation:      s.generation,
		ActiveView:      s.activeID,
		LastRefresh:     s.lastRefresh,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// Assign writes one dispenser slot's user binding; nil userID reverts the
// slot to cycling. Only configured female dispensers accept writes. A refresh
// is kicked afterwards so the grid reflects the change on the next cycle.
func (s *Session) Assign(ctx context.Context, deviceID string, address, doorNo int, userID *string) error {
	if doorNo < 1 || doorNo > reconcile.DispenserDoors {
		return fmt.Errorf("%w: door %d", ErrSlotOutOfRange, doorNo)
	}
	if !s.assignable(deviceID) {
		return fmt.Errorf("%w: %s", ErrNotAssignable, deviceID)
	}

	if err := s.store.AssignDisshoeUser(ctx, deviceID, address, doorNo, userID); err != nil {
		return err
	}
	s.nudge()
	return nil
}

func (s *Session) assignable(deviceID string) bool {
	if len(s.femaleDeviceIDs) == 0 {
		return true
	}
	for _, id := range s.femaleDeviceIDs {
		if id == deviceID {
			return true
		}
	}
	return false
}
