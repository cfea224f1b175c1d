package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cabinet-status-backend/internal/api"
	"cabinet-status-backend/internal/model"
	"cabinet-status-backend/internal/notify"
	"cabinet-status-backend/internal/store"
)

// subscriptionStore satisfies store.Store for the handlers that only touch
// the GORM connection. The OperRoom queries are SQL Server specific and are
// covered by the store package's own tests.
type subscriptionStore struct {
	db *gorm.DB
}

func (s *subscriptionStore) ListCupboards(ctx context.Context) ([]store.CabinetRef, error) {
	return nil, nil
}

func (s *subscriptionStore) ListDoorsByCupboardNos(ctx context.Context, nos []int) ([]model.DoorStatus, error) {
	return nil, nil
}

func (s *subscriptionStore) ListDisshoeDoorsAll(ctx context.Context, deviceIDs []string) ([]model.DoorStatus, error) {
	return nil, nil
}

func (s *subscriptionStore) ListUserNamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	return nil, nil
}

func (s *subscriptionStore) ListUsersBySex(ctx context.Context, sex int) ([]store.UserRef, error) {
	return nil, nil
}

func (s *subscriptionStore) AssignDisshoeUser(ctx context.Context, deviceID string, address, doorNo int, userID *string) error {
	return nil
}

func (s *subscriptionStore) DB() *gorm.DB { return s.db }

func newSubscriptionDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(&model.PushSubscription{}))
	return testDB
}

type recordingSender struct {
	mu       sync.Mutex
	payloads []string
	status   int
}

func (r *recordingSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	r.mu.Lock()
	r.payloads = append(r.payloads, string(payload))
	r.mu.Unlock()
	return &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}, nil
}

func (r *recordingSender) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.payloads...)
}

// TestSubscriptionLifecycle drives the subscription endpoints against a real
// in-memory database: register, refresh, look up and delete.
func TestSubscriptionLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testDB := newSubscriptionDB(t)

	handler := api.NewHandler(&subscriptionStore{db: testDB}, nil, &webpush.Options{})
	r := gin.New()
	r.GET("/api/subscriptions", handler.GetSubscription)
	r.PUT("/api/subscriptions", handler.PutSubscription)
	r.DELETE("/api/subscriptions", handler.DeleteSubscription)

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req, _ := http.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// Register.
	w := do(http.MethodPut, "/api/subscriptions",
		gin.H{"endpoint": "https://example.com/push", "p256dh": "key-1", "auth": "auth-1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Refreshing the same endpoint replaces the keys instead of duplicating.
	w = do(http.MethodPut, "/api/subscriptions",
		gin.H{"endpoint": "https://example.com/push", "p256dh": "key-2", "auth": "auth-2"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	testDB.Model(&model.PushSubscription{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var sub model.PushSubscription
	require.NoError(t, testDB.First(&sub, "endpoint = ?", "https://example.com/push").Error)
	assert.Equal(t, "key-2", sub.P256DH)

	// Lookup.
	w = do(http.MethodGet, "/api/subscriptions?endpoint=https://example.com/push", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Delete, then the lookup misses.
	w = do(http.MethodDelete, "/api/subscriptions", gin.H{"endpoint": "https://example.com/push"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(http.MethodGet, "/api/subscriptions?endpoint=https://example.com/push", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestLockAlertFanOut runs the notification pool against a real database:
// every stored subscription receives the alert, and a Gone endpoint is
// pruned.
func TestLockAlertFanOut(t *testing.T) {
	testDB := newSubscriptionDB(t)

	subs := []model.PushSubscription{
		{Endpoint: "https://example.com/a", P256DH: "ka", Auth: "aa"},
		{Endpoint: "https://example.com/b", P256DH: "kb", Auth: "ab"},
	}
	require.NoError(t, testDB.Create(&subs).Error)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := notify.NewWorkerPool(1, testDB, &webpush.Options{})
	sender := &recordingSender{status: http.StatusCreated}
	pool.SetSender(sender)
	pool.Start(ctx)

	pool.Dispatch("64-07")

	assert.Eventually(t, func() bool {
		return len(sender.sent()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	for _, payload := range sender.sent() {
		assert.Contains(t, payload, "64-07")
	}

	// Expired endpoints are deleted after a 410 response.
	sender2 := &recordingSender{status: http.StatusGone}
	pool.SetSender(sender2)
	pool.Dispatch("64-08")

	assert.Eventually(t, func() bool {
		var count int64
		testDB.Model(&model.PushSubscription{}).Count(&count)
		return count == 0
	}, 2*time.Second, 10*time.Millisecond)
}
