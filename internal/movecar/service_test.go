package movecar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Jacky-Bruse/movecar/internal/notify"
	"github.com/Jacky-Bruse/movecar/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	name    string
	err     error
	content string
	confirm string
}

func (r *recordingChannel) Name() string { return r.name }

func (r *recordingChannel) Send(_ context.Context, content, confirmURL string) error {
	r.content = content
	r.confirm = confirmURL
	return r.err
}

func newTestService(store status.Store, channels ...notify.Channel) *Service {
	dispatcher := notify.NewDispatcher(notify.NewRegistry(channels...))
	return NewService(store, dispatcher, "bark", time.Hour)
}

func TestNotifySetsWaitingAndStoresLocation(t *testing.T) {
	ctx := context.Background()
	store := status.NewMemoryStore()
	bark := &recordingChannel{name: "bark"}
	svc := newTestService(store, bark)

	loc := &Coordinates{Lat: 39.9042, Lng: 116.4074}
	require.NoError(t, svc.Notify(ctx, "您的车挡住我了", loc, "https%3A%2F%2Fx%2Fowner-confirm"))

	v, err := store.Get(ctx, keyStatus)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, v)

	raw, err := store.Get(ctx, keyRequesterLocation)
	require.NoError(t, err)
	var stored Location
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, 39.9042, stored.Lat)
	assert.Equal(t, 116.4074, stored.Lng)
	assert.Contains(t, stored.AmapURL, "uri.amap.com/marker")
	assert.Contains(t, stored.AppleURL, "maps.apple.com")
	assert.Zero(t, stored.Timestamp)

	assert.Equal(t, `🚗 挪车请求\n💬 留言: 您的车挡住我了\n📍 已附带位置信息，点击查看`, bark.content)
	assert.Equal(t, "https%3A%2F%2Fx%2Fowner-confirm", bark.confirm)
}

func TestNotifyWithoutLocation(t *testing.T) {
	ctx := context.Background()
	store := status.NewMemoryStore()
	bark := &recordingChannel{name: "bark"}
	svc := newTestService(store, bark)

	require.NoError(t, svc.Notify(ctx, "", nil, "u"))

	assert.Equal(t, `🚗 挪车请求\n💬 留言: 车旁有人等待\n⚠️ 未提供位置信息`, bark.content)

	_, err := store.Get(ctx, keyRequesterLocation)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestNotifyZeroCoordinatesCountAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := status.NewMemoryStore()
	svc := newTestService(store, &recordingChannel{name: "bark"})

	require.NoError(t, svc.Notify(ctx, "hi", &Coordinates{Lat: 0, Lng: 116.4}, "u"))

	_, err := store.Get(ctx, keyRequesterLocation)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestNotifyDispatchFailureRecordsError(t *testing.T) {
	ctx := context.Background()
	store := status.NewMemoryStore()
	// Empty registry: the default bark channel resolves to a
	// configuration failure.
	svc := newTestService(store)

	err := svc.Notify(ctx, "hi", nil, "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all channels failed")
	assert.Contains(t, err.Error(), "bark not configured: set BARK_URL")

	report, rerr := svc.CheckStatus(ctx)
	require.NoError(t, rerr)
	assert.Equal(t, StatusError, report.Status)
	require.NotNil(t, report.Error)
	assert.Contains(t, *report.Error, "bark not configured")
}

func TestNotifyClearsErrorFromPreviousCycle(t *testing.T) {
	ctx := context.Background()
	store := status.NewMemoryStore()
	svc := newTestService(store)

	require.Error(t, svc.Notify(ctx, "hi", nil, "u"))

	// A retry with a working channel supersedes the stale error.
	svc = newTestService(store, &recordingChannel{name: "bark"})
	require.NoError(t, svc.Notify(ctx, "hi", nil, "u"))

	report, err := svc.CheckStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, report.Status)
	assert.Nil(t, report.Error)
}

func TestOwnerConfirmWithLocation(t *testing.T) {
	ctx := context.Background()
	store := status.NewMemoryStore()
	svc := newTestService(store, &recordingChannel{name: "bark"})

	require.NoError(t, svc.OwnerConfirm(ctx, &Coordinates{Lat: 39.92, Lng: 116.41}))

	report, err := svc.CheckStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, report.Status)
	require.NotNil(t, report.OwnerLocation)
	assert.Equal(t, 39.92, report.OwnerLocation.Lat)
	assert.NotEmpty(t, report.OwnerLocation.AmapURL)
	assert.NotEmpty(t, report.OwnerLocation.AppleURL)
	assert.Greater(t, report.OwnerLocation.Timestamp, int64(0))
}

func TestOwnerConfirmWithoutLocation(t *testing.T) {
	ctx := context.Background()
	store := status.NewMemoryStore()
	svc := newTestService(store, &recordingChannel{name: "bark"})

	require.NoError(t, svc.OwnerConfirm(ctx, nil))

	report, err := svc.CheckStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, report.Status)
	assert.Nil(t, report.OwnerLocation)
}

func TestCheckStatusDefaultsToWaiting(t *testing.T) {
	svc := newTestService(status.NewMemoryStore())

	report, err := svc.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, report.Status)
	assert.Nil(t, report.OwnerLocation)
	assert.Nil(t, report.Error)
}

func TestCheckStatusToleratesUnparseableOwnerLocation(t *testing.T) {
	ctx := context.Background()
	store := status.NewMemoryStore()
	require.NoError(t, store.Put(ctx, keyOwnerLocation, "{not json", time.Hour))
	require.NoError(t, store.Put(ctx, keyStatus, StatusConfirmed, time.Hour))

	svc := newTestService(store)
	report, err := svc.CheckStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, report.Status)
	assert.Nil(t, report.OwnerLocation)
}

// failingStore fails Put for selected keys to exercise load-bearing
// write failures.
type failingStore struct {
	status.Store
	failPuts map[string]bool
}

func (f *failingStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.failPuts[key] {
		return fmt.Errorf("status: put %s: %w", key, errors.New("connection refused"))
	}
	return f.Store.Put(ctx, key, value, ttl)
}

func TestNotifyFailsWhenWaitingWriteFails(t *testing.T) {
	store := &failingStore{
		Store:    status.NewMemoryStore(),
		failPuts: map[string]bool{keyStatus: true},
	}
	svc := newTestService(store, &recordingChannel{name: "bark"})

	err := svc.Notify(context.Background(), "hi", nil, "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist waiting status")
}

func TestOwnerConfirmFailsWhenLocationWriteFails(t *testing.T) {
	store := &failingStore{
		Store:    status.NewMemoryStore(),
		failPuts: map[string]bool{keyOwnerLocation: true},
	}
	svc := newTestService(store, &recordingChannel{name: "bark"})

	err := svc.OwnerConfirm(context.Background(), &Coordinates{Lat: 1.1, Lng: 103.8})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist location")
}
