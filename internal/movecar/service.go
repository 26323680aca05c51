package movecar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Jacky-Bruse/movecar/internal/geo"
	"github.com/Jacky-Bruse/movecar/internal/logger"
	"github.com/Jacky-Bruse/movecar/internal/notify"
	"github.com/Jacky-Bruse/movecar/internal/status"
)

// DefaultMessage is attached to a notify request without a note.
const DefaultMessage = "车旁有人等待"

// Service is the session state machine. All state lives in the status
// store; concurrent requests race with last-write-wins semantics,
// which is acceptable for the one-session-per-deployment scope.
type Service struct {
	store      status.Store
	dispatcher *notify.Dispatcher
	channels   string
	ttl        time.Duration
}

func NewService(store status.Store, dispatcher *notify.Dispatcher, channels string, ttl time.Duration) *Service {
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		channels:   channels,
		ttl:        ttl,
	}
}

// Notify starts a cycle (or retries one: re-running from any state is
// legal and re-dispatches): persist the requester location, mark the
// session waiting, fan the notification out. A returned error has
// already been recorded as the session error.
func (s *Service) Notify(ctx context.Context, message string, location *Coordinates, confirmURL string) error {
	if message == "" {
		message = DefaultMessage
	}

	// The body uses literal \n sequences; each channel unescapes them
	// according to its own formatting rules.
	content := `🚗 挪车请求` + `\n💬 留言: ` + message

	if location.valid() {
		content += `\n📍 已附带位置信息，点击查看`
		if err := s.putLocation(ctx, keyRequesterLocation, *location, false); err != nil {
			return s.fail(ctx, err)
		}
	} else {
		content += `\n⚠️ 未提供位置信息`
	}

	s.clearError(ctx)

	if err := s.store.Put(ctx, keyStatus, StatusWaiting, s.ttl); err != nil {
		return s.fail(ctx, fmt.Errorf("persist waiting status: %w", err))
	}

	if _, err := s.dispatcher.Dispatch(ctx, s.channels, content, confirmURL); err != nil {
		return s.fail(ctx, err)
	}
	return nil
}

// OwnerConfirm records the owner's response and flips the session to
// confirmed. The owner location is optional; when present it is stored
// with map links and a confirmation timestamp.
func (s *Service) OwnerConfirm(ctx context.Context, location *Coordinates) error {
	if location.valid() {
		if err := s.putLocation(ctx, keyOwnerLocation, *location, true); err != nil {
			return s.fail(ctx, err)
		}
	}

	s.clearError(ctx)

	if err := s.store.Put(ctx, keyStatus, StatusConfirmed, s.ttl); err != nil {
		return s.fail(ctx, fmt.Errorf("persist confirmed status: %w", err))
	}
	return nil
}

// RecordFailure marks the session failed for errors raised before a
// cycle can start, such as an unreadable request body. Pollers watch
// the status record, not the HTTP response, so the failure has to land
// there too.
func (s *Service) RecordFailure(ctx context.Context, err error) error {
	return s.fail(ctx, err)
}

// StatusReport is the poll response for both parties.
type StatusReport struct {
	Status        string    `json:"status"`
	OwnerLocation *Location `json:"ownerLocation"`
	Error         *string   `json:"error"`
}

// CheckStatus reads the current session state without mutating it. An
// absent status value reports as waiting: polling clients need a
// stable default, not a storage-layer accident. An unreadable or
// unparseable owner location reports as null.
func (s *Service) CheckStatus(ctx context.Context) (StatusReport, error) {
	report := StatusReport{Status: StatusWaiting}

	v, err := s.store.Get(ctx, keyStatus)
	switch {
	case err == nil && v != "":
		report.Status = v
	case err != nil && !errors.Is(err, status.ErrNotFound):
		return report, fmt.Errorf("read status: %w", err)
	}

	if raw, err := s.store.Get(ctx, keyOwnerLocation); err == nil {
		var loc Location
		if json.Unmarshal([]byte(raw), &loc) == nil {
			report.OwnerLocation = &loc
		}
	}

	if msg, err := s.store.Get(ctx, keyError); err == nil && msg != "" {
		report.Error = &msg
	}

	return report, nil
}

// RequesterLocation returns the stored requester location JSON
// verbatim, or status.ErrNotFound when absent or expired.
func (s *Service) RequesterLocation(ctx context.Context) (string, error) {
	return s.store.Get(ctx, keyRequesterLocation)
}

func (s *Service) putLocation(ctx context.Context, key string, c Coordinates, stamped bool) error {
	loc := Location{
		Lat:      c.Lat,
		Lng:      c.Lng,
		MapLinks: geo.Links(c.Lat, c.Lng),
	}
	if stamped {
		loc.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("marshal location: %w", err)
	}
	if err := s.store.Put(ctx, key, string(data), s.ttl); err != nil {
		return fmt.Errorf("persist location: %w", err)
	}
	return nil
}

// clearError removes a stale error from a previous cycle. Best effort:
// the status write that follows supersedes it either way.
func (s *Service) clearError(ctx context.Context) {
	if err := s.store.Delete(ctx, keyError); err != nil {
		logger.Warn("failed to clear stale error", map[string]any{"error": err.Error()})
	}
}

// fail records err as the session error and returns it. The record
// writes are best effort; the caller gets the original error either
// way.
func (s *Service) fail(ctx context.Context, err error) error {
	if perr := s.store.Put(ctx, keyStatus, StatusError, s.ttl); perr != nil {
		logger.Warn("failed to persist error status", map[string]any{"error": perr.Error()})
	}
	if perr := s.store.Put(ctx, keyError, err.Error(), s.ttl); perr != nil {
		logger.Warn("failed to persist error message", map[string]any{"error": perr.Error()})
	}
	return err
}
