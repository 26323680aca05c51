// Package movecar implements the shared move-car session: one
// notify / confirm cycle coordinated through a TTL-bound status record
// that both parties poll.
package movecar

import "github.com/Jacky-Bruse/movecar/internal/geo"

// Store keys of the single shared session record. There is no
// per-session isolation: any request may read or overwrite them.
const (
	keyStatus            = "notify_status"
	keyRequesterLocation = "requester_location"
	keyOwnerLocation     = "owner_location"
	keyError             = "notify_error"
)

// Session status values. An absent stored status reads as
// StatusWaiting.
const (
	StatusWaiting   = "waiting"
	StatusConfirmed = "confirmed"
	StatusError     = "error"
)

// Coordinates is a raw WGS-84 fix as sent by the browser.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// valid reports whether both components are usable. The pages send
// zero-valued coordinates when geolocation was denied, so (0,0)
// counts as absent.
func (c *Coordinates) valid() bool {
	return c != nil && c.Lat != 0 && c.Lng != 0
}

// Location is a stored location record with its derived map links.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	geo.MapLinks

	// Timestamp is set on owner locations only: Unix milliseconds at
	// confirmation time.
	Timestamp int64 `json:"timestamp,omitempty"`
}
