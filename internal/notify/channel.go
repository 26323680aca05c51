// Package notify fans a move-car notification out across the
// configured push channels and aggregates the per-channel outcomes.
package notify

import (
	"context"
	"strings"
)

// Channel is one external push integration. Implementations own their
// channel's formatting and transport rules and must not mutate any
// local state.
type Channel interface {
	// Name returns the channel identifier used in the channel
	// selection string (e.g. "bark", "telegram").
	Name() string

	// Send delivers content through the channel. confirmURL arrives
	// URL-encoded; each channel decides how to embed it. A nil return
	// means the provider API accepted the request, not that the
	// notification was delivered.
	Send(ctx context.Context, content, confirmURL string) error
}

// unescapeNewlines turns the literal \n sequences used in the
// channel-independent message body into real newlines.
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
