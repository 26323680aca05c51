package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// DefaultChannel is used when the channel selection names nothing.
const DefaultChannel = "bark"

// requiredConfig names the environment variables each known channel
// needs, for configuration-error messages.
var requiredConfig = map[string]string{
	"bark":     "BARK_URL",
	"wxpusher": "WXPUSHER_TOKEN and WXPUSHER_UID",
	"telegram": "TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID",
}

// Result is the settled outcome of a single channel attempt.
type Result struct {
	Channel string
	Err     error
}

// OK reports whether the attempt succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Dispatcher fans one notification out across the requested channels.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// ParseChannels splits a comma-separated channel selection into a
// trimmed, lower-cased list. An empty selection falls back to the
// default channel.
func ParseChannels(channelConfig string) []string {
	var channels []string
	for _, part := range strings.Split(channelConfig, ",") {
		if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
			channels = append(channels, name)
		}
	}
	if len(channels) == 0 {
		channels = []string{DefaultChannel}
	}
	return channels
}

// Dispatch delivers content through every requested channel
// concurrently and waits for all attempts to settle; it never
// short-circuits on the first failure. It succeeds when at least one
// channel accepted the notification. When every attempt fails, the
// returned error joins each failure reason in request order.
//
// A requested channel with no registered implementation settles
// immediately as that channel's configuration failure; sibling
// channels still run.
func (d *Dispatcher) Dispatch(ctx context.Context, channelConfig, content, confirmURL string) ([]Result, error) {
	channels := ParseChannels(channelConfig)

	results := make([]Result, len(channels))
	var wg sync.WaitGroup

	for i, name := range channels {
		results[i].Channel = name

		ch, err := d.registry.Get(name)
		if err != nil {
			if hint, known := requiredConfig[name]; known {
				results[i].Err = fmt.Errorf("%s not configured: set %s", name, hint)
			} else {
				results[i].Err = fmt.Errorf("unknown channel: %s", name)
			}
			continue
		}

		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			results[i].Err = ch.Send(ctx, content, confirmURL)
		}(i, ch)
	}
	wg.Wait()

	var failures []string
	succeeded := false
	for _, r := range results {
		if r.OK() {
			succeeded = true
		} else {
			failures = append(failures, r.Err.Error())
		}
	}
	if !succeeded {
		return results, fmt.Errorf("all channels failed: %s", strings.Join(failures, "; "))
	}
	return results, nil
}
