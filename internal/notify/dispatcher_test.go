package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChannel struct {
	name string
	err  error
	sent int
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Send(context.Context, string, string) error {
	s.sent++
	return s.err
}

func TestParseChannels(t *testing.T) {
	assert.Equal(t, []string{"bark"}, ParseChannels(""))
	assert.Equal(t, []string{"bark"}, ParseChannels(" , ,"))
	assert.Equal(t, []string{"bark", "telegram"}, ParseChannels(" Bark , TELEGRAM "))
	assert.Equal(t, []string{"wxpusher"}, ParseChannels("wxpusher"))
}

func TestDispatchPartialFailureIsSuccess(t *testing.T) {
	failing := &stubChannel{name: "bark", err: errors.New("bark: api returned status 500")}
	working := &stubChannel{name: "telegram"}
	d := NewDispatcher(NewRegistry(failing, working))

	results, err := d.Dispatch(context.Background(), "bark,telegram", "content", "u")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "bark", results[0].Channel)
	assert.False(t, results[0].OK())
	assert.Equal(t, "telegram", results[1].Channel)
	assert.True(t, results[1].OK())

	assert.Equal(t, 1, failing.sent)
	assert.Equal(t, 1, working.sent)
}

func TestDispatchAllFailedAggregatesInRequestOrder(t *testing.T) {
	bark := &stubChannel{name: "bark", err: errors.New("bark down")}
	telegram := &stubChannel{name: "telegram", err: errors.New("telegram down")}
	d := NewDispatcher(NewRegistry(bark, telegram))

	_, err := d.Dispatch(context.Background(), "bark,telegram", "content", "u")
	require.Error(t, err)
	assert.Equal(t, "all channels failed: bark down; telegram down", err.Error())

	// Reversed request order reverses the aggregate message.
	_, err = d.Dispatch(context.Background(), "telegram,bark", "content", "u")
	require.Error(t, err)
	assert.Equal(t, "all channels failed: telegram down; bark down", err.Error())
}

func TestDispatchEmptySelectionUsesDefaultChannel(t *testing.T) {
	bark := &stubChannel{name: "bark"}
	d := NewDispatcher(NewRegistry(bark))

	results, err := d.Dispatch(context.Background(), "", "content", "u")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bark", results[0].Channel)
	assert.Equal(t, 1, bark.sent)
}

func TestDispatchUnconfiguredChannelFailsWithoutAbortingSiblings(t *testing.T) {
	telegram := &stubChannel{name: "telegram"}
	d := NewDispatcher(NewRegistry(telegram))

	results, err := d.Dispatch(context.Background(), "bark,telegram", "content", "u")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.EqualError(t, results[0].Err, "bark not configured: set BARK_URL")
	assert.True(t, results[1].OK())
}

func TestDispatchUnknownChannel(t *testing.T) {
	d := NewDispatcher(NewRegistry())

	_, err := d.Dispatch(context.Background(), "pigeon", "content", "u")
	require.Error(t, err)
	assert.Equal(t, "all channels failed: unknown channel: pigeon", err.Error())
}
