package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicehive/hive-go/pkg/log"
	"github.com/devicehive/hive-go/pkg/model"
	"github.com/devicehive/hive-go/pkg/subscription"
)

// stubPoller records poll requests and blocks until the watch is cancelled.
type stubPoller struct {
	mu    sync.Mutex
	polls []subscription.PollRequest
}

func (s *stubPoller) Poll(ctx context.Context, req subscription.PollRequest) error {
	s.mu.Lock()
	s.polls = append(s.polls, req)
	s.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubPoller) pollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.polls)
}

func (s *stubPoller) lastPoll() subscription.PollRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls[len(s.polls)-1]
}

// stubDuplex records subscribe frames issued on the duplex channel.
type stubDuplex struct {
	mu       sync.Mutex
	commands []duplexCall
	own      []time.Time
	notifs   []duplexCall
}

type duplexCall struct {
	since  time.Time
	names  []string
	target string
}

func (s *stubDuplex) SubscribeCommands(since time.Time, names []string, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, duplexCall{since, names, target})
	return nil
}

func (s *stubDuplex) SubscribeOwnCommands(since time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.own = append(s.own, since)
	return nil
}

func (s *stubDuplex) SubscribeNotifications(since time.Time, names []string, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifs = append(s.notifs, duplexCall{since, names, target})
	return nil
}

func (s *stubDuplex) commandCalls() []duplexCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]duplexCall(nil), s.commands...)
}

// captureTrace collects trace events for assertions.
type captureTrace struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureTrace) Log(event log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureTrace) byCategory(cat log.Category) []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []log.Event
	for _, e := range c.events {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

func testDeps() (Dependencies, *stubPoller, *stubDuplex) {
	poller := &stubPoller{}
	duplex := &stubDuplex{}
	deps := Dependencies{
		Poller:  poller,
		Duplex:  duplex,
		Connect: func(ctx context.Context) error { return nil },
	}
	return deps, poller, duplex
}

func TestNewValidation(t *testing.T) {
	deps, _, _ := testDeps()

	t.Run("MissingPoller", func(t *testing.T) {
		d := deps
		d.Poller = nil
		_, err := New(DefaultConfig(), model.KeyPrincipal("k"), d)
		assert.ErrorIs(t, err, ErrMissingPoller)
	})

	t.Run("MissingDuplex", func(t *testing.T) {
		d := deps
		d.Duplex = nil
		_, err := New(DefaultConfig(), model.KeyPrincipal("k"), d)
		assert.ErrorIs(t, err, ErrMissingDuplex)
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PoolSize = 0
		_, err := New(cfg, model.KeyPrincipal("k"), deps)
		assert.Error(t, err)
	})
}

func TestWatchCommandsDelegates(t *testing.T) {
	deps, poller, _ := testDeps()
	cfg := DefaultConfig()
	cfg.Headers = map[string]string{"Authorization": "Bearer t"}

	c, err := New(cfg, model.KeyPrincipal("k"), deps)
	require.NoError(t, err)
	defer c.Shutdown()

	since := time.Now()
	c.WatchCommands(since, []string{"reboot"}, "dev-1")

	assert.Equal(t, 1, c.Registry().CommandSubscriptionCount())
	require.Eventually(t, func() bool {
		return poller.pollCount() >= 1
	}, time.Second, 5*time.Millisecond)

	req := poller.lastPoll()
	assert.Equal(t, "/device/dev-1/command/poll", req.Path)
	assert.Equal(t, "Bearer t", req.Headers["Authorization"])
	assert.Equal(t, []string{"reboot"}, req.Names)
	assert.Equal(t, cfg.PollWait, req.Wait)

	c.StopCommands([]string{"reboot"}, "dev-1")
	assert.Equal(t, 0, c.Registry().CommandSubscriptionCount())
}

func TestResubscribeOnConnect(t *testing.T) {
	deps, _, duplex := testDeps()

	trace := &captureTrace{}
	cfg := DefaultConfig()
	cfg.EventLogger = trace

	c, err := New(cfg, model.KeyPrincipal("k"), deps)
	require.NoError(t, err)
	defer c.Shutdown()

	since := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.RecordCommandSubscription(since, []string{"reboot"}, "dev-1")

	require.NoError(t, c.Start(context.Background()))

	calls := duplex.commandCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "dev-1", calls[0].target)
	assert.Equal(t, []string{"reboot"}, calls[0].names)
	assert.True(t, calls[0].since.Equal(since))

	assert.NotEmpty(t, trace.byCategory(log.CategorySubscription))
	assert.NotEmpty(t, trace.byCategory(log.CategoryState))
}

func TestDeliveryAdvancesWatermark(t *testing.T) {
	deps, _, duplex := testDeps()

	c, err := New(DefaultConfig(), model.KeyPrincipal("k"), deps)
	require.NoError(t, err)
	defer c.Shutdown()

	since := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	later := since.Add(time.Hour)

	c.RecordCommandSubscription(since, []string{"reboot"}, "dev-1")
	c.NoteCommandDelivered(&model.DeviceCommand{
		ID:        7,
		DeviceID:  "dev-1",
		Command:   "reboot",
		Timestamp: later,
	})

	require.NoError(t, c.Start(context.Background()))

	calls := duplex.commandCalls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].since.Equal(later), "resubscribe should use the advanced watermark")
}

func TestDeviceResubscribeUsesOwnCommands(t *testing.T) {
	deps, _, duplex := testDeps()

	c, err := New(DefaultConfig(), model.DevicePrincipal("dev-9"), deps)
	require.NoError(t, err)
	defer c.Shutdown()

	c.RecordCommandSubscription(time.Now(), []string{"reboot"}, "dev-9")

	require.NoError(t, c.Start(context.Background()))

	duplex.mu.Lock()
	defer duplex.mu.Unlock()
	assert.Empty(t, duplex.commands, "device principal must not use client subscribe")
	assert.Len(t, duplex.own, 1)
}

func TestCommandResultSweep(t *testing.T) {
	deps, _, _ := testDeps()
	deps.Checker = &terminalChecker{}

	cfg := DefaultConfig()
	cfg.SweepInterval = 10 * time.Millisecond

	c, err := New(cfg, model.KeyPrincipal("k"), deps)
	require.NoError(t, err)
	defer c.Shutdown()

	require.NoError(t, c.Start(context.Background()))

	c.TrackCommandResult("dev-1", 42)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	cmd, err := c.CommandResults().Take(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cmd.ID)
	assert.Equal(t, "done", cmd.Status)
}

// terminalChecker reports every command as completed.
type terminalChecker struct{}

func (terminalChecker) CommandStatus(ctx context.Context, path string) (*model.DeviceCommand, error) {
	return &model.DeviceCommand{
		ID:       42,
		DeviceID: "dev-1",
		Command:  "reboot",
		Status:   "done",
		Result:   map[string]any{"ok": true},
	}, nil
}

func TestShutdownStopsWatches(t *testing.T) {
	deps, poller, _ := testDeps()

	c, err := New(DefaultConfig(), model.KeyPrincipal("k"), deps)
	require.NoError(t, err)

	c.WatchCommands(time.Now(), nil, "dev-1")
	require.Eventually(t, func() bool {
		return poller.pollCount() >= 1
	}, time.Second, 5*time.Millisecond)

	c.Shutdown()

	// New watches are rejected once the pool is closed
	c.WatchCommands(time.Now(), nil, "dev-2")
	assert.Equal(t, 1, c.Registry().CommandSubscriptionCount())
}
