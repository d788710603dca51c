// Package room implements the Room Controller of SPEC_FULL.md §4.7: the
// single-goroutine owner of one Draft, its connected Player Adapters,
// ready-gating, and chat relay.
//
// Grounded on internal/scheduler/scheduler.go's central-coordinator
// event-loop shape (buffered `eventQueue chan Event` drained alongside a
// `time.Ticker` inside one `Run` select loop) and
// internal/peer/swarm.go's many-connections-plus-periodic-maintenance
// shape (a `Config`+`WithDefaultConfig()` struct, a map of live
// connections guarded for the registry's own bookkeeping, metrics
// counters). All draft-state mutation happens on the one goroutine that
// runs Run; every other goroutine communicates by enqueuing a command.
package room

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prxssh/thicketd/internal/cardpool"
	"github.com/prxssh/thicketd/internal/carddb"
	"github.com/prxssh/thicketd/internal/draft"
	"github.com/prxssh/thicketd/internal/draftconfig"
	"github.com/prxssh/thicketd/internal/playeradapter"
)

// Config tunes a Room's event loop, following the corpus's per-subsystem
// Config+WithDefaultConfig idiom.
type Config struct {
	// TickInterval is how often a TimerTick is fed to the Draft engine;
	// it bounds selection-timeout granularity, not wall-clock accuracy.
	TickInterval time.Duration

	// CommandQueueBacklog sizes the Room's event queue, mirroring
	// PieceScheduler's buffered eventQueue.
	CommandQueueBacklog int

	MythicProbability float64
}

func WithDefaultConfig() *Config {
	return &Config{
		TickInterval:        250 * time.Millisecond,
		CommandQueueBacklog: 256,
		MythicProbability:   0.125,
	}
}

// Room owns one running draft and the adapters of its connected players.
type Room struct {
	id  string
	log *slog.Logger
	cfg *Config

	chairCount int
	botCount   int

	engine *draft.Draft

	adaptersMu sync.RWMutex
	adapters   map[draft.Chair]*playeradapter.Adapter
	names      map[draft.Chair]string
	ready      map[draft.Chair]bool
	started    bool

	queue  chan command
	cancel context.CancelFunc
}

type command interface{ isCommand() }

type submitCmd struct{ event draft.Event }

func (submitCmd) isCommand() {}

type joinCmd struct {
	chair   draft.Chair
	adapter *playeradapter.Adapter
	name    string
	reply   chan error
}

func (joinCmd) isCommand() {}

type leaveCmd struct{ chair draft.Chair }

func (leaveCmd) isCommand() {}

type readyCmd struct {
	chair draft.Chair
	ready bool
}

func (readyCmd) isCommand() {}

type chatCmd struct {
	chair draft.Chair
	text  string
}

func (chatCmd) isCommand() {}

type adminStartCmd struct{}

func (adminStartCmd) isCommand() {}

// New builds a Room from a validated RoomConfig (the caller must have
// already run draftconfig.Validate). rng seeds both the card-pool
// selector used by dispensers and the Draft's own tie-break/auto-pick
// draws; now is the Draft's starting logical clock value.
func New(id string, cfg draftconfig.RoomConfig, data carddb.SetsData, rng cardpool.Rand, roomCfg *Config, now time.Time, log *slog.Logger) (*Room, error) {
	if roomCfg == nil {
		roomCfg = WithDefaultConfig()
	}

	dispensers, err := draftconfig.BuildDispensers(cfg.Draft, data, rng, roomCfg.MythicProbability)
	if err != nil {
		return nil, fmt.Errorf("room: building dispensers: %w", err)
	}

	engine := draft.New(cfg.Draft.Rounds, dispensers, cfg.Draft.ChairCount, rng, now)

	return &Room{
		id:         id,
		log:        log.With("component", "room", "room_id", id),
		cfg:        roomCfg,
		chairCount: cfg.Draft.ChairCount,
		botCount:   cfg.BotCount,
		engine:     engine,
		adapters:   make(map[draft.Chair]*playeradapter.Adapter),
		names:      make(map[draft.Chair]string),
		ready:      make(map[draft.Chair]bool),
		queue:      make(chan command, roomCfg.CommandQueueBacklog),
	}, nil
}

// ID returns the room's identifier.
func (r *Room) ID() string { return r.id }

// ChairCount returns the number of chairs (human and bot) this room was
// configured with.
func (r *Room) ChairCount() int { return r.chairCount }

// HasOpenChair reports whether chair is a human chair with no adapter
// currently registered. Used by the Server's lobby to pick where an
// incoming JoinRoomReq lands.
func (r *Room) HasOpenChair(chair draft.Chair) bool {
	if int(chair) < 0 || int(chair) >= r.chairCount-r.botCount {
		return false
	}

	r.adaptersMu.RLock()
	defer r.adaptersMu.RUnlock()
	_, taken := r.adapters[chair]
	return !taken
}

// Run drives the Room's event loop until ctx is cancelled. It is the
// only goroutine that ever calls into r.engine.
func (r *Room) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("room shutting down", "reason", ctx.Err().Error())
			return nil

		case cmd, ok := <-r.queue:
			if !ok {
				return nil
			}
			r.handleCommand(cmd)

		case now := <-ticker.C:
			r.dispatch(r.engine.Submit(draft.TimerTick{Now: now}))
		}
	}
}

// Stop cancels the Room's event loop.
func (r *Room) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Submit implements playeradapter.EventSink: an Adapter's read loop
// calls this directly from its own goroutine, so it must only enqueue,
// never touch engine state itself.
func (r *Room) Submit(chair draft.Chair, event draft.Event) {
	r.queue <- submitCmd{event: event}
}

// Join registers adapter as chair's connection and blocks until the
// join has been applied by the Room's own goroutine.
func (r *Room) Join(chair draft.Chair, name string, adapter *playeradapter.Adapter) error {
	reply := make(chan error, 1)
	r.queue <- joinCmd{chair: chair, adapter: adapter, name: name, reply: reply}
	return <-reply
}

// Leave unregisters chair's connection; draft continues without it
// (future picks for that chair simply time out, per SPEC_FULL.md §7's
// PlayerDisconnect handling).
func (r *Room) Leave(chair draft.Chair) {
	r.queue <- leaveCmd{chair: chair}
}

// SetReady records chair's readiness; once every non-bot chair is ready
// the draft auto-starts.
func (r *Room) SetReady(chair draft.Chair, ready bool) {
	r.queue <- readyCmd{chair: chair, ready: ready}
}

// Chat relays text from chair to every connected adapter.
func (r *Room) Chat(chair draft.Chair, text string) {
	r.queue <- chatCmd{chair: chair, text: text}
}

// AdminStart force-starts the draft regardless of readiness.
func (r *Room) AdminStart() {
	r.queue <- adminStartCmd{}
}

func (r *Room) handleCommand(cmd command) {
	switch c := cmd.(type) {
	case submitCmd:
		r.dispatch(r.engine.Submit(c.event))

	case joinCmd:
		c.reply <- r.handleJoin(c.chair, c.name, c.adapter)

	case leaveCmd:
		r.handleLeave(c.chair)

	case readyCmd:
		r.handleReady(c.chair, c.ready)

	case chatCmd:
		r.broadcastChat(c.chair, c.text)

	case adminStartCmd:
		r.dispatch(r.engine.Submit(draft.AdminStart{}))
	}
}

func (r *Room) handleJoin(chair draft.Chair, name string, adapter *playeradapter.Adapter) error {
	if int(chair) < 0 || int(chair) >= r.chairCount {
		return fmt.Errorf("room: chair %d out of range [0,%d)", chair, r.chairCount)
	}

	r.adaptersMu.Lock()
	if _, taken := r.adapters[chair]; taken {
		r.adaptersMu.Unlock()
		return fmt.Errorf("room: chair %d already occupied", chair)
	}
	r.adapters[chair] = adapter
	r.names[chair] = name
	r.adaptersMu.Unlock()

	r.dispatch(r.engine.Submit(draft.PlayerReconnect{Chair: chair}))
	return nil
}

func (r *Room) handleLeave(chair draft.Chair) {
	r.adaptersMu.Lock()
	delete(r.adapters, chair)
	delete(r.names, chair)
	r.adaptersMu.Unlock()

	r.dispatch(r.engine.Submit(draft.PlayerDisconnect{Chair: chair}))
}

// handleReady records chair's readiness and auto-starts the draft once
// every human (non-bot) chair is ready, per SPEC_FULL.md §4.7. Bot
// chairs occupy the highest-indexed chairs and are always considered
// ready, since nothing ever connects an adapter for them.
func (r *Room) handleReady(chair draft.Chair, ready bool) {
	r.ready[chair] = ready

	if r.started {
		return
	}

	humanChairs := r.chairCount - r.botCount
	for c := 0; c < humanChairs; c++ {
		if !r.ready[draft.Chair(c)] {
			return
		}
	}

	r.started = true
	r.dispatch(r.engine.Submit(draft.AdminStart{}))
}

func (r *Room) broadcastChat(chair draft.Chair, text string) {
	r.adaptersMu.RLock()
	name := r.names[chair]
	adapters := make([]*playeradapter.Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		adapters = append(adapters, a)
	}
	r.adaptersMu.RUnlock()

	for _, a := range adapters {
		a.DeliverChat(name, text)
	}
}

// dispatch fans a batch of notifications out to every connected
// adapter; each Adapter.Deliver call filters to what its own chair
// cares about.
func (r *Room) dispatch(notifications []draft.Notification) {
	if len(notifications) == 0 {
		return
	}

	r.adaptersMu.RLock()
	adapters := make([]*playeradapter.Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		adapters = append(adapters, a)
	}
	r.adaptersMu.RUnlock()

	for _, a := range adapters {
		a.Deliver(notifications)
	}
}
