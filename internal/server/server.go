// Package server implements the Server/Registry of SPEC_FULL.md §4.8:
// the top-level process type owning a net.Listener, a registry of Rooms
// keyed by uuid.UUID, and per-connection session bootstrap (accept ->
// LoginReq/LoginRsp -> room list/join/create).
//
// Grounded on internal/torrent/client.go's map-of-managed-instances
// pattern (a registry guarded for concurrent access, one goroutine
// spawned per managed instance's own Run loop); the instance key here
// is a uuid.UUID rather than an info hash, held in the adapted
// pkg/syncmap.Map rather than a bare map+sync.RWMutex pair.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/prxssh/thicketd/internal/carddb"
	"github.com/prxssh/thicketd/internal/cardpool"
	"github.com/prxssh/thicketd/internal/draft"
	"github.com/prxssh/thicketd/internal/draftconfig"
	"github.com/prxssh/thicketd/internal/playeradapter"
	"github.com/prxssh/thicketd/internal/room"
	"github.com/prxssh/thicketd/internal/serverconfig"
	"github.com/prxssh/thicketd/internal/transport"
	"github.com/prxssh/thicketd/internal/wire"
	"github.com/prxssh/thicketd/pkg/syncmap"
)

// roomEntry is one registry record: the running Room plus the
// registry-facing bookkeeping a Room itself has no use for (display
// name, password gate, live player count for RoomListInd).
type roomEntry struct {
	room        *room.Room
	name        string
	password    string
	playerCount atomic.Int64
}

func (e *roomEntry) summary(id uuid.UUID) wire.RoomSummary {
	return wire.RoomSummary{
		RoomID:      id.String(),
		Name:        e.name,
		PlayerCount: int(e.playerCount.Load()),
		HasPassword: e.password != "",
	}
}

// Server is the process-wide listener and room registry.
type Server struct {
	log  *slog.Logger
	cfg  *serverconfig.Config
	data carddb.SetsData

	ln net.Listener

	rooms *syncmap.Map[uuid.UUID, *roomEntry]

	// lobby holds every connection currently between login and joining a
	// room, so a room create/remove/player-count change can be pushed to
	// everyone still browsing the room list.
	lobby *syncmap.Map[uuid.UUID, *transport.Conn]
}

// New builds a Server bound to cfg.ListenAddr. data supplies the card
// sets available to CreateRoomReq's dispensers.
func New(cfg *serverconfig.Config, data carddb.SetsData, log *slog.Logger) *Server {
	return &Server{
		log:   log.With("component", "server"),
		cfg:   cfg,
		data:  data,
		rooms: syncmap.New[uuid.UUID, *roomEntry](),
		lobby: syncmap.New[uuid.UUID, *transport.Conn](),
	}
}

// Listen opens the TCP listener without yet accepting connections,
// split out from Serve so a caller (or a test) can read the bound
// address before the accept loop starts, which matters when
// ListenAddr uses an ephemeral port.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.cfg.ListenAddr, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the listener's bound address. Valid only after Listen.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Serve accepts connections until ctx is cancelled, mirroring
// Client.AddTorrent's "construct, then go instance.Run(ctx)" pattern
// but applied to the accept loop itself. Listen must have been called
// first.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("listening", "addr", s.ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return s.ln.Close()
	})
	g.Go(func() error { return s.acceptLoop(gctx) })

	return g.Wait()
}

// ListenAndServe is the common-case combination of Listen and Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) {
				s.log.Warn("accept error, continuing", "error", err.Error())
				continue
			}
			return err
		}

		go s.handleConnection(ctx, conn)
	}
}

// handleConnection drives one client's session bootstrap (login, room
// list/create/join) and then, once a room is joined, the Player
// Adapter's read/write pumps for the remainder of the connection.
func (s *Server) handleConnection(ctx context.Context, nc net.Conn) {
	conn := transport.New(nc)
	conn.SetRxInactivityTimeout(s.cfg.ReadTimeout)
	log := s.log.With("remote_addr", nc.RemoteAddr().String())

	name, ok := s.login(conn, log)
	if !ok {
		_ = conn.Close()
		return
	}
	log = log.With("player", name)

	sessionID := uuid.New()
	s.lobby.Put(sessionID, conn)
	defer s.lobby.Delete(sessionID)

	s.reply(conn, log, &wire.RoomListInd{Rooms: s.RoomList()})

	for {
		body, err := conn.ReadMessage()
		if err != nil {
			log.Debug("connection closed before joining a room", "error", err.Error())
			_ = conn.Close()
			return
		}

		env, err := wire.DecodeEnvelopeJSON(body)
		if err != nil {
			log.Warn("malformed envelope during lobby phase", "error", err.Error())
			continue
		}

		msg, err := wire.Decode(env, wire.Upstream)
		if err != nil {
			log.Warn("undecodable envelope during lobby phase", "error", err.Error())
			continue
		}

		switch m := msg.(type) {
		case *wire.CreateRoomReq:
			id, r, entry, failErr := s.createRoom(m.RoomConfig)
			if failErr != nil {
				var verr *draftconfig.ValidationError
				code := draftconfig.InvalidRoundConfig
				if errors.As(failErr, &verr) {
					code = verr.Code
				}
				s.reply(conn, log, &wire.CreateRoomRsp{OK: false, FailureReason: code})
				continue
			}
			s.reply(conn, log, &wire.CreateRoomRsp{OK: true, RoomID: id.String()})
			s.broadcastRoomAdded(id, entry)
			go func() {
				if err := r.Run(ctx); err != nil {
					log.Warn("room stopped with error", "room_id", id.String(), "error", err.Error())
				}
				s.removeRoom(id)
			}()

		case *wire.JoinRoomReq:
			if s.joinRoom(ctx, log, conn, name, m, sessionID) {
				return
			}

		default:
			log.Warn("unexpected message before joining a room", "kind", env.Kind)
		}
	}
}

func (s *Server) login(conn *transport.Conn, log *slog.Logger) (string, bool) {
	body, err := conn.ReadMessage()
	if err != nil {
		log.Debug("failed reading login request", "error", err.Error())
		return "", false
	}

	env, err := wire.DecodeEnvelopeJSON(body)
	if err != nil {
		log.Warn("malformed login envelope", "error", err.Error())
		return "", false
	}

	msg, err := wire.Decode(env, wire.Upstream)
	if err != nil {
		log.Warn("undecodable login envelope", "error", err.Error())
		return "", false
	}

	req, ok := msg.(*wire.LoginReq)
	if !ok {
		s.reply(conn, log, &wire.LoginRsp{OK: false, Reason: "expected LoginReq"})
		return "", false
	}
	if req.Name == "" {
		s.reply(conn, log, &wire.LoginRsp{OK: false, Reason: "name must not be empty"})
		return "", false
	}

	s.reply(conn, log, &wire.LoginRsp{OK: true})
	return req.Name, true
}

// createRoom validates cfg, builds its Room, and registers it under a
// freshly generated id. The caller is responsible for starting the
// Room's Run goroutine.
func (s *Server) createRoom(cfg draftconfig.RoomConfig) (uuid.UUID, *room.Room, *roomEntry, error) {
	if err := draftconfig.Validate(cfg, s.data); err != nil {
		return uuid.Nil, nil, nil, err
	}

	id := uuid.New()
	r, err := room.New(id.String(), cfg, s.data, cardpool.SystemRand(), nil, time.Now(), s.log)
	if err != nil {
		return uuid.Nil, nil, nil, &draftconfig.ValidationError{Code: draftconfig.InvalidRoundConfig, Msg: err.Error()}
	}

	entry := &roomEntry{room: r, name: id.String()}
	s.rooms.Put(id, entry)
	return id, r, entry, nil
}

// joinRoom attaches nc's connection, as a freshly built Player Adapter,
// to the room named by req.RoomID at the next free chair. Returns true
// once the adapter's Run loop has returned (the connection is done).
func (s *Server) joinRoom(ctx context.Context, log *slog.Logger, conn *transport.Conn, name string, req *wire.JoinRoomReq, sessionID uuid.UUID) bool {
	id, err := uuid.Parse(req.RoomID)
	if err != nil {
		s.reply(conn, log, &wire.JoinRoomRsp{OK: false, FailureReason: "malformed room id"})
		return false
	}

	entry, ok := s.rooms.Get(id)
	if !ok {
		s.reply(conn, log, &wire.JoinRoomRsp{OK: false, FailureReason: "room not found"})
		return false
	}
	if entry.password != "" && entry.password != req.Password {
		s.reply(conn, log, &wire.JoinRoomRsp{OK: false, FailureReason: "wrong password"})
		return false
	}

	chair, ok := s.nextFreeChair(entry)
	if !ok {
		s.reply(conn, log, &wire.JoinRoomRsp{OK: false, FailureReason: "room is full"})
		return false
	}

	adapter := playeradapter.New(conn, chair, entry.room, log)
	if err := entry.room.Join(chair, name, adapter); err != nil {
		s.reply(conn, log, &wire.JoinRoomRsp{OK: false, FailureReason: err.Error()})
		return false
	}

	// The connection leaves the lobby the moment it's handed to the
	// adapter: broadcastToLobby and the adapter's write pump must never
	// write to the same net.Conn concurrently.
	s.lobby.Delete(sessionID)

	entry.playerCount.Add(1)
	s.broadcastRoomPlayerCount(id, entry)
	s.reply(conn, log, &wire.JoinRoomRsp{OK: true})

	if err := adapter.Run(ctx); err != nil {
		log.Debug("player adapter stopped", "error", err.Error())
	}

	entry.playerCount.Add(-1)
	s.broadcastRoomPlayerCount(id, entry)
	return true
}

// nextFreeChair finds the lowest-indexed human chair with no adapter
// joined yet, asking the Room directly rather than keeping a shadow
// copy of occupancy in the registry.
func (s *Server) nextFreeChair(entry *roomEntry) (draft.Chair, bool) {
	const maxChairsProbed = 64
	for c := 0; c < maxChairsProbed; c++ {
		if entry.room.HasOpenChair(draft.Chair(c)) {
			return draft.Chair(c), true
		}
	}
	return 0, false
}

func (s *Server) reply(conn *transport.Conn, log *slog.Logger, msg any) {
	env, err := wire.Encode(msg)
	if err != nil {
		log.Error("failed to encode reply", "error", err.Error())
		return
	}
	body, err := wire.EncodeEnvelopeJSON(env)
	if err != nil {
		log.Error("failed to marshal reply envelope", "error", err.Error())
		return
	}
	if err := conn.WriteMessage(body); err != nil {
		log.Warn("failed to write reply", "error", err.Error())
	}
}

// removeRoom drops a finished or aborted room from the registry and
// tells the lobby it's gone.
func (s *Server) removeRoom(id uuid.UUID) {
	s.rooms.Delete(id)
	s.broadcastToLobby(&wire.RoomRemovedInd{RoomID: id.String()})
}

func (s *Server) broadcastRoomAdded(id uuid.UUID, entry *roomEntry) {
	s.broadcastToLobby(&wire.RoomAddedInd{Room: entry.summary(id)})
}

func (s *Server) broadcastRoomPlayerCount(id uuid.UUID, entry *roomEntry) {
	s.broadcastToLobby(&wire.RoomPlayerCountInd{RoomID: id.String(), PlayerCount: int(entry.playerCount.Load())})
}

// broadcastToLobby sends msg to every connection currently between login
// and joining a room. A write failure just logs; the connection's own
// read loop will notice the disconnect and unregister it.
func (s *Server) broadcastToLobby(msg any) {
	s.lobby.Range(func(_ uuid.UUID, conn *transport.Conn) bool {
		s.reply(conn, s.log, msg)
		return true
	})
}

// RoomList returns a snapshot of the registry's rooms for a RoomListInd.
func (s *Server) RoomList() []wire.RoomSummary {
	var out []wire.RoomSummary
	s.rooms.Range(func(id uuid.UUID, entry *roomEntry) bool {
		out = append(out, entry.summary(id))
		return true
	})
	return out
}
