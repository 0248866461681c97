// Package session routes inbound connection events to the lobby store
// and fans the results back out to rooms. One goroutine owns dispatch.
package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kevykibbz/realtime-web-controller/internal/protocol"
	"github.com/kevykibbz/realtime-web-controller/internal/store"
)

// User-facing text for a join against an unknown code.
const lobbyNotFoundMsg = "Lobby not found"

// RoomBroadcaster is the delivery capability the router needs from the
// transport layer. Implemented by broadcast.Hub; faked in tests.
type RoomBroadcaster interface {
	Subscribe(connID, roomID string)
	Broadcast(roomID string, ev protocol.ServerEvent)
	Unicast(connID string, ev protocol.ServerEvent)
	Deregister(connID string)
}

type Router struct {
	inbox  chan Msg
	store  *store.Store
	rooms  RoomBroadcaster
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRouter(parent context.Context, st *store.Store, rooms RoomBroadcaster, logger *zap.Logger) *Router {
	ctx, cancel := context.WithCancel(parent)

	r := &Router{
		inbox:  make(chan Msg, 64),
		store:  st,
		rooms:  rooms,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	go r.loop()
	return r
}

// Inbox is where the transport layer delivers decoded messages.
func (r *Router) Inbox() chan<- Msg { return r.inbox }

func (r *Router) loop() {
	for {
		select {
		case <-r.ctx.Done():
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				r.handleCreateLobby(msg)
			case JoinRoom:
				r.handleJoinRoom(msg)
			case JoinLobby:
				r.handleJoinLobby(msg)
			case ControllerInput:
				r.handleControllerInput(msg)
			case Disconnect:
				r.handleDisconnect(msg)
			case Sync:
				close(msg.Done)
			case Shutdown:
				r.cancel()
				return
			}
		}
	}
}

func (r *Router) handleCreateLobby(msg CreateLobby) {
	lobbyID, err := r.store.CreateLobby()
	if err != nil {
		r.logger.Error("create lobby failed", zap.Error(err))
		return
	}

	r.rooms.Subscribe(msg.ConnID, lobbyID)
	r.rooms.Unicast(msg.ConnID, protocol.ServerEvent{
		Event: protocol.EventLobbyCreated,
		Data:  lobbyID,
	})
	r.logger.Info("lobby created",
		zap.String("lobby_id", lobbyID),
		zap.String("conn_id", msg.ConnID))
}

func (r *Router) handleJoinRoom(msg JoinRoom) {
	if !r.store.Exists(msg.LobbyID) {
		r.logger.Warn("join-lobby-room for unknown lobby",
			zap.String("lobby_id", msg.LobbyID),
			zap.String("conn_id", msg.ConnID))
		return
	}

	r.rooms.Subscribe(msg.ConnID, msg.LobbyID)
	r.logger.Info("host joined lobby room",
		zap.String("lobby_id", msg.LobbyID),
		zap.String("conn_id", msg.ConnID))
}

func (r *Router) handleJoinLobby(msg JoinLobby) {
	player, roster, err := r.store.AddPlayer(msg.LobbyID, msg.ConnID, msg.PlayerName)
	if errors.Is(err, store.ErrLobbyNotFound) {
		r.rooms.Unicast(msg.ConnID, protocol.ServerEvent{
			Event: protocol.EventJoinLobbyError,
			Data:  lobbyNotFoundMsg,
		})
		return
	}
	if err != nil {
		r.logger.Error("join lobby failed", zap.Error(err))
		return
	}

	r.rooms.Subscribe(msg.ConnID, msg.LobbyID)
	r.rooms.Unicast(msg.ConnID, protocol.ServerEvent{
		Event: protocol.EventJoinLobbySuccess,
		Data:  player,
	})
	r.rooms.Broadcast(msg.LobbyID, protocol.ServerEvent{
		Event: protocol.EventPlayerJoined,
		Data:  roster,
	})
	r.logger.Info("player joined lobby",
		zap.String("lobby_id", msg.LobbyID),
		zap.String("conn_id", msg.ConnID),
		zap.String("name", player.Name))
}

func (r *Router) handleControllerInput(msg ControllerInput) {
	if !r.store.Exists(msg.LobbyID) {
		return
	}

	if msg.Action == "press" {
		if roster, changed := r.store.RecordScoreEvent(msg.LobbyID, msg.ConnID); changed {
			r.rooms.Broadcast(msg.LobbyID, protocol.ServerEvent{
				Event: protocol.EventPlayerUpdated,
				Data:  roster,
			})
		}
	}

	evType := msg.Type
	if evType == "" {
		evType = "BUTTON"
	}
	r.rooms.Broadcast(msg.LobbyID, protocol.ServerEvent{
		Event: protocol.EventUnityEvent,
		Data: protocol.UnityEvent{
			Type:     evType,
			Action:   msg.Action,
			PlayerID: msg.ConnID,
		},
	})
	r.logger.Debug("unity event relayed",
		zap.String("lobby_id", msg.LobbyID),
		zap.String("action", msg.Action))
}

func (r *Router) handleDisconnect(msg Disconnect) {
	for _, change := range r.store.RemoveConnection(msg.ConnID) {
		r.rooms.Broadcast(change.LobbyID, protocol.ServerEvent{
			Event: protocol.EventPlayerUpdated,
			Data:  change.Roster,
		})
	}
	r.rooms.Deregister(msg.ConnID)
	r.logger.Info("connection closed", zap.String("conn_id", msg.ConnID))
}
