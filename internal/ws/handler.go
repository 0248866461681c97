package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kevykibbz/realtime-web-controller/internal/broadcast"
	"github.com/kevykibbz/realtime-web-controller/internal/config"
	"github.com/kevykibbz/realtime-web-controller/internal/protocol"
	"github.com/kevykibbz/realtime-web-controller/internal/session"
)

const writeTimeout = 3 * time.Second

// Handler upgrades to a websocket, assigns the connection its identity,
// and bridges frames between the socket and the session router. The
// connection id is the player identity for its whole lifetime; a
// reconnect is a brand-new player.
func Handler(router *session.Router, hub *broadcast.Hub, cfg *config.Config, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warn("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		logger.Info("socket connected", zap.String("conn_id", connID))

		out := hub.Register(connID)
		defer func() { router.Inbox() <- session.Disconnect{ConnID: connID} }()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer: drain the outbox until the hub closes it, then stop
		// the reader too.
		go func() {
			defer cancel()
			for ev := range out {
				payload, err := json.Marshal(ev)
				if err != nil {
					logger.Error("marshal outbound event", zap.Error(err))
					continue
				}
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				_ = conn.Write(wctx, websocket.MessageText, payload)
				wcancel()
			}
		}()

		// Keepalive: hosting platforms reap idle connections, so ping
		// on an interval and close when the peer stops answering.
		go func() {
			ticker := time.NewTicker(cfg.PingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					pctx, pcancel := context.WithTimeout(ctx, cfg.PingTimeout)
					err := conn.Ping(pctx)
					pcancel()
					if err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					logger.Debug("socket read ended", zap.String("conn_id", connID), zap.Error(err))
				}
				return
			}

			msg, ok := decode(connID, data, logger)
			if !ok {
				continue
			}
			router.Inbox() <- msg
		}
	}
}

// decode turns a raw frame into a typed session message. Malformed or
// unknown frames are logged and dropped; nothing a client sends can
// take the server down.
func decode(connID string, data []byte, logger *zap.Logger) (session.Msg, bool) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logger.Warn("bad frame", zap.String("conn_id", connID), zap.Error(err))
		return nil, false
	}

	switch env.Event {
	case protocol.EventCreateLobby:
		return session.CreateLobby{ConnID: connID}, true

	case protocol.EventJoinLobbyRoom:
		var lobbyID string
		if err := json.Unmarshal(env.Data, &lobbyID); err != nil {
			logger.Warn("bad join-lobby-room payload", zap.String("conn_id", connID), zap.Error(err))
			return nil, false
		}
		return session.JoinRoom{ConnID: connID, LobbyID: lobbyID}, true

	case protocol.EventJoinLobby:
		var req protocol.JoinLobbyRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			logger.Warn("bad join-lobby payload", zap.String("conn_id", connID), zap.Error(err))
			return nil, false
		}
		return session.JoinLobby{ConnID: connID, LobbyID: req.LobbyID, PlayerName: req.PlayerName}, true

	case protocol.EventControllerInput:
		var req protocol.ControllerInputRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			logger.Warn("bad controller-input payload", zap.String("conn_id", connID), zap.Error(err))
			return nil, false
		}
		return session.ControllerInput{ConnID: connID, LobbyID: req.LobbyID, Type: req.Type, Action: req.Action}, true

	default:
		logger.Warn("unknown event", zap.String("conn_id", connID), zap.String("event", env.Event))
		return nil, false
	}
}
