// Package protocol defines the JSON wire format shared by the
// controller and display clients. Every frame in both directions is an
// Envelope: {"event": "...", "data": <payload>}.
package protocol

import "encoding/json"

// Client -> server event names.
const (
	EventCreateLobby     = "create-lobby"
	EventJoinLobbyRoom   = "join-lobby-room"
	EventJoinLobby       = "join-lobby"
	EventControllerInput = "controller-input"
)

// Server -> client event names.
const (
	EventLobbyCreated     = "lobby-created"
	EventJoinLobbySuccess = "join-lobby-success"
	EventJoinLobbyError   = "join-lobby-error"
	EventPlayerJoined     = "player-joined"
	EventPlayerUpdated    = "player-updated"
	EventUnityEvent       = "unity-event"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Player is the roster view broadcast to rooms. ID is the owning
// connection's id.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type JoinLobbyRequest struct {
	LobbyID    string `json:"lobbyId"`
	PlayerName string `json:"playerName"`
}

type ControllerInputRequest struct {
	LobbyID string `json:"lobbyId"`
	Type    string `json:"type,omitempty"`
	Action  string `json:"action"`
}

// UnityEvent is the normalized input record relayed to the room for
// every controller-input, scoring or not.
type UnityEvent struct {
	Type     string `json:"type"`
	Action   string `json:"action"`
	PlayerID string `json:"playerId"`
}

// ServerEvent is an outbound frame ready for encoding.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}
