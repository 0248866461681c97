// Package store owns all authoritative lobby state. Every other
// component goes through its methods and treats returned rosters as
// read-only snapshots.
package store

import (
	"errors"
	"sync"

	"github.com/kevykibbz/realtime-web-controller/internal/code"
	"github.com/kevykibbz/realtime-web-controller/internal/protocol"
)

var ErrLobbyNotFound = errors.New("lobby not found")

// DefaultPlayerName is used when a controller joins without a name.
const DefaultPlayerName = "Player"

type player struct {
	connID string
	name   string
	score  int
}

type lobby struct {
	players []*player // join order
}

// RoomChange pairs a lobby id with its roster after a mutation, for
// broadcast by the caller.
type RoomChange struct {
	LobbyID string
	Roster  []protocol.Player
}

// Store maps lobby codes to live lobbies. One mutex guards the whole
// map; contention is a handful of party controllers, not worth a lock
// per lobby.
type Store struct {
	mu       sync.Mutex
	lobbies  map[string]*lobby
	generate func() (string, error)
}

func New() *Store {
	return &Store{
		lobbies:  make(map[string]*lobby),
		generate: code.Generate,
	}
}

// NewWithGenerator injects the code generator, for tests that need
// predictable ids or forced collisions.
func NewWithGenerator(generate func() (string, error)) *Store {
	s := New()
	s.generate = generate
	return s
}

// CreateLobby inserts an empty lobby under a fresh code and returns the
// code. Regenerates on collision with any live lobby.
func (s *Store) CreateLobby() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		c, err := s.generate()
		if err != nil {
			return "", err
		}
		if _, taken := s.lobbies[c]; taken {
			continue
		}
		s.lobbies[c] = &lobby{}
		return c, nil
	}
}

// Exists reports whether a lobby with the given id is live.
func (s *Store) Exists(lobbyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lobbies[lobbyID]
	return ok
}

// Roster returns a snapshot of the lobby's players in join order.
func (s *Store) Roster(lobbyID string) ([]protocol.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lb, ok := s.lobbies[lobbyID]
	if !ok {
		return nil, false
	}
	return lb.roster(), true
}

// AddPlayer appends a player for connID to the lobby's roster and
// returns the player's view plus the updated roster. A connection that
// is already on the roster is returned as-is rather than duplicated.
func (s *Store) AddPlayer(lobbyID, connID, name string) (protocol.Player, []protocol.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lb, ok := s.lobbies[lobbyID]
	if !ok {
		return protocol.Player{}, nil, ErrLobbyNotFound
	}
	if name == "" {
		name = DefaultPlayerName
	}

	for _, p := range lb.players {
		if p.connID == connID {
			return p.view(), lb.roster(), nil
		}
	}

	p := &player{connID: connID, name: name}
	lb.players = append(lb.players, p)
	return p.view(), lb.roster(), nil
}

// RecordScoreEvent increments the score of the player owned by connID
// in the given lobby. A miss on either lookup is a silent no-op: input
// events racing a disconnect are expected, not errors.
func (s *Store) RecordScoreEvent(lobbyID, connID string) ([]protocol.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lb, ok := s.lobbies[lobbyID]
	if !ok {
		return nil, false
	}
	for _, p := range lb.players {
		if p.connID == connID {
			p.score++
			return lb.roster(), true
		}
	}
	return nil, false
}

// RemoveConnection strips connID from every lobby it appears in and
// returns the updated roster for each lobby that changed. Safe when the
// connection is in zero lobbies, or in several if invariants were ever
// violated.
func (s *Store) RemoveConnection(connID string) []RoomChange {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []RoomChange
	for id, lb := range s.lobbies {
		kept := lb.players[:0]
		removed := false
		for _, p := range lb.players {
			if p.connID == connID {
				removed = true
				continue
			}
			kept = append(kept, p)
		}
		if removed {
			lb.players = kept
			changed = append(changed, RoomChange{LobbyID: id, Roster: lb.roster()})
		}
	}
	return changed
}

func (lb *lobby) roster() []protocol.Player {
	out := make([]protocol.Player, len(lb.players))
	for i, p := range lb.players {
		out[i] = p.view()
	}
	return out
}

func (p *player) view() protocol.Player {
	return protocol.Player{ID: p.connID, Name: p.name, Score: p.score}
}
