package session

// Msg is the tagged union of inbound connection events. All messages
// from all connections funnel into one router inbox, so handling is
// serialized and lobby state never sees overlapping mutation.
type Msg interface{ isSessionMsg() }

type CreateLobby struct {
	ConnID string
}

func (CreateLobby) isSessionMsg() {}

// JoinRoom re-attaches a host/display connection to an existing lobby's
// room. Hosts are not players, so no roster entry is made.
type JoinRoom struct {
	ConnID  string
	LobbyID string
}

func (JoinRoom) isSessionMsg() {}

type JoinLobby struct {
	ConnID     string
	LobbyID    string
	PlayerName string
}

func (JoinLobby) isSessionMsg() {}

type ControllerInput struct {
	ConnID  string
	LobbyID string
	Type    string
	Action  string
}

func (ControllerInput) isSessionMsg() {}

type Disconnect struct {
	ConnID string
}

func (Disconnect) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// Sync is a test-only barrier: its reply is sent once every message
// ahead of it has been dispatched.
type Sync struct {
	Done chan struct{}
}

func (Sync) isSessionMsg() {}
