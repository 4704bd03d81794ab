package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// voiceState is the part of a VoiceStateUpdate Lavalink needs.
type voiceState struct {
	channelID *snowflake.ID
	sessionID string
}

// voiceServer is the part of a VoiceServerUpdate Lavalink needs.
type voiceServer struct {
	token    string
	endpoint string
}

// voiceHandshake collects the gateway events answering one voice join.
// Discord sends them in either order and Lavalink rejects a partial voice
// state, so nothing is forwarded until the handshake is complete. A fresh
// join needs both events; moving a connected bot only produces a new voice
// state.
type voiceHandshake struct {
	mu          sync.Mutex
	needsServer bool
	state       *voiceState
	server      *voiceServer
	done        bool
	ready       chan struct{}
}

func newVoiceHandshake(needsServer bool) *voiceHandshake {
	return &voiceHandshake{
		needsServer: needsServer,
		ready:       make(chan struct{}),
	}
}

// offerState records a voice state and returns what should be forwarded to
// Lavalink now. Both results are nil while the handshake is incomplete.
func (h *voiceHandshake) offerState(state voiceState) (*voiceState, *voiceServer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done {
		return &state, nil
	}
	h.state = &state
	return h.complete()
}

// offerServer records a voice server update, see offerState.
func (h *voiceHandshake) offerServer(server voiceServer) (*voiceState, *voiceServer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done {
		return nil, &server
	}
	h.server = &server
	return h.complete()
}

// complete must be called with h.mu held.
func (h *voiceHandshake) complete() (*voiceState, *voiceServer) {
	if h.state == nil || (h.needsServer && h.server == nil) {
		return nil, nil
	}

	h.done = true
	close(h.ready)
	return h.state, h.server
}
