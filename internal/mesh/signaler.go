// Package mesh is the participant side of a voice room: one peer link per
// other member, negotiated over the signaling relay, carrying audio captured
// locally. There is no server mixing; with N members each participant holds
// N-1 links, which is what bounds practical room size.
package mesh

import (
	"github.com/dkeye/Huddle/internal/protocol"
)

// SoftParticipantCap is advisory only; nothing enforces it mechanically.
// Past six members the O(N²) link count stops being pleasant on home uplinks.
const SoftParticipantCap = 6

// Signaler is the only surface the mesh needs from the realtime layer.
// Sends are unacknowledged: the relay drops frames for dead targets without
// telling anyone, so the mesh must tolerate silence after any Send.
type Signaler interface {
	Send(ev protocol.ClientEvent) error
	Events() <-chan protocol.ServerEvent
	Close() error
}
