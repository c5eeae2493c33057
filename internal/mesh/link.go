package mesh

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/protocol"
)

type LinkState int

const (
	LinkCreated LinkState = iota
	LinkOfferSent
	LinkAnswerExchanged
	LinkConnected
	LinkClosed
)

func (s LinkState) String() string {
	switch s {
	case LinkCreated:
		return "created"
	case LinkOfferSent:
		return "offer_sent"
	case LinkAnswerExchanged:
		return "answer_exchanged"
	case LinkConnected:
		return "connected"
	case LinkClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// PeerLink is one mesh edge, keyed by the remote connection id. It exists
// only while both endpoints stay in the same voice room; the orchestrator
// creates and closes it, nothing else touches it.
type PeerLink struct {
	remote string

	mu    sync.Mutex
	state LinkState
	tr    PeerTransport
}

func newPeerLink(remote string, tr PeerTransport) *PeerLink {
	return &PeerLink{remote: remote, state: LinkCreated, tr: tr}
}

func (l *PeerLink) Remote() string { return l.remote }

func (l *PeerLink) State() LinkState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// SendOffer generates the local description and ships it to the remote.
// Valid only once, from Created.
func (l *PeerLink) SendOffer(sig Signaler) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != LinkCreated {
		return fmt.Errorf("offer from state %s", l.state)
	}
	payload, err := l.tr.CreateOffer()
	if err != nil {
		return err
	}
	if err := sig.Send(protocol.Offer{Target: l.remote, Payload: payload}); err != nil {
		return err
	}
	l.state = LinkOfferSent
	return nil
}

// AcceptOffer applies the remote offer and answers it; the answering side
// goes straight to AnswerExchanged.
func (l *PeerLink) AcceptOffer(sig Signaler, offer json.RawMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != LinkCreated {
		return fmt.Errorf("accept offer from state %s", l.state)
	}
	payload, err := l.tr.ApplyOfferCreateAnswer(offer)
	if err != nil {
		return err
	}
	if err := sig.Send(protocol.Answer{Target: l.remote, Payload: payload}); err != nil {
		return err
	}
	l.state = LinkAnswerExchanged
	return nil
}

// AcceptAnswer completes the offerer's side. Answers for links not waiting on
// one are dropped; a re-answer race must not regress the state machine.
func (l *PeerLink) AcceptAnswer(answer json.RawMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != LinkOfferSent {
		log.Debug().Str("module", "mesh.link").Str("remote", l.remote).Str("state", l.state.String()).Msg("answer ignored")
		return nil
	}
	if err := l.tr.ApplyAnswer(answer); err != nil {
		return err
	}
	l.state = LinkConnected
	return nil
}

// AddCandidate is best-effort in any live state; candidates racing teardown
// are dropped by the caller when no link exists anymore.
func (l *PeerLink) AddCandidate(candidate json.RawMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == LinkClosed {
		return nil
	}
	return l.tr.AddCandidate(candidate)
}

// markConnected is driven by the transport's connectivity callback, which is
// the only way the answering side learns the mesh edge came up.
func (l *PeerLink) markConnected() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == LinkAnswerExchanged || l.state == LinkOfferSent {
		l.state = LinkConnected
	}
}

// Close is idempotent and unconditional: in-flight negotiation state is
// irrelevant once the remote left or the call is torn down.
func (l *PeerLink) Close() {
	l.mu.Lock()
	if l.state == LinkClosed {
		l.mu.Unlock()
		return
	}
	l.state = LinkClosed
	l.mu.Unlock()
	l.tr.Close()
	log.Info().Str("module", "mesh.link").Str("remote", l.remote).Msg("link closed")
}
