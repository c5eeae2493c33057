package mesh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
)

const defaultStallTimeout = 30 * time.Second

// Config wires an Orchestrator. Zero-value Capture/Transport fall back to the
// real microphone and pion.
type Config struct {
	Signaler     Signaler
	Capture      CaptureFunc
	Transport    TransportFactory
	StallTimeout time.Duration
}

// Orchestrator owns the local end of a voice call: the capture resource and
// an arena of peer links indexed by remote connection id. All link lifecycle
// goes through it; no ambient map escapes.
type Orchestrator struct {
	sig          Signaler
	acquire      CaptureFunc
	newTransport TransportFactory
	stallTimeout time.Duration

	mu      sync.Mutex
	links   map[string]*PeerLink
	timers  map[string]*time.Timer
	capture Capture
	channel domain.ChannelID
	joined  bool
}

func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		sig:          cfg.Signaler,
		acquire:      cfg.Capture,
		newTransport: cfg.Transport,
		stallTimeout: cfg.StallTimeout,
		links:        make(map[string]*PeerLink),
		timers:       make(map[string]*time.Timer),
	}
	if o.acquire == nil {
		o.acquire = CaptureMicrophone
	}
	if o.newTransport == nil {
		o.newTransport = NewPeerTransport
	}
	if o.stallTimeout <= 0 {
		o.stallTimeout = defaultStallTimeout
	}
	return o
}

// Run consumes signaler events until ctx ends or the connection drops, then
// tears the call down unconditionally.
func (o *Orchestrator) Run(ctx context.Context) {
	defer o.LeaveCall()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-o.sig.Events():
			if !ok {
				return
			}
			o.handle(ev)
		}
	}
}

// JoinCall acquires the microphone, then announces the join. The capture is
// released on every failure path; a user whose microphone cannot be opened
// never enters the room. The call slot is claimed under the lock before the
// acquisition, so a concurrent second join is refused without ever touching
// the microphone.
func (o *Orchestrator) JoinCall(ch domain.ChannelID) error {
	o.mu.Lock()
	if o.joined {
		o.mu.Unlock()
		return errors.New("already in a call")
	}
	o.joined = true
	o.channel = ch
	o.mu.Unlock()

	capture, err := o.acquire()
	if err != nil {
		o.reset()
		return fmt.Errorf("join call: %w", err)
	}
	o.mu.Lock()
	o.capture = capture
	o.mu.Unlock()

	if err := o.sig.Send(protocol.JoinVoice{ChannelID: ch}); err != nil {
		o.reset()
		_ = capture.Close()
		return fmt.Errorf("join call: %w", err)
	}

	// A teardown racing this join already released everything it saw; make
	// sure the capture does not outlive the slot it lost.
	o.mu.Lock()
	joined := o.joined
	if !joined {
		o.capture = nil
	}
	o.mu.Unlock()
	if !joined {
		_ = capture.Close()
		return errors.New("call torn down during join")
	}
	log.Info().Str("module", "mesh").Str("channel", string(ch)).Msg("joined call")
	return nil
}

// reset frees the call slot after a failed join.
func (o *Orchestrator) reset() {
	o.mu.Lock()
	o.capture = nil
	o.joined = false
	o.mu.Unlock()
}

// LeaveCall force-closes every link irrespective of in-flight negotiation,
// then releases the capture. Idempotent.
func (o *Orchestrator) LeaveCall() {
	o.mu.Lock()
	if !o.joined {
		o.mu.Unlock()
		return
	}
	ch := o.channel
	links := o.links
	timers := o.timers
	capture := o.capture
	o.links = make(map[string]*PeerLink)
	o.timers = make(map[string]*time.Timer)
	o.capture = nil
	o.joined = false
	o.mu.Unlock()

	_ = o.sig.Send(protocol.LeaveVoice{ChannelID: ch})
	for _, t := range timers {
		t.Stop()
	}
	for _, l := range links {
		l.Close()
	}
	if capture != nil {
		_ = capture.Close()
	}
	log.Info().Str("module", "mesh").Str("channel", string(ch)).Msg("left call")
}

// LinkStates is a read-only view of the arena.
func (o *Orchestrator) LinkStates() map[string]LinkState {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]LinkState, len(o.links))
	for remote, l := range o.links {
		out[remote] = l.State()
	}
	return out
}

func (o *Orchestrator) handle(ev protocol.ServerEvent) {
	switch ev := ev.(type) {
	case protocol.UserJoinedVoice:
		o.handleJoined(ev)
	case protocol.UserLeftVoice:
		o.closeLink(ev.ConnID)
	case protocol.Offer:
		o.handleOffer(ev)
	case protocol.Answer:
		o.handleAnswer(ev)
	case protocol.Candidate:
		o.handleCandidate(ev)
	case protocol.ErrorEvent:
		log.Warn().Str("module", "mesh").Str("error", ev.Message).Msg("server error event")
	default:
		// chat traffic; not ours
	}
}

// handleJoined: an existing member offers to the newcomer. Only recipients of
// user_joined_voice initiate, so each unordered pair gets exactly one
// initiator and never two opposing links.
func (o *Orchestrator) handleJoined(ev protocol.UserJoinedVoice) {
	o.mu.Lock()
	joined := o.joined
	_, exists := o.links[ev.ConnID]
	o.mu.Unlock()
	if !joined || exists {
		return
	}

	link, err := o.createLink(ev.ConnID)
	if err != nil {
		log.Error().Err(err).Str("module", "mesh").Str("remote", ev.ConnID).Msg("create link")
		return
	}
	if err := link.SendOffer(o.sig); err != nil {
		log.Error().Err(err).Str("module", "mesh").Str("remote", ev.ConnID).Msg("send offer")
		o.closeLink(ev.ConnID)
	}
}

func (o *Orchestrator) handleOffer(ev protocol.Offer) {
	o.mu.Lock()
	joined := o.joined
	_, exists := o.links[ev.From]
	o.mu.Unlock()
	if !joined {
		return
	}
	if exists {
		// Re-offer race for a pair that already has a link; dropping it keeps
		// one link per unordered pair.
		log.Debug().Str("module", "mesh").Str("remote", ev.From).Msg("duplicate offer dropped")
		return
	}

	link, err := o.createLink(ev.From)
	if err != nil {
		log.Error().Err(err).Str("module", "mesh").Str("remote", ev.From).Msg("create link")
		return
	}
	if err := link.AcceptOffer(o.sig, ev.Payload); err != nil {
		log.Error().Err(err).Str("module", "mesh").Str("remote", ev.From).Msg("answer offer")
		o.closeLink(ev.From)
	}
}

func (o *Orchestrator) handleAnswer(ev protocol.Answer) {
	o.mu.Lock()
	link, ok := o.links[ev.From]
	o.mu.Unlock()
	if !ok {
		return
	}
	if err := link.AcceptAnswer(ev.Payload); err != nil {
		log.Error().Err(err).Str("module", "mesh").Str("remote", ev.From).Msg("apply answer")
		o.closeLink(ev.From)
		return
	}
	if link.State() == LinkConnected {
		o.stopStallTimer(ev.From)
	}
}

func (o *Orchestrator) handleCandidate(ev protocol.Candidate) {
	o.mu.Lock()
	link, ok := o.links[ev.From]
	o.mu.Unlock()
	if !ok {
		// Arrived after teardown; nothing to apply it to.
		log.Debug().Str("module", "mesh").Str("remote", ev.From).Msg("candidate without link dropped")
		return
	}
	if err := link.AddCandidate(ev.Payload); err != nil {
		log.Warn().Err(err).Str("module", "mesh").Str("remote", ev.From).Msg("add candidate")
	}
}

// createLink builds the transport from the held capture, wires its callbacks
// and arms the stall timer. Caller guarantees the remote is not yet linked.
func (o *Orchestrator) createLink(remote string) (*PeerLink, error) {
	o.mu.Lock()
	capture := o.capture
	o.mu.Unlock()
	if capture == nil {
		return nil, errors.New("no capture held")
	}

	tr, err := o.newTransport(capture, remote)
	if err != nil {
		return nil, err
	}
	link := newPeerLink(remote, tr)

	tr.OnCandidate(func(payload json.RawMessage) {
		_ = o.sig.Send(protocol.Candidate{Target: remote, Payload: payload})
	})
	tr.OnConnected(func() {
		link.markConnected()
		o.stopStallTimer(remote)
		log.Info().Str("module", "mesh").Str("remote", remote).Msg("link connected")
	})
	tr.OnClosed(func() {
		o.closeLink(remote)
	})

	timer := time.AfterFunc(o.stallTimeout, func() {
		if link.State() == LinkConnected {
			return
		}
		log.Warn().Str("module", "mesh").Str("remote", remote).Str("state", link.State().String()).Msg("negotiation stalled, closing link")
		o.closeLink(remote)
	})

	o.mu.Lock()
	o.links[remote] = link
	o.timers[remote] = timer
	peers := len(o.links)
	o.mu.Unlock()
	if peers >= SoftParticipantCap {
		log.Warn().Str("module", "mesh").Int("peers", peers).Msg("room beyond the comfortable mesh size")
	}
	return link, nil
}

func (o *Orchestrator) stopStallTimer(remote string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if t, ok := o.timers[remote]; ok {
		t.Stop()
		delete(o.timers, remote)
	}
}

func (o *Orchestrator) closeLink(remote string) {
	o.mu.Lock()
	link, ok := o.links[remote]
	if ok {
		delete(o.links, remote)
	}
	if t, tok := o.timers[remote]; tok {
		t.Stop()
		delete(o.timers, remote)
	}
	o.mu.Unlock()
	if ok {
		link.Close()
	}
}
