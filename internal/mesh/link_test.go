package mesh

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Huddle/internal/protocol"
)

type fakeSignaler struct {
	mu      sync.Mutex
	sent    []protocol.ClientEvent
	events  chan protocol.ServerEvent
	sendErr error
}

func newFakeSignaler() *fakeSignaler {
	return &fakeSignaler{events: make(chan protocol.ServerEvent, 8)}
}

func (s *fakeSignaler) Send(ev protocol.ClientEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, ev)
	return nil
}

func (s *fakeSignaler) Events() <-chan protocol.ServerEvent { return s.events }
func (s *fakeSignaler) Close() error                        { return nil }

func (s *fakeSignaler) sentEvents() []protocol.ClientEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.ClientEvent(nil), s.sent...)
}

type fakeTransport struct {
	remote string

	mu             sync.Mutex
	closeCount     int
	candidates     []json.RawMessage
	applyAnswerErr error

	onCandidate func(json.RawMessage)
	onConnected func()
	onClosed    func()
}

func newFakeTransport(remote string) *fakeTransport {
	return &fakeTransport{remote: remote}
}

func (t *fakeTransport) CreateOffer() (json.RawMessage, error) {
	return json.RawMessage(`{"type":"offer","sdp":"v=0"}`), nil
}

func (t *fakeTransport) ApplyOfferCreateAnswer(offer json.RawMessage) (json.RawMessage, error) {
	return json.RawMessage(`{"type":"answer","sdp":"v=0"}`), nil
}

func (t *fakeTransport) ApplyAnswer(answer json.RawMessage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applyAnswerErr
}

func (t *fakeTransport) AddCandidate(c json.RawMessage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.candidates = append(t.candidates, c)
	return nil
}

func (t *fakeTransport) OnCandidate(fn func(json.RawMessage)) { t.onCandidate = fn }
func (t *fakeTransport) OnConnected(fn func())                { t.onConnected = fn }
func (t *fakeTransport) OnClosed(fn func())                   { t.onClosed = fn }

func (t *fakeTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeCount++
}

func (t *fakeTransport) closes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeCount
}

func (t *fakeTransport) candidateCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.candidates)
}

type fakeCapture struct {
	mu     sync.Mutex
	closed bool
}

func (c *fakeCapture) API() *webrtc.API           { return nil }
func (c *fakeCapture) Tracks() []webrtc.TrackLocal { return nil }

func (c *fakeCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeCapture) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestLinkOffererFlow(t *testing.T) {
	sig := newFakeSignaler()
	tr := newFakeTransport("r1")
	link := newPeerLink("r1", tr)

	if err := link.SendOffer(sig); err != nil {
		t.Fatal(err)
	}
	if link.State() != LinkOfferSent {
		t.Fatalf("state = %s, want offer_sent", link.State())
	}
	sent := sig.sentEvents()
	if len(sent) != 1 {
		t.Fatalf("sent %d events, want 1", len(sent))
	}
	offer, ok := sent[0].(protocol.Offer)
	if !ok || offer.Target != "r1" {
		t.Fatalf("sent %+v, want offer targeting r1", sent[0])
	}

	if err := link.AcceptAnswer(json.RawMessage(`{"type":"answer"}`)); err != nil {
		t.Fatal(err)
	}
	if link.State() != LinkConnected {
		t.Fatalf("state = %s, want connected", link.State())
	}
}

func TestLinkAnswererFlow(t *testing.T) {
	sig := newFakeSignaler()
	tr := newFakeTransport("r1")
	link := newPeerLink("r1", tr)

	if err := link.AcceptOffer(sig, json.RawMessage(`{"type":"offer"}`)); err != nil {
		t.Fatal(err)
	}
	if link.State() != LinkAnswerExchanged {
		t.Fatalf("state = %s, want answer_exchanged", link.State())
	}
	sent := sig.sentEvents()
	if len(sent) != 1 {
		t.Fatalf("sent %d events, want 1", len(sent))
	}
	answer, ok := sent[0].(protocol.Answer)
	if !ok || answer.Target != "r1" {
		t.Fatalf("sent %+v, want answer targeting r1", sent[0])
	}

	// The answerer learns about connectivity only from the transport.
	link.markConnected()
	if link.State() != LinkConnected {
		t.Fatalf("state = %s, want connected", link.State())
	}
}

func TestLinkSecondOfferRefused(t *testing.T) {
	sig := newFakeSignaler()
	link := newPeerLink("r1", newFakeTransport("r1"))

	if err := link.SendOffer(sig); err != nil {
		t.Fatal(err)
	}
	if err := link.SendOffer(sig); err == nil {
		t.Fatal("second offer from the same link accepted")
	}
}

func TestLinkStrayAnswerIgnored(t *testing.T) {
	link := newPeerLink("r1", newFakeTransport("r1"))

	// Never offered, so an answer has nothing to complete. Dropping it must
	// not error and must not move the state machine.
	if err := link.AcceptAnswer(json.RawMessage(`{}`)); err != nil {
		t.Fatal(err)
	}
	if link.State() != LinkCreated {
		t.Fatalf("state = %s, want created", link.State())
	}
}

func TestLinkOfferSendFailureKeepsState(t *testing.T) {
	sig := newFakeSignaler()
	sig.sendErr = errors.New("connection lost")
	link := newPeerLink("r1", newFakeTransport("r1"))

	if err := link.SendOffer(sig); err == nil {
		t.Fatal("send failure not surfaced")
	}
	if link.State() != LinkCreated {
		t.Fatalf("state = %s, want created after failed send", link.State())
	}
}

func TestLinkCloseIsIdempotent(t *testing.T) {
	tr := newFakeTransport("r1")
	link := newPeerLink("r1", tr)

	link.Close()
	link.Close()

	if tr.closes() != 1 {
		t.Fatalf("transport closed %d times, want 1", tr.closes())
	}
	if link.State() != LinkClosed {
		t.Fatalf("state = %s, want closed", link.State())
	}
}

func TestLinkCandidateAfterCloseDropped(t *testing.T) {
	tr := newFakeTransport("r1")
	link := newPeerLink("r1", tr)
	link.Close()

	if err := link.AddCandidate(json.RawMessage(`{}`)); err != nil {
		t.Fatal(err)
	}
	if tr.candidateCount() != 0 {
		t.Fatal("candidate applied to a closed link")
	}
}
