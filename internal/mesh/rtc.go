package mesh

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// PeerTransport is what a link drives underneath: description exchange and
// candidate trickling. Payloads stay raw JSON end to end, the same bytes the
// relay carried.
type PeerTransport interface {
	CreateOffer() (json.RawMessage, error)
	ApplyOfferCreateAnswer(offer json.RawMessage) (json.RawMessage, error)
	ApplyAnswer(answer json.RawMessage) error
	AddCandidate(candidate json.RawMessage) error
	OnCandidate(func(json.RawMessage))
	OnConnected(func())
	OnClosed(func())
	Close()
}

type TransportFactory func(capture Capture, remote string) (PeerTransport, error)

type pionTransport struct {
	pc     *webrtc.PeerConnection
	remote string

	onCandidate func(json.RawMessage)
	onConnected func()
	onClosed    func()
}

func defaultRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
			{URLs: []string{"stun:stun1.l.google.com:19302"}},
		},
	}
}

// NewPeerTransport builds one pion connection from the capture's API and
// attaches the local tracks before any description exists, so both offer and
// answer carry the audio m-line.
func NewPeerTransport(capture Capture, remote string) (PeerTransport, error) {
	pc, err := capture.API().NewPeerConnection(defaultRTCConfig())
	if err != nil {
		return nil, err
	}
	t := &pionTransport{pc: pc, remote: remote}

	for _, track := range capture.Tracks() {
		if _, err := pc.AddTransceiverFromTrack(track, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionSendrecv,
		}); err != nil {
			_ = pc.Close()
			return nil, err
		}
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil || t.onCandidate == nil {
			return
		}
		raw, err := json.Marshal(c.ToJSON())
		if err != nil {
			log.Error().Err(err).Str("module", "mesh.rtc").Msg("marshal candidate")
			return
		}
		t.onCandidate(raw)
	})

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "mesh.rtc").Str("remote", remote).Str("state", s.String()).Msg("peer state")
		switch s {
		case webrtc.PeerConnectionStateConnected:
			if t.onConnected != nil {
				t.onConnected()
			}
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed:
			if t.onClosed != nil {
				t.onClosed()
			}
		}
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		log.Info().Str("module", "mesh.rtc").Str("remote", remote).Str("kind", track.Kind().String()).Msg("remote track")
		// Drain so SRTP keeps flowing; playback is the embedder's concern.
		for {
			if _, _, err := track.ReadRTP(); err != nil {
				return
			}
		}
	})

	return t, nil
}

func (t *pionTransport) CreateOffer() (json.RawMessage, error) {
	offer, err := t.pc.CreateOffer(nil)
	if err != nil {
		return nil, err
	}
	if err := t.pc.SetLocalDescription(offer); err != nil {
		return nil, err
	}
	return json.Marshal(offer)
}

func (t *pionTransport) ApplyOfferCreateAnswer(raw json.RawMessage) (json.RawMessage, error) {
	var offer webrtc.SessionDescription
	if err := json.Unmarshal(raw, &offer); err != nil {
		return nil, err
	}
	if err := t.pc.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	answer, err := t.pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}
	if err := t.pc.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	return json.Marshal(answer)
}

func (t *pionTransport) ApplyAnswer(raw json.RawMessage) error {
	var answer webrtc.SessionDescription
	if err := json.Unmarshal(raw, &answer); err != nil {
		return err
	}
	return t.pc.SetRemoteDescription(answer)
}

func (t *pionTransport) AddCandidate(raw json.RawMessage) error {
	var ci webrtc.ICECandidateInit
	if err := json.Unmarshal(raw, &ci); err != nil {
		return err
	}
	return t.pc.AddICECandidate(ci)
}

func (t *pionTransport) OnCandidate(fn func(json.RawMessage)) { t.onCandidate = fn }
func (t *pionTransport) OnConnected(fn func())                { t.onConnected = fn }
func (t *pionTransport) OnClosed(fn func())                   { t.onClosed = fn }

func (t *pionTransport) Close() {
	if err := t.pc.Close(); err != nil {
		log.Error().Err(err).Str("module", "mesh.rtc").Str("remote", t.remote).Msg("close error")
	}
}
