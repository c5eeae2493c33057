package mesh

import (
	"errors"

	"github.com/pion/webrtc/v4"
)

// Capture is the scoped local audio resource. Acquired on join-call, released
// on every exit path, including a join that fails after acquisition.
type Capture interface {
	// API carries the media engine matching the captured tracks' codecs;
	// peer connections for these tracks must be built from it.
	API() *webrtc.API
	Tracks() []webrtc.TrackLocal
	Close() error
}

// CaptureFunc acquires the microphone. Implementations are platform-gated;
// tests substitute a fake.
type CaptureFunc func() (Capture, error)

var ErrCaptureUnavailable = errors.New("audio capture not available on this platform")
