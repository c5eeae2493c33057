//go:build linux && cgo

package mesh

import (
	"fmt"

	"github.com/pion/interceptor"
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/opus"
	_ "github.com/pion/mediadevices/pkg/driver/microphone"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

type micCapture struct {
	api    *webrtc.API
	stream mediadevices.MediaStream
}

// CaptureMicrophone opens the default microphone as a single opus track.
// Audio-only: voice rooms never carry video.
func CaptureMicrophone() (Capture, error) {
	opusParams, err := opus.NewParams()
	if err != nil {
		return nil, err
	}

	codecSelector := mediadevices.NewCodecSelector(
		mediadevices.WithAudioEncoders(&opusParams),
	)

	mediaEngine := &webrtc.MediaEngine{}
	codecSelector.Populate(mediaEngine)

	interceptorRegistry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, interceptorRegistry); err != nil {
		return nil, err
	}

	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(mediaEngine),
		webrtc.WithInterceptorRegistry(interceptorRegistry),
	)

	stream, err := mediadevices.GetUserMedia(mediadevices.MediaStreamConstraints{
		Audio: func(c *mediadevices.MediaTrackConstraints) {},
		Codec: codecSelector,
	})
	if err != nil {
		return nil, fmt.Errorf("microphone: %w", err)
	}

	for _, t := range stream.GetAudioTracks() {
		log.Info().Str("module", "mesh.capture").Str("track_id", t.ID()).Msg("microphone track opened")
	}
	return &micCapture{api: api, stream: stream}, nil
}

func (c *micCapture) API() *webrtc.API { return c.api }

func (c *micCapture) Tracks() []webrtc.TrackLocal {
	audio := c.stream.GetAudioTracks()
	out := make([]webrtc.TrackLocal, 0, len(audio))
	for _, t := range audio {
		out = append(out, t)
	}
	return out
}

func (c *micCapture) Close() error {
	var firstErr error
	for _, t := range c.stream.GetTracks() {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
