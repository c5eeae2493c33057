//go:build !linux || !cgo

package mesh

// CaptureMicrophone needs the V4L2/malgo driver stack; outside linux the
// terminal client cannot capture and a join fails with a clear notice.
func CaptureMicrophone() (Capture, error) {
	return nil, ErrCaptureUnavailable
}
