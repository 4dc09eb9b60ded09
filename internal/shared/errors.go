package shared

import "errors"

var (
	ErrNotOpen       = errors.New("connection not open")
	ErrAlreadyOpen   = errors.New("connection already open")
	ErrCaptureActive = errors.New("capture already active")
)

// Kind classifies a failure for the UI collaborator. Every failure path in
// the client degrades to an Error event carrying one of these kinds.
type Kind string

const (
	KindTransport   Kind = "transport"
	KindProtocol    Kind = "protocol"
	KindResource    Kind = "resource"
	KindPlayback    Kind = "playback"
	KindApplication Kind = "application"
)

func (k Kind) String() string {
	return string(k)
}
