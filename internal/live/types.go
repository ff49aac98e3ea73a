package live

import (
	"errors"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// Errors
var (
	ErrNoConfig       = errors.New("client options are required")
	ErrInvalidOptions = errors.New("invalid transcription options")
)

// Protocol constants.
const (
	// defaultEndpoint is the live transcription endpoint path.
	defaultEndpoint = "v1/listen"

	// tickInterval is the keepalive loop tick period.
	tickInterval = 1 * time.Second

	// keepaliveCadence sends one KeepAlive frame every N ticks.
	keepaliveCadence = 5

	// pingCadence sends one websocket ping control frame every N ticks.
	pingCadence = 20

	// shutdownGrace allows the CloseStream frame to flush before the
	// exit latch is set.
	shutdownGrace = 500 * time.Millisecond

	// handshakeTimeout bounds the websocket dial.
	handshakeTimeout = 10 * time.Second

	// controlWriteWait bounds control frame writes during shutdown.
	controlWriteWait = 1 * time.Second

	// finishWait bounds how long Finish waits for each loop to stop.
	finishWait = 5 * time.Second
)

// Outbound control frames.
var (
	keepAliveFrame   = []byte(`{"type":"KeepAlive"}`)
	finalizeFrame    = []byte(`{"type":"Finalize"}`)
	closeStreamFrame = []byte(`{"type":"CloseStream"}`)
)

// failureKind classifies a socket failure so every exit path shares the
// same taxonomy: clean close, abnormal close, transport-level error, or
// anything else.
type failureKind int

const (
	failureClean failureKind = iota
	failureClosed
	failureTransport
	failureGeneric
)

// classify maps a read/write error onto a failureKind. Close codes 1000
// (normal) and 1001 (going away) count as clean termination.
func classify(err error) failureKind {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		switch ce.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			return failureClean
		}
		return failureClosed
	}

	if errors.Is(err, net.ErrClosed) {
		return failureTransport
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return failureTransport
	}

	return failureGeneric
}
