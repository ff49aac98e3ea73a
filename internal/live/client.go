package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/VpkPrasanna/deepgram-go/internal/config"
)

// Client manages one live transcription session: it owns the websocket,
// runs the listen and keepalive loops, and dispatches typed events to
// subscribers. A Client holds at most one session at a time.
type Client struct {
	cfg    *config.ClientOptions
	logger *slog.Logger

	endpoint string
	wsURL    string

	// Socket handle. Absent before Start and after shutdown; cleared as
	// the final shutdown step so repeated shutdowns are no-ops.
	mu   sync.RWMutex
	conn *websocket.Conn

	// writeMu serializes frame writes; the websocket allows only one
	// concurrent writer.
	writeMu sync.Mutex

	// exiting is the shared exit latch. It only ever transitions
	// false -> true during a session; Start resets it for a new session.
	exiting atomic.Bool

	// shutdownMu serializes the shared shutdown sequence.
	shutdownMu sync.Mutex

	dispatch *dispatcher

	// extra is the caller context captured at Start and forwarded,
	// unchanged, to every dispatched handler call.
	extra   map[string]any
	members map[string]any

	sessionID string

	listenDone    chan struct{}
	keepaliveDone chan struct{}

	errMu    sync.Mutex
	fatalErr error

	// Overridable in tests.
	tick  time.Duration
	grace time.Duration
}

// StartRequest carries the per-session inputs to Start.
type StartRequest struct {
	// Options are structured transcription options; they are validated
	// with Check before any network activity. Mutually exclusive with
	// RawOptions, which wins when Options is nil.
	Options    *config.LiveOptions
	RawOptions map[string]string

	// Addons are merged into the options; addons win on key collision.
	Addons map[string]string

	// Headers are merged over the configured headers; call-supplied
	// values win on key collision.
	Headers http.Header

	// Members are ad-hoc values attached to the client for the session,
	// readable via Member.
	Members map[string]any

	// Extra is free-form context forwarded to every event dispatch.
	Extra map[string]any
}

// NewClient creates a live transcription client. cfg is required.
func NewClient(cfg *config.ClientOptions, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	if logger == nil {
		logger = slog.Default()
	}

	wsURL, err := websocketURL(cfg.URL, defaultEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoConfig, err)
	}

	return &Client{
		cfg:      cfg,
		logger:   logger,
		endpoint: defaultEndpoint,
		wsURL:    wsURL,
		dispatch: newDispatcher(),
		tick:     tickInterval,
		grace:    shutdownGrace,
	}, nil
}

// On registers a handler for an event kind. Handlers for the same kind
// run in registration order. Unknown kinds and nil handlers are ignored.
func (c *Client) On(kind EventKind, h Handler) {
	c.dispatch.on(kind, h)
}

// Start opens the websocket session: it validates and merges options,
// dials the live endpoint, spawns the listen loop and (if the keepalive
// option is enabled) the keepalive loop, and dispatches an Open event
// before returning.
//
// Connect failures leave no partial state: no socket, no loops, no Open
// event. They report (false, nil) unless termination_exception_connect
// is enabled, in which case the dial error is returned as well.
func (c *Client) Start(ctx context.Context, req StartRequest) (bool, error) {
	options := make(map[string]string)
	if req.Options != nil {
		if err := req.Options.Check(); err != nil {
			c.logger.Error("transcription options check failed", "error", err)
			return false, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}
		options = req.Options.ToMap()
	} else {
		for k, v := range req.RawOptions {
			options[k] = v
		}
	}
	// Addons win on collision.
	for k, v := range req.Addons {
		options[k] = v
	}

	// Call-supplied headers win over configured ones.
	headers := c.cfg.HTTPHeader()
	for k, values := range req.Headers {
		headers.Del(k)
		for _, v := range values {
			headers.Add(k, v)
		}
	}

	target, err := appendQueryParams(c.wsURL, options)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	c.extra = cloneContext(req.Extra)
	c.members = req.Members

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, target, headers)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.logger.Error("connect failed", "url", c.wsURL, "status", status, "error", err)
		if c.cfg.Enabled(config.OptionTerminationExceptionConnect) {
			return false, err
		}
		return false, nil
	}

	// Reply to server pings so idle sessions stay alive.
	conn.SetPingHandler(func(data string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(controlWriteWait),
		)
	})

	c.exiting.Store(false)
	c.setSocket(conn)
	c.sessionID = uuid.NewString()

	c.listenDone = make(chan struct{})
	go c.listen()

	if c.cfg.Enabled(config.OptionKeepalive) {
		c.logger.Info("keepalive is enabled")
		c.keepaliveDone = make(chan struct{})
		go c.keepAlive()
	} else {
		c.keepaliveDone = nil
	}

	c.dispatch.emit(&OpenResponse{Type: EventOpen}, c.extra)

	c.logger.Info("session started", "session_id", c.sessionID)
	return true, nil
}

// listen pulls frames off the socket, classifies them, and dispatches
// typed events in arrival order. Every fatal error funnels through the
// shared shutdown sequence.
func (c *Client) listen() {
	defer close(c.listenDone)
	logger := c.logger.With("loop", "listen")

	for {
		if c.exiting.Load() {
			logger.Debug("exit latch set, stopping")
			return
		}

		conn := c.socket()
		if conn == nil {
			logger.Debug("socket absent, stopping")
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			// The shutdown sequence closes the socket out from under a
			// blocked read; that is not a failure.
			if c.exiting.Load() {
				logger.Debug("read interrupted by shutdown")
				return
			}
			c.handleFailure(logger, "listen", err)
			return
		}

		if len(message) == 0 {
			continue
		}

		ev, perr := c.parseEvent(message)
		if perr != nil {
			c.handleFailure(logger, "listen", perr)
			return
		}

		c.dispatch.emit(ev, c.extra)
	}
}

// keepAlive ticks once per tick interval and sends a KeepAlive frame on
// every keepaliveCadence-th tick, plus a websocket ping on every
// pingCadence-th tick. Failure handling mirrors the listen loop.
func (c *Client) keepAlive() {
	defer close(c.keepaliveDone)
	logger := c.logger.With("loop", "keepalive")

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	counter := 0
	for range ticker.C {
		counter++

		if c.exiting.Load() {
			logger.Debug("exit latch set, stopping")
			return
		}

		conn := c.socket()
		if conn == nil {
			logger.Debug("socket absent, stopping")
			return
		}

		if counter%keepaliveCadence == 0 {
			logger.Debug("sending KeepAlive")
			if err := c.write(conn, websocket.TextMessage, keepAliveFrame); err != nil {
				if c.exiting.Load() || classify(err) == failureClean {
					logger.Debug("keepalive send after close", "error", err)
					return
				}
				c.handleFailure(logger, "keepalive", err)
				return
			}
		}

		if counter%pingCadence == 0 {
			deadline := time.Now().Add(controlWriteWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				logger.Debug("ping failed", "error", err)
			}
		}
	}
}

// parseEvent decodes an inbound frame into its typed event. Frames with
// an unrecognized type become Unhandled events carrying the raw text.
func (c *Client) parseEvent(message []byte) (Event, error) {
	var envelope struct {
		Type EventKind `json:"type"`
	}
	if err := json.Unmarshal(message, &envelope); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	var ev Event
	switch envelope.Type {
	case EventOpen:
		ev = &OpenResponse{}
	case EventTranscript:
		ev = &TranscriptResponse{}
	case EventMetadata:
		ev = &MetadataResponse{}
	case EventSpeechStarted:
		ev = &SpeechStartedResponse{}
	case EventUtteranceEnd:
		ev = &UtteranceEndResponse{}
	case EventClose:
		ev = &CloseResponse{}
	case EventError:
		ev = &ErrorResponse{}
	default:
		c.logger.Warn("unknown frame type", "type", envelope.Type)
		return &UnhandledResponse{Type: EventUnhandled, Raw: string(message)}, nil
	}

	if err := json.Unmarshal(message, ev); err != nil {
		return nil, fmt.Errorf("decode %s frame: %w", envelope.Type, err)
	}
	return ev, nil
}

// handleFailure is the shared fatal path for both loops: classify, emit
// exactly one Error event, run the shutdown sequence, and record the
// terminal error when the termination_exception option asks for it.
func (c *Client) handleFailure(logger *slog.Logger, scope string, err error) {
	var resp *ErrorResponse
	switch classify(err) {
	case failureClean:
		logger.Debug("connection closed cleanly", "error", err)
		return
	case failureClosed:
		resp = &ErrorResponse{
			Type:        EventError,
			Description: "connection closed in " + scope,
			Message:     err.Error(),
			Variant:     "ConnectionClosed",
		}
	case failureTransport:
		resp = &ErrorResponse{
			Type:        EventError,
			Description: "transport error in " + scope,
			Message:     err.Error(),
			Variant:     "TransportError",
		}
	default:
		resp = &ErrorResponse{
			Type:        EventError,
			Description: "unexpected error in " + scope,
			Message:     err.Error(),
			Variant:     "Exception",
		}
	}

	logger.Error(resp.Description, "error", err)
	c.dispatch.emit(resp, c.extra)
	c.signalExit()

	if c.cfg.Enabled(config.OptionTerminationException) {
		c.recordErr(err)
	}
}

// Send writes a binary frame (audio) to the session.
//
// The boolean reports success; a clean-close failure counts as success
// for idempotent callers. The error is non-nil only when the
// termination_exception_send option is enabled.
func (c *Client) Send(data []byte) (bool, error) {
	return c.send(websocket.BinaryMessage, data)
}

// SendText writes a text frame to the session. Semantics match Send.
func (c *Client) SendText(data []byte) (bool, error) {
	return c.send(websocket.TextMessage, data)
}

func (c *Client) send(messageType int, data []byte) (bool, error) {
	if c.exiting.Load() {
		c.logger.Debug("send skipped, shutdown in progress")
		return false, nil
	}

	conn := c.socket()
	if conn == nil {
		c.logger.Debug("send skipped, no socket")
		return false, nil
	}

	err := c.write(conn, messageType, data)
	if err == nil {
		return true, nil
	}

	ok := classify(err) == failureClean
	if ok {
		c.logger.Debug("send on closing connection", "error", err)
	} else {
		c.logger.Error("send failed", "error", err)
	}

	if c.cfg.Enabled(config.OptionTerminationExceptionSend) {
		return ok, err
	}
	return ok, nil
}

func (c *Client) write(conn *websocket.Conn, messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(messageType, data)
}

// Finalize flushes the transcription stream by sending a Finalize frame.
func (c *Client) Finalize() (bool, error) {
	if c.exiting.Load() {
		c.logger.Debug("finalize skipped, shutdown in progress")
		return false, nil
	}
	if c.socket() == nil {
		return true, nil
	}
	return c.send(websocket.TextMessage, finalizeFrame)
}

// Finish stops the session: it runs the shared shutdown sequence and
// waits for both loops to terminate. It returns false if no session was
// ever started or a loop failed to stop within the wait bound.
func (c *Client) Finish() bool {
	started := c.listenDone != nil

	c.signalExit()

	ok := started
	if c.keepaliveDone != nil {
		select {
		case <-c.keepaliveDone:
		case <-time.After(finishWait):
			c.logger.Warn("keepalive loop did not stop in time")
			ok = false
		}
	}
	if c.listenDone != nil {
		select {
		case <-c.listenDone:
		case <-time.After(finishWait):
			c.logger.Warn("listen loop did not stop in time")
			ok = false
		}
	}

	if ok {
		c.logger.Info("session finished")
	}
	return ok
}

// signalExit is the shared shutdown sequence. Each step is best-effort.
// Clearing the socket handle as the last destructive step makes the
// sequence idempotent: a second call sees no socket and skips the frame,
// the grace wait, and the transport close. The Close event is dispatched
// after shutdownMu is released so a Close handler may itself call Finish
// without deadlocking.
func (c *Client) signalExit() {
	c.shutdownMu.Lock()

	conn := c.socket()

	if conn != nil {
		c.logger.Debug("sending CloseStream")
		if _, err := c.send(websocket.TextMessage, closeStreamFrame); err != nil {
			c.logger.Error("CloseStream send failed", "error", err)
		}

		// Give the CloseStream frame time to flush before the latch
		// short-circuits in-flight sends.
		time.Sleep(c.grace)
	}

	c.exiting.Store(true)

	if conn != nil {
		deadline := time.Now().Add(controlWriteWait)
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			deadline,
		)
		if err := conn.Close(); err != nil {
			c.logger.Error("transport close failed", "error", err)
		}
	}

	c.clearSocket()
	c.shutdownMu.Unlock()

	c.dispatch.emit(&CloseResponse{Type: EventClose}, c.extra)
}

// SessionID returns the identifier generated for the current session,
// or "" before the first successful Start.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Member returns a value attached via StartRequest.Members.
func (c *Client) Member(name string) (any, bool) {
	v, ok := c.members[name]
	return v, ok
}

// Err returns the terminal loop failure recorded when the
// termination_exception option is enabled, nil otherwise.
func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.fatalErr
}

func (c *Client) recordErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.fatalErr == nil {
		c.fatalErr = err
	}
}

func (c *Client) socket() *websocket.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

func (c *Client) setSocket(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) clearSocket() {
	c.setSocket(nil)
}

func cloneContext(extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}
