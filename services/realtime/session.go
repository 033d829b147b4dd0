package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// maxInboundMessage bounds client frames; the channel is push-only.
const maxInboundMessage = 512

const DefaultSendBuffer = 256

type SessionOptions struct {
	SendBuffer   int
	PingInterval time.Duration
	WriteTimeout time.Duration
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.SendBuffer <= 0 {
		o.SendBuffer = DefaultSendBuffer
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	return o
}

// WSSession is a Session backed by a websocket connection. All writes happen
// on a single goroutine started by Run.
type WSSession struct {
	id     string
	userID string
	wc     *websocket.Conn
	send   chan Event
	done   chan struct{}
	once   sync.Once
	opts   SessionOptions
	logger *zap.Logger
}

func NewWSSession(wc *websocket.Conn, userID string, opts SessionOptions, logger *zap.Logger) *WSSession {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	return &WSSession{
		id:     id,
		userID: userID,
		wc:     wc,
		send:   make(chan Event, opts.SendBuffer),
		done:   make(chan struct{}),
		opts:   opts,
		logger: logger.With(zap.String("sessionId", id), zap.String("userId", userID)),
	}
}

func (s *WSSession) ID() string     { return s.id }
func (s *WSSession) UserID() string { return s.userID }

func (s *WSSession) Send(e Event) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.send <- e:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrSessionBacklogged
	}
}

func (s *WSSession) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *WSSession) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Run serves the connection until the client goes away or Close is called.
func (s *WSSession) Run() error {
	go s.write()
	err := s.read()
	s.Close()
	return err
}

func (s *WSSession) read() error {
	s.wc.SetReadLimit(maxInboundMessage)
	deadline := 2 * s.opts.PingInterval
	_ = s.wc.SetReadDeadline(time.Now().Add(deadline))
	s.wc.SetPongHandler(func(string) error {
		return s.wc.SetReadDeadline(time.Now().Add(deadline))
	})
	for {
		if _, _, err := s.wc.ReadMessage(); err != nil {
			if s.closed() {
				return nil
			}
			var cerr *websocket.CloseError
			if errors.As(err, &cerr) {
				return nil // client disconnected
			}
			return err
		}
	}
}

func (s *WSSession) write() {
	t := time.NewTicker(s.opts.PingInterval)
	defer func() {
		t.Stop()
		s.wc.Close()
	}()
	for {
		select {
		case e := <-s.send:
			_ = s.wc.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := s.wc.WriteJSON(e); err != nil {
				s.logger.Debug("websocket write failed", zap.String("event", e.Name), zap.Error(err))
				s.Close()
				return
			}
		case <-t.C:
			_ = s.wc.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			if err := s.wc.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			_ = s.wc.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
			_ = s.wc.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
