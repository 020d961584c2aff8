package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/bufbuild/connect-go"
	"github.com/google/uuid"
	"github.com/stealthrocket/dawnwire/internal/wire"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	// ExchangeProcedure is the connect procedure carrying commands. The
	// request holds the commands of the client, the response the return
	// commands the server produced since the previous exchange.
	ExchangeProcedure = "/dawnwire.v1.WireService/Exchange"
	// SessionHeader identifies the connection an exchange belongs to.
	SessionHeader = "Dawnwire-Session"
	// CloseHeader marks the last exchange of a session. The server handles
	// the commands of the request, then releases the session.
	CloseHeader = "Dawnwire-Close"
)

// rawCodec passes command bytes through unchanged.
type rawCodec struct{}

func (rawCodec) Name() string { return "raw" }

func (rawCodec) Marshal(v any) ([]byte, error) {
	b, ok := v.(*[]byte)
	if !ok {
		return nil, fmt.Errorf("raw codec cannot marshal %T", v)
	}
	return *b, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	b, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("raw codec cannot unmarshal into %T", v)
	}
	*b = append((*b)[:0], data...)
	return nil
}

type httpSession struct {
	mu      sync.Mutex
	handler wire.CommandHandler
	out     *Buffer
	in      []byte
}

// HTTPHandler serves the server ends of HTTP connections. Each session id
// sent by clients gets its own server, created by accept on the first
// exchange.
type HTTPHandler struct {
	handler  http.Handler
	accept   Accept
	limit    int
	mu       sync.Mutex
	sessions map[uuid.UUID]*httpSession
}

// NewHTTPHandler creates a handler serving HTTP/2 with or without TLS.
func NewHTTPHandler(limit int, accept Accept) *HTTPHandler {
	h := &HTTPHandler{
		accept:   accept,
		limit:    limit,
		sessions: make(map[uuid.UUID]*httpSession),
	}
	mux := http.NewServeMux()
	mux.Handle(ExchangeProcedure, connect.NewUnaryHandler(ExchangeProcedure, h.exchange,
		connect.WithCodec(rawCodec{}),
	))
	h.handler = h2c.NewHandler(mux, &http2.Server{})
	return h
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// Sessions returns the number of open sessions.
func (h *HTTPHandler) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *HTTPHandler) session(id uuid.UUID, create bool) (*httpSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[id]; ok || !create {
		return s, nil
	}
	s := &httpSession{out: NewBuffer(h.limit)}
	handler, err := h.accept(s.out)
	if err != nil {
		return nil, err
	}
	s.handler = handler
	h.sessions[id] = s
	wire.Logger().Info("http session established", slog.String("session", id.String()))
	return s, nil
}

func (h *HTTPHandler) drop(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[id]; ok {
		delete(h.sessions, id)
		closeHandler(s.handler)
	}
}

// Close ends every open session.
func (h *HTTPHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		delete(h.sessions, id)
		closeHandler(s.handler)
	}
	return nil
}

func (h *HTTPHandler) exchange(ctx context.Context, req *connect.Request[[]byte]) (*connect.Response[[]byte], error) {
	id, err := uuid.Parse(req.Header().Get(SessionHeader))
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid session id: %w", err))
	}
	closing := req.Header().Get(CloseHeader) != ""
	s, err := h.session(id, !closing || len(*req.Msg) != 0)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if s == nil {
		return connect.NewResponse(new([]byte)), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.in = append(s.in, *req.Msg...)
	rest, err := handle(s.handler, s.in)
	if err == nil {
		s.in = append(s.in[:0], rest...)
		err = flush(s.handler)
	}
	if err != nil {
		h.drop(id)
		wire.Logger().Error("http session terminated", slog.String("session", id.String()), slog.Any("err", err))
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}
	if closing {
		h.drop(id)
		wire.Logger().Info("http session closed", slog.String("session", id.String()))
	}
	out := s.out.Take()
	return connect.NewResponse(&out), nil
}

// HTTPClient is the client end of an HTTP connection.
//
// Flush sends the buffered commands in an exchange; return commands come back
// in the response and are held until Poll. Poll exchanges an empty request
// when nothing was received yet, to collect asynchronous completions. Close
// sends the last exchange, which releases the session on the server.
type HTTPClient struct {
	client  *connect.Client[[]byte, []byte]
	session uuid.UUID
	out     *Buffer
	in      []byte
	err     error
	polling bool
}

var _ Transport = (*HTTPClient)(nil)

// DialHTTP creates a client end exchanging commands with the server at
// address over cleartext HTTP/2.
func DialHTTP(address string, limit int) *HTTPClient {
	httpClient := &http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}
	return &HTTPClient{
		client:  connect.NewClient[[]byte, []byte](httpClient, "http://"+address+ExchangeProcedure, connect.WithCodec(rawCodec{})),
		session: uuid.New(),
		out:     NewBuffer(limit),
	}
}

// Session returns the session id of the client.
func (c *HTTPClient) Session() uuid.UUID { return c.session }

func (c *HTTPClient) GetCmdSpace(size int) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.out.GetCmdSpace(size)
}

func (c *HTTPClient) MaximumAllocationSize() int { return c.out.MaximumAllocationSize() }

func (c *HTTPClient) Flush() error {
	if c.err != nil {
		return c.err
	}
	if c.out.Len() == 0 {
		return nil
	}
	return c.roundTrip(c.out.Take())
}

func (c *HTTPClient) roundTrip(b []byte) error {
	return c.exchange(b, false)
}

func (c *HTTPClient) exchange(b []byte, closing bool) error {
	req := connect.NewRequest(&b)
	req.Header().Set(SessionHeader, c.session.String())
	if closing {
		req.Header().Set(CloseHeader, "1")
	}
	res, err := c.client.CallUnary(context.Background(), req)
	if err != nil {
		c.err = err
		return err
	}
	c.in = append(c.in, *res.Msg...)
	return nil
}

// Poll hands the return commands received so far to handler, including
// those received by exchanges the handler makes. Polling from within the
// handler has no effect.
func (c *HTTPClient) Poll(handler wire.CommandHandler) error {
	if c.err != nil {
		return c.err
	}
	if c.polling {
		return nil
	}
	c.polling = true
	defer func() { c.polling = false }()

	if len(c.in) == 0 {
		if err := c.roundTrip(nil); err != nil {
			return err
		}
	}
	for len(c.in) > 0 {
		in := c.in
		c.in = nil
		rest, err := handle(handler, in)
		if err != nil {
			return err
		}
		received := c.in
		c.in = append(append([]byte(nil), rest...), received...)
		if len(received) == 0 {
			break
		}
	}
	return nil
}

// Close sends the buffered commands in a last exchange which ends the
// session. Return commands in the response are discarded.
func (c *HTTPClient) Close() error {
	if errors.Is(c.err, ErrClosed) {
		return ErrClosed
	}
	var err error
	if c.err == nil {
		err = c.exchange(c.out.Take(), true)
	}
	c.err = ErrClosed
	c.in = nil
	return err
}
