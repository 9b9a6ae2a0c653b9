package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	// CallbackPort is the fixed port of the local OAuth callback listener.
	// It must match the redirect URI registered with the Restream developer
	// portal exactly.
	CallbackPort = 3000

	// CallbackPath is the path component of the registered redirect URI.
	CallbackPath = "/oauth"
)

const callbackPage = "<html><body>Authorized. You can close your browser.</body></html>"

// CallbackResult carries the query parameters delivered by the provider's
// redirect.
type CallbackResult struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// IsError reports whether the provider redirected with an error instead of
// an authorization code.
func (r *CallbackResult) IsError() bool {
	return r.Error != ""
}

// CallbackServer is a transient local HTTP server that captures a single
// OAuth redirect and then shuts down. Only one acquisition can be in flight
// at a time because the listener occupies a fixed port.
type CallbackServer struct {
	port     int
	server   *http.Server
	listener net.Listener
	resultCh chan *CallbackResult
	errorCh  chan error
	once     sync.Once
}

// NewCallbackServer creates a callback server. Pass 0 to bind an ephemeral
// port (tests); production flows use CallbackPort.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:     port,
		resultCh: make(chan *CallbackResult, 1),
		errorCh:  make(chan error, 1),
	}
}

// Start binds the listener and begins serving. The server shuts down when
// the context is cancelled or after the first callback is processed.
func (s *CallbackServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start callback listener on %s: %w", addr, err)
	}
	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Wait blocks until the callback arrives, the server fails, or the context
// is done.
func (s *CallbackServer) Wait(ctx context.Context) (*CallbackResult, error) {
	select {
	case result := <-s.resultCh:
		return result, nil
	case err := <-s.errorCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	var handled bool
	s.once.Do(func() {
		handled = true
		s.processCallback(w, r)
	})
	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

// processCallback runs exactly once per server lifetime.
func (s *CallbackServer) processCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result := &CallbackResult{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprint(w, callbackPage)

	select {
	case s.resultCh <- result:
	default:
	}

	// Shutdown drains this in-flight response; it runs off the handler
	// goroutine so the write can complete.
	go s.Stop()
}

// Stop shuts the server down and releases the port. Safe to call more than
// once.
func (s *CallbackServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// Port returns the bound port.
func (s *CallbackServer) Port() int { return s.port }

// CallbackURL returns the local URL the provider redirects to.
func (s *CallbackServer) CallbackURL() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, CallbackPath)
}
