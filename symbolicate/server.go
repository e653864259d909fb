package symbolicate

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/stabletrace/errors"
	"github.com/wippyai/stabletrace/stacktrace"
)

// MaxTraceSize bounds the request body Handler accepts.
const MaxTraceSize = 1 << 20

// Handler symbolicates traces posted as base64url text and answers with
// the JSON form of SymbolicatedTrace.
type Handler struct {
	registry *Registry
}

// NewHandler creates a Handler backed by a registry.
func NewHandler(r *Registry) *Handler {
	return &Handler{registry: r}
}

type errorJSON struct {
	Error string `json:"error"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorJSON{Error: "method not allowed"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, MaxTraceSize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorJSON{Error: "trace too large"})
		return
	}

	trace, err := stacktrace.DecodeString(strings.TrimSpace(string(body)))
	if err != nil {
		Logger().Debug("reject trace", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: err.Error()})
		return
	}

	s, err := h.registry.Get(trace.Header)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsKind(err, errors.KindNotFound) {
			status = http.StatusNotFound
		}
		Logger().Warn("no symbolicator",
			zap.String("build", trace.Header.BuildKey()),
			zap.Int("status", status),
			zap.Error(err))
		writeJSON(w, status, errorJSON{Error: err.Error()})
		return
	}

	out := s.Symbolicate(trace)
	Logger().Debug("symbolicated trace",
		zap.String("build", trace.Header.BuildKey()),
		zap.Int("frames", len(out.Frames)))
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger().Debug("write response", zap.Error(err))
	}
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(errors.PhaseServe, errors.KindIO, err, "listen on "+addr)
	}
	return Serve(ctx, ln, h)
}

// Serve is ListenAndServe on an existing listener.
func Serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		Logger().Info("serving", zap.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return errors.Wrap(errors.PhaseServe, errors.KindIO, err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.PhaseServe, errors.KindIO, err, "shutdown")
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return errors.Wrap(errors.PhaseServe, errors.KindIO, err, "serve")
	}
	return nil
}
