package bearer

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ipvm-wg/go-ucan-agent/core/clock"
	"github.com/ipvm-wg/go-ucan-agent/ucan"
)

// Option is an option configuring the middleware.
type Option func(cfg *middlewareConfig)

type middlewareConfig struct {
	logger *slog.Logger
	clock  clock.Clock
	parse  []ucan.ParseOption
}

// WithLogger configures the logger rejected requests are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *middlewareConfig) {
		cfg.logger = l
	}
}

// WithClock sets the time source tokens are checked against.
func WithClock(c clock.Clock) Option {
	return func(cfg *middlewareConfig) {
		cfg.clock = c
	}
}

// WithParseOptions configures how tokens are parsed.
func WithParseOptions(opts ...ucan.ParseOption) Option {
	return func(cfg *middlewareConfig) {
		cfg.parse = opts
	}
}

type contextKey struct{}

// FromContext returns the bearer token the middleware accepted for the
// request.
func FromContext(ctx context.Context) (Decoded, bool) {
	d, ok := ctx.Value(contextKey{}).(Decoded)
	return d, ok
}

// Middleware requires every request to carry a valid bearer token. Requests
// without one get a 401. The decoded token is available to next through
// FromContext.
func Middleware(resolver ucan.Resolver, next http.Handler, options ...Option) http.Handler {
	cfg := middlewareConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.clock == nil {
		cfg.clock = clock.Real()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := Decode(FromHTTP(r.Header), cfg.parse...)
		if err != nil {
			cfg.logger.Warn("rejecting request", "path", r.URL.Path, "error", err)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ok, err := ucan.IsValidAt(d.UCAN, resolver, cfg.clock.Now())
		if err != nil {
			cfg.logger.Warn("rejecting request", "path", r.URL.Path, "ucan", d.UCAN.Link(), "error", err)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		if !ok {
			cfg.logger.Warn("rejecting request", "path", r.URL.Path, "ucan", d.UCAN.Link(), "error", "invalid token")
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		cfg.logger.Debug("accepted request", "path", r.URL.Path, "issuer", d.UCAN.Issuer().DID(), "missing", len(d.Missing))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, d)))
	})
}
