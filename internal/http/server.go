package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	mlog "moneta/internal/log"
	"moneta/internal/metrics"
	"moneta/internal/middleware/ratelimit"
	"moneta/internal/middleware/security"
	"moneta/internal/middleware/trace"
	"moneta/internal/timezone"
)

// Options tune the optional parts of the middleware chain.
type Options struct {
	Logger  *mlog.Logger
	Metrics *metrics.Metrics
	// RateLimitPerMinute caps mutating requests per client; 0 disables it.
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, tz *timezone.Normalizer, opts Options) *Server {
	h := &handlers{svc: svc, tz: tz}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /balance", h.authed(h.getBalance))
	mux.HandleFunc("GET /overview", h.authed(h.getOverview))
	mux.HandleFunc("GET /activity", h.authed(h.recentActivity))

	mux.HandleFunc("POST /users", h.registerUser)
	mux.HandleFunc("GET /users/me", h.authed(h.getMe))

	mux.HandleFunc("GET /categories", h.authed(h.listCategories))
	mux.HandleFunc("POST /categories", h.authed(h.createCategory))
	mux.HandleFunc("GET /categories/{id}", h.authed(h.getCategory))
	mux.HandleFunc("PATCH /categories/{id}", h.authed(h.updateCategory))
	mux.HandleFunc("DELETE /categories/{id}", h.authed(h.deleteCategory))

	mux.HandleFunc("GET /entries/{kind}", h.authed(h.listEntries(h.listAll, false)))
	mux.HandleFunc("POST /entries/{kind}", h.authed(h.createEntry))
	mux.HandleFunc("GET /entries/{kind}/by-day", h.authed(h.listEntries(svc.Ledger.ListByDay, true)))
	mux.HandleFunc("GET /entries/{kind}/by-month", h.authed(h.listEntries(svc.Ledger.ListByMonth, true)))
	mux.HandleFunc("GET /entries/{kind}/{id}", h.authed(h.getEntry))
	mux.HandleFunc("PATCH /entries/{kind}/{id}", h.authed(h.updateEntry))
	mux.HandleFunc("DELETE /entries/{kind}/{id}", h.authed(h.deleteEntry))

	mux.HandleFunc("GET /budgets", h.authed(h.listActiveBudgets))
	mux.HandleFunc("POST /budgets", h.authed(h.createBudget))
	mux.HandleFunc("GET /budgets/{id}", h.authed(h.getBudget))
	mux.HandleFunc("PATCH /budgets/{id}", h.authed(h.updateBudget))
	mux.HandleFunc("DELETE /budgets/{id}", h.authed(h.deleteBudget))
	mux.HandleFunc("POST /budgets/{id}/refresh", h.authed(h.refreshBudget))

	s := &Server{}

	// Innermost first. Metrics must see the request the mux annotated with its pattern.
	var handler http.Handler = mux
	if opts.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
		handler = s.limiter.Middleware(rateLimitKey(security.NewClientIPResolver()))(handler)
	}
	if opts.Metrics != nil {
		handler = opts.Metrics.Middleware(handler)
	}
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = mlog.AccessLog(handler)
	handler = mlog.RequestIDMiddleware(trace.FromRequest)(handler)
	logger := opts.Logger
	if logger == nil {
		logger = mlog.FromContext(context.Background()).WithComponent(mlog.ComponentHTTP)
	}
	handler = mlog.Middleware(logger)(handler)
	handler = trace.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// rateLimitKey buckets callers by user when the gateway identified one, else by address.
func rateLimitKey(ips *security.ClientIPResolver) func(*http.Request) string {
	return func(r *http.Request) string {
		if id := r.Header.Get(userIDHeader); id != "" {
			return "user:" + id
		}
		return "ip:" + ips.ClientIP(r)
	}
}

// Shutdown stops the limiter sweep and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}
