package app

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/theatre-reservation-system/internal/auth"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	"golang.org/x/time/rate"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// logRequest attaches a logger carrying the request attributes to the
// request context.
func (app *Application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := app.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"uri", r.URL.RequestURI(),
		)

		next.ServeHTTP(w, app.contextSetLogger(r, logger))
	})
}

// authenticate resolves the caller from a bearer access token or, failing
// that, from the session. A malformed or expired token is rejected outright
// rather than falling back to the session.
func (app *Application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var identity domain.Identity

		authorizationHeader := r.Header.Get("Authorization")

		if authorizationHeader != "" {
			w.Header().Add("Vary", "Authorization")

			scheme, token, ok := strings.Cut(authorizationHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				app.invalidTokenResponse(w, r)
				return
			}

			claims, err := app.tokens.Parse(token, auth.AccessTokenType)
			if err != nil {
				app.contextGetLogger(r).Warn("rejected bearer token", "error", err)
				app.invalidTokenResponse(w, r)
				return
			}

			identity = claims.Identity()
		} else {
			identity.UserID = app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String())
			identity.IsStaff = app.sessionManager.GetBool(r.Context(), SessionKeyIsStaff.String())
		}

		r = app.contextSetIdentity(r, identity)

		if identity.UserID != 0 {
			r = app.contextSetLogger(r, app.contextGetLogger(r).With("user_id", identity.UserID))
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.contextGetIdentity(r).UserID == 0 {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireStaff(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if !app.contextGetIdentity(r).IsStaff {
			app.forbiddenResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	}

	return app.requireAuthentication(http.HandlerFunc(fn))
}

func (app *Application) rateLimit(next http.Handler) http.Handler {
	if app.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			var addrErr *net.AddrError
			if !errors.As(err, &addrErr) {
				app.serverErrorResponse(w, r, err)
				return
			}

			// RealIP leaves a bare address without a port
			ip = r.RemoteAddr
		}

		if !app.limiter.allow(ip) {
			app.rateLimitExceededResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client address. Buckets idle for
// more than three minutes are dropped.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	rps     rate.Limit
	burst   int
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	l := &clientLimiter{
		clients: make(map[string]*client),
		rps:     rate.Limit(rps),
		burst:   burst,
	}

	go func() {
		for {
			time.Sleep(time.Minute)
			l.evict(3 * time.Minute)
		}
	}()

	return l
}

func (l *clientLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, found := l.clients[ip]
	if !found {
		c = &client{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = c
	}

	c.lastSeen = time.Now()

	return c.limiter.Allow()
}

func (l *clientLimiter) evict(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, c := range l.clients {
		if time.Since(c.lastSeen) > idle {
			delete(l.clients, ip)
		}
	}
}
