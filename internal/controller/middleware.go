package controller

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type ctxKey int

const tokenKey ctxKey = iota

// RequireBearer rejects requests without a bearer token and stores the
// token in the request context.
func RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			writeAuthExpired(w)
			return
		}
		ctx := context.WithValue(r.Context(), tokenKey, strings.TrimSpace(parts[1]))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tokenFrom(r *http.Request) string {
	t, _ := r.Context().Value(tokenKey).(string)
	return t
}

// RateLimit allows perMinute requests per bearer token.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		clients = make(map[string]*client)
		mu      sync.Mutex
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := tokenFrom(r)

			mu.Lock()
			now := time.Now()
			for k, c := range clients {
				if now.Sub(c.lastSeen) > 10*time.Minute {
					delete(clients, k)
				}
			}
			cl, ok := clients[key]
			if !ok {
				cl = &client{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)}
				clients[key] = cl
			}
			cl.lastSeen = now
			mu.Unlock()

			if !cl.limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]any{
					"message": "Too many OTP requests. Please try again later.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
