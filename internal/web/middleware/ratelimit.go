package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// ClientRateLimit gives every client IP its own token bucket of rps with burst.
// Buckets are kept for the maxClients most recently seen addresses.
// Run it after chi's RealIP so proxied clients are told apart.
func ClientRateLimit(rps float64, burst, maxClients int, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	limiters, err := lru.New[string, *rate.Limiter](max(maxClients, 1))
	if err != nil {
		panic(err)
	}

	var mu sync.Mutex
	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		if l, ok := limiters.Get(key); ok {
			return l
		}
		l := rate.NewLimiter(rate.Limit(rps), burst)
		limiters.Add(key, l)
		return l
	}

	retryAfter := strconv.Itoa(max(int(1/rps), 1))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiterFor(clientKey(r)).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				onLimit(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
