package chi

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// rateExemptPaths are routes that bypass rate limiting (health, metrics).
var rateExemptPaths = map[string]struct{}{
	"/":        {},
	"/health":  {},
	"/metrics": {},
}

// RateLimitMiddleware returns a per-client token bucket limiter keyed by
// remote IP. rps <= 0 disables limiting entirely.
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters[key]; ok {
			return l
		}
		l := rate.NewLimiter(rate.Limit(rps), burst)
		limiters[key] = l
		return l
	}

	return func(next http.Handler) http.Handler {
		if rps <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := rateExemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !limiterFor(host).Allow() {
				writeError(w, http.StatusTooManyRequests, "rate_limited",
					"Too many requests, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
