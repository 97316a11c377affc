// Package rate_limiter applies a per-client token bucket to the API.
package rate_limiter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	clients = make(map[string]*clientLimiter)
	mu      sync.Mutex
)

func getClient(key string) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	c, exists := clients[key]
	if !exists {
		limiter := rate.NewLimiter(10, 20) // 10 requests/sec, burst of 20
		clients[key] = &clientLimiter{limiter, time.Now()}
		return limiter
	}

	c.lastSeen = time.Now()
	return c.limiter
}

// Middleware rejects clients that exceed their bucket with 429.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			key = r.RemoteAddr
		}
		if !getClient(key).Allow() {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartCleanupLoop drops clients idle for more than five minutes.
func StartCleanupLoop() {
	for {
		time.Sleep(time.Minute)
		mu.Lock()
		for key, c := range clients {
			if time.Since(c.lastSeen) > 5*time.Minute {
				delete(clients, key)
			}
		}
		mu.Unlock()
	}
}

// Reset clears all tracked clients.
func Reset() {
	mu.Lock()
	clients = make(map[string]*clientLimiter)
	mu.Unlock()
}
