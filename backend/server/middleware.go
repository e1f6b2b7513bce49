package server

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/time/rate"

	"easedrop/backend/utils"
	"easedrop/shared/constants"
)

type Visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var visitors = make(map[[32]byte]*Visitor)
var mu sync.Mutex

// getVisitor checks to see if an IP address is associated with a rate
// limiter, and returns it if so. If not, it creates a new entry in the
// visitors map associating the address with a new rate limiter.
func getVisitor(identifier string, path string) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	idHash := blake2b.Sum256([]byte(identifier + path))
	visitor, exists := visitors[idHash]
	if !exists {
		limit := rate.Every(time.Second * constants.LimiterSeconds)
		limiter := rate.NewLimiter(limit, constants.LimiterAttempts)
		visitors[idHash] = &Visitor{limiter, time.Now()}
		return limiter
	}

	visitor.lastSeen = time.Now()
	return visitor.limiter
}

// LimiterMiddleware restricts requests to a particular route to prevent
// abuse of a handler function.
func LimiterMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ip, err := utils.GetReqSource(req)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		limiter := getVisitor(ip, req.URL.Path)
		if limiter.Allow() {
			next.ServeHTTP(w, req)
			return
		}

		http.Error(
			w,
			"Too many requests from this IP address -- please wait and try again",
			http.StatusTooManyRequests)
	}
}

// ManageLimiters removes an ip->visitor pairing from the visitors map if
// they haven't repeated a limiter-enabled request recently.
func ManageLimiters() {
	mu.Lock()
	for ip, v := range visitors {
		if time.Since(v.lastSeen) > time.Minute {
			delete(visitors, ip)
		}
	}
	mu.Unlock()
}
