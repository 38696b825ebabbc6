package ratelimit

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Options configures the rate limit middleware
type Options struct {
	// LimitType selects the registered limit
	LimitType string
	// SkipLimitCheck bypasses the limiter for matching requests
	SkipLimitCheck func(r *http.Request) bool
}

// Middleware counts every request against the limit registered for
// opts.LimitType. Requests over the limit get 429 with Retry-After. When the
// store fails the request is let through.
func Middleware(service Service, logger zerolog.Logger, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if opts.SkipLimitCheck != nil && opts.SkipLimitCheck(r) {
				next.ServeHTTP(w, r)
				return
			}

			ip := realIP(r)
			log := logger.With().
				Str("requestId", middleware.GetReqID(r.Context())).
				Str("type", opts.LimitType).
				Str("remoteIP", ip).
				Logger()

			status, err := service.Allow(r.Context(), LimitKey{
				Type:     opts.LimitType,
				RemoteIP: ip,
				Endpoint: r.URL.Path,
			})
			writeHeaders(w.Header(), status)

			switch {
			case IsLimitExceeded(err):
				log.Warn().Str("path", r.URL.Path).Msg("rate limit exceeded")
				reject(w, status)
			case err != nil:
				log.Error().Err(err).Str("path", r.URL.Path).Msg("rate limit unavailable")
				next.ServeHTTP(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		}
		return http.HandlerFunc(fn)
	}
}

func writeHeaders(h http.Header, status *LimitStatus) {
	if status == nil || status.Limit.Rate == 0 {
		return
	}
	h.Set("RateLimit-Limit", strconv.Itoa(status.Limit.Rate))
	h.Set("RateLimit-Remaining", strconv.Itoa(status.Remaining))
	h.Set("RateLimit-Reset", strconv.FormatInt(status.Reset.Unix(), 10))
	if status.Limit.BurstSize > 0 {
		h.Set("RateLimit-Burst", strconv.Itoa(status.Limit.BurstSize))
	}
}

// retryAfter rounds the time left in the window up to whole seconds, at least one
func retryAfter(reset time.Time) int {
	secs := int(math.Ceil(time.Until(reset).Seconds()))
	return max(secs, 1)
}

func reject(w http.ResponseWriter, status *LimitStatus) {
	wait := 1
	if status != nil {
		wait = retryAfter(status.Reset)
	}

	w.Header().Set("Retry-After", strconv.Itoa(wait))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    ErrLimitExceeded.Code,
		"message": "Too many requests, retry after " + strconv.Itoa(wait) + " seconds",
	})
}

// realIP prefers X-Real-IP, then the first X-Forwarded-For hop, then the
// peer address
func realIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
