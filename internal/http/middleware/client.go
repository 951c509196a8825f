package middleware

import (
	"context"
	"docshare/internal/models"
	"net"
	"net/http"
	"strings"
)

const maxUserAgentLen = 500

// ClientInfo stores the caller's address and user agent for the audit trail.
func ClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := models.ClientInfo{
			IP:        clientIP(r),
			UserAgent: r.UserAgent(),
		}
		if len(info.UserAgent) > maxUserAgentLen {
			info.UserAgent = info.UserAgent[:maxUserAgentLen]
		}

		ctx := context.WithValue(r.Context(), models.ClientInfoContextKey, info)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
