package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAudit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		handlerStatus int
		forwardedFor  string
		wantEvent     string
		wantIP        string
	}{
		{
			name:          "unauthorized logs security event with client IP",
			handlerStatus: http.StatusUnauthorized,
			forwardedFor:  "203.0.113.7",
			wantEvent:     "security_event",
			wantIP:        "203.0.113.7",
		},
		{
			name:          "forbidden logs security event",
			handlerStatus: http.StatusForbidden,
			wantEvent:     "security_event",
		},
		{
			name:          "rate limited logs violation with client IP",
			handlerStatus: http.StatusTooManyRequests,
			forwardedFor:  "198.51.100.9, 10.0.0.1",
			wantEvent:     "rate_limit_violation",
			wantIP:        "198.51.100.9",
		},
		{
			name:          "success logs nothing",
			handlerStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.WarnLevel)
			logger := zap.New(core)

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			req := httptest.NewRequest("GET", "/api/v1/brains", nil)
			req.RemoteAddr = "192.0.2.1:4242"
			if tt.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.forwardedFor)
			}
			rec := httptest.NewRecorder()

			Audit(logger)(handler).ServeHTTP(rec, req)

			if rec.Code != tt.handlerStatus {
				t.Errorf("Expected status %d, got %d", tt.handlerStatus, rec.Code)
			}

			if tt.wantEvent == "" {
				if logs.Len() != 0 {
					t.Errorf("Expected no audit logs, got %d", logs.Len())
				}
				return
			}

			entries := logs.FilterMessage(tt.wantEvent).All()
			if len(entries) != 1 {
				t.Fatalf("Expected one %q entry, got %d", tt.wantEvent, logs.Len())
			}
			if tt.wantIP != "" {
				fields := entries[0].ContextMap()
				if got, ok := fields["ip"].(string); !ok || got != tt.wantIP {
					t.Errorf("Expected ip %q, got %v", tt.wantIP, fields["ip"])
				}
			}
		})
	}
}
