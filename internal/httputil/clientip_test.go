package httputil

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		trustProxy bool
		want       string
	}{
		{name: "remote addr only", remoteAddr: "203.0.113.7:4411", want: "203.0.113.7"},
		{name: "xff ignored without trust", remoteAddr: "203.0.113.7:4411", xff: "198.51.100.9", want: "203.0.113.7"},
		{name: "xff first entry", remoteAddr: "10.0.0.1:80", xff: "198.51.100.9, 10.0.0.1", trustProxy: true, want: "198.51.100.9"},
		{name: "x-real-ip fallback", remoteAddr: "10.0.0.1:80", xri: "198.51.100.9", trustProxy: true, want: "198.51.100.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/flyby", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}

			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
