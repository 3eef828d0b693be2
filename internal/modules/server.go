package modules

import (
	"context"
	"strings"

	"github.com/subsort/subsort/pkg/types"
)

// securityHeaders are the response headers the server module reports on
// when present.
var securityHeaders = []string{
	"Strict-Transport-Security",
	"Content-Security-Policy",
	"X-Frame-Options",
	"X-Content-Type-Options",
	"Referrer-Policy",
	"Permissions-Policy",
	"X-XSS-Protection",
}

// Server extracts the server banner and security header posture.
type Server struct{ base }

func (m *Server) Name() string        { return "server" }
func (m *Server) Description() string { return "server banner and security header analysis" }

func (m *Server) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	res, _, _, ok := m.client.ResolveScheme(ctx, target)
	if !ok {
		return types.Fields{"server_info": "Not accessible"}, nil
	}

	server := res.Header("Server")
	if server == "" {
		server = "Not disclosed"
	}

	present := map[string]string{}
	for _, h := range securityHeaders {
		if v := res.Header(h); v != "" {
			present[h] = v
		}
	}

	return types.Fields{
		"server_info":        server,
		"server_fingerprint": fingerprintServer(server),
		"security_headers":   present,
		"security_score":     securityScore(present),
		"powered_by":         res.Header("X-Powered-By"),
	}, nil
}

// securityScore is the fraction of tracked security headers present,
// as a percentage.
func securityScore(present map[string]string) int {
	return len(present) * 100 / len(securityHeaders)
}

// fingerprintServer reduces a raw Server banner to a product name.
func fingerprintServer(banner string) string {
	b := strings.ToLower(banner)
	switch {
	case strings.Contains(b, "nginx"):
		return "nginx"
	case strings.Contains(b, "apache"):
		return "apache"
	case strings.Contains(b, "microsoft-iis"):
		return "iis"
	case strings.Contains(b, "cloudflare"):
		return "cloudflare"
	case strings.Contains(b, "caddy"):
		return "caddy"
	case b == "" || b == "not disclosed":
		return "unknown"
	default:
		return strings.Fields(b)[0]
	}
}
