package modules

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subsort/subsort/internal/probe"
	"github.com/subsort/subsort/internal/scanner"
	"github.com/subsort/subsort/pkg/types"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serverTarget spins up an httptest server and returns a target that
// resolves to it over plain HTTP (the https attempt fails fast).
func serverTarget(t *testing.T, handler http.Handler) (*probe.Client, types.Target) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := probe.New(probe.Options{Timeout: 2 * time.Second}, discard())
	return client, types.Target(strings.TrimPrefix(srv.URL, "http://"))
}

func TestRegisterAll(t *testing.T) {
	reg := scanner.NewRegistry()
	RegisterAll(reg)

	names := reg.Names()
	assert.Len(t, names, 14)
	assert.Equal(t, "status", names[0])

	for _, name := range names {
		m, err := reg.Build(name, nil, discard())
		require.NoError(t, err)
		assert.Equal(t, name, m.Name())
		assert.NotEmpty(t, m.Description())
	}
}

func TestStatus_Reachable(t *testing.T) {
	client, target := serverTarget(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>up</body></html>")
	}))

	m := &Status{base{client, discard()}}
	fields, err := m.Scan(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, true, fields["accessible"])
	assert.Equal(t, 200, fields["status_code"])
	assert.Equal(t, "success", fields["status_category"])
	assert.Equal(t, "http://"+string(target), fields["final_url"])
}

func TestStatus_Unreachable(t *testing.T) {
	client := probe.New(probe.Options{Timeout: time.Second}, discard())
	m := &Status{base{client, discard()}}

	fields, err := m.Scan(context.Background(), "unreachable.invalid")
	require.NoError(t, err)
	assert.Equal(t, false, fields["accessible"])
	assert.Equal(t, "unreachable", fields["status_category"])
	assert.NotEmpty(t, fields["error_kind"])
}

func TestCategorizeStatus(t *testing.T) {
	assert.Equal(t, "success", categorizeStatus(204))
	assert.Equal(t, "redirect", categorizeStatus(301))
	assert.Equal(t, "client_error", categorizeStatus(404))
	assert.Equal(t, "server_error", categorizeStatus(503))
	assert.Equal(t, "unknown", categorizeStatus(100))
}

func TestServer_Headers(t *testing.T) {
	client, target := serverTarget(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "nginx/1.25.0")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000")
		w.Header().Set("X-Frame-Options", "DENY")
	}))

	m := &Server{base{client, discard()}}
	fields, err := m.Scan(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, "nginx/1.25.0", fields["server_info"])
	assert.Equal(t, "nginx", fields["server_fingerprint"])
	headers := fields["security_headers"].(map[string]string)
	assert.Len(t, headers, 2)
}

func TestFingerprintServer(t *testing.T) {
	assert.Equal(t, "nginx", fingerprintServer("nginx/1.2"))
	assert.Equal(t, "apache", fingerprintServer("Apache/2.4.57 (Debian)"))
	assert.Equal(t, "iis", fingerprintServer("Microsoft-IIS/10.0"))
	assert.Equal(t, "unknown", fingerprintServer(""))
}

func TestTitle_Extraction(t *testing.T) {
	page := `<html><head>
		<title>  Welcome   Portal </title>
		<meta name="description" content="An internal portal">
	</head><body></body></html>`

	client, target := serverTarget(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))

	m := &Title{base{client, discard()}}
	fields, err := m.Scan(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, "Welcome Portal", fields["title"])
	assert.Equal(t, true, fields["has_title"])
	assert.Equal(t, "An internal portal", fields["description"])
}

func TestTitle_NonHTML(t *testing.T) {
	client, target := serverTarget(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))

	m := &Title{base{client, discard()}}
	fields, err := m.Scan(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, "Non-HTML content", fields["title"])
	assert.Equal(t, false, fields["has_title"])
}

func TestDetectTech(t *testing.T) {
	haystack := strings.ToLower(
		"Server: nginx\nX-Powered-By: PHP/8.1\nCF-RAY: abc\n" +
			`<script src="/js/jquery.min.js"></script>` +
			`<link href="wp-content/themes/x.css">`)

	got := detectTech(haystack)
	assert.Contains(t, got.all, "nginx")
	assert.Contains(t, got.all, "php")
	assert.Contains(t, got.all, "cloudflare")
	assert.Contains(t, got.all, "wordpress")
	assert.Contains(t, got.frontend, "jquery")
	assert.Equal(t, "nginx", got.byCategory["web_server"])
}

func TestParsePage(t *testing.T) {
	doc := `<html><head>
		<title>Login</title>
		<link rel="shortcut icon" href="/static/fav.ico">
		<script src="/app.js" defer></script>
		<script>inline()</script>
	</head><body>
		<form action="/login">
			<input type="text" name="user">
			<input type="password" name="pass">
		</form>
	</body></html>`

	info := parsePage(doc)
	assert.Equal(t, "Login", info.Title)
	assert.Equal(t, "/static/fav.ico", info.FaviconHref)
	require.Len(t, info.Scripts, 2)
	assert.Equal(t, "/app.js", info.Scripts[0].Src)
	assert.True(t, info.Scripts[0].Defer)
	assert.True(t, info.Scripts[1].Inline)
	require.Len(t, info.Forms, 1)
	assert.True(t, info.Forms[0].HasPassword)
}

func TestParsePage_Malformed(t *testing.T) {
	// Must not panic or loop on garbage.
	info := parsePage("<html><title>x</tit" + strings.Repeat("<", 50))
	assert.NotNil(t, info)
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "https://a.com/x.js", absoluteURL("https://a.com", "/x.js"))
	assert.Equal(t, "https://cdn.com/y.js", absoluteURL("https://a.com", "https://cdn.com/y.js"))
	assert.Equal(t, "https://cdn.com/z.js", absoluteURL("https://a.com", "//cdn.com/z.js"))
	assert.Equal(t, "http://a.com/r.js", absoluteURL("http://a.com/", "r.js"))
}

func TestFaviconMMH3_Stable(t *testing.T) {
	data := []byte("favicon-bytes")
	assert.Equal(t, FaviconMMH3(data), FaviconMMH3(data))
	assert.NotEqual(t, FaviconMMH3(data), FaviconMMH3([]byte("other")))
}

func TestFavicon_Scan(t *testing.T) {
	icon := []byte{0x00, 0x01, 0x02, 0x03}
	client, target := serverTarget(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/favicon.ico" {
			w.Write(icon)
			return
		}
		fmt.Fprint(w, "<html></html>")
	}))

	m := &Favicon{base{client, discard()}}
	fields, err := m.Scan(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, true, fields["favicon_found"])
	assert.NotEmpty(t, fields["favicon_mmh3"])
	assert.NotEmpty(t, fields["favicon_md5"])
}

func TestParseRobots(t *testing.T) {
	content := `# comment
User-agent: *
Disallow: /admin/
Disallow: /tmp/
Allow: /public/
Crawl-delay: 10
Sitemap: https://example.com/sitemap.xml
`
	parsed := parseRobots(content)
	assert.Equal(t, []string{"*"}, parsed.UserAgents)
	assert.Equal(t, []string{"/admin/", "/tmp/"}, parsed.Disallowed)
	assert.Equal(t, []string{"/public/"}, parsed.Allowed)
	assert.Equal(t, 10, parsed.CrawlDelay)
	assert.Equal(t, []string{"https://example.com/sitemap.xml"}, parsed.Sitemaps)

	interesting := interestingPaths(parsed.Disallowed)
	assert.Equal(t, []string{"/admin/", "/tmp/"}, interesting)
}

func TestJSAssets_Scan(t *testing.T) {
	page := `<html><head>
		<script src="https://code.jquery.com/jquery-3.6.0.min.js"></script>
		<script src="/local/app.js" async></script>
		<script>var x = 1;</script>
	</head></html>`

	client, target := serverTarget(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))

	m := &JSAssets{base{client, discard()}}
	fields, err := m.Scan(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, 1, fields["inline_js_count"])
	assert.Equal(t, 2, fields["external_js_count"])
	assert.Contains(t, fields["js_libraries"], "jquery")
}

func TestCheckScriptSrc(t *testing.T) {
	lib, version, vulns, hit := CheckScriptSrc("/js/jquery-1.8.3.min.js")
	assert.True(t, hit)
	assert.Equal(t, "jquery", lib)
	assert.Equal(t, "1.8.3", version)
	assert.NotEmpty(t, vulns)

	_, _, _, hit = CheckScriptSrc("/js/jquery-3.6.0.min.js")
	assert.False(t, hit)

	_, _, _, hit = CheckScriptSrc("/js/app.js")
	assert.False(t, hit)
}

func TestAuth_BasicChallenge(t *testing.T) {
	client, target := serverTarget(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("WWW-Authenticate", `Basic realm="ops"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	m := &Auth{base{client, discard()}}
	fields, err := m.Scan(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, true, fields["has_auth"])
	assert.Equal(t, true, fields["requires_auth"])
	assert.Contains(t, fields["auth_types"], "HTTP Basic")
}

func TestAuth_LoginForm(t *testing.T) {
	page := `<html><body><form action="/login">
		<input type="email"><input type="password">
	</form></body></html>`
	client, target := serverTarget(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))

	m := &Auth{base{client, discard()}}
	fields, err := m.Scan(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, true, fields["has_auth"])
	assert.Equal(t, 1, fields["login_forms"])
	assert.Contains(t, fields["auth_types"], "Form Authentication")
}

func TestDecodeJWT(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"1234","name":"test"}`))
	raw := header + "." + claims + ".sig-bytes"

	decoded, err := DecodeJWT(raw)
	require.NoError(t, err)

	h := decoded["header"].(map[string]any)
	c := decoded["claims"].(map[string]any)
	assert.Equal(t, "HS256", h["alg"])
	assert.Equal(t, "1234", c["sub"])

	_, err = DecodeJWT("not.a.jwt")
	assert.Error(t, err)
}

func TestJWT_Scan(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	claims := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"x"}`))
	token := header + "." + claims + ".AAAA"

	client, target := serverTarget(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><body>token: %s</body></html>", token)
	}))

	m := &JWT{base{client, discard()}}
	fields, err := m.Scan(context.Background(), target)
	require.NoError(t, err)

	assert.Equal(t, 1, fields["token_count"])
	assert.Contains(t, fields["algorithms_detected"], "none")
	assert.Contains(t, fields["insecure_configs"], "alg=none accepted")
}

func TestClassifyLoginPage(t *testing.T) {
	login := `<html><head><title>Sign In</title></head><body>
		<form action="/session"><input type="text"><input type="password"></form>
		Please login with your username and password.
	</body></html>`
	panel := classifyLoginPage(login, "https://x.example.com")
	require.NotNil(t, panel)
	assert.Equal(t, true, panel["has_form"])

	plain := `<html><body><p>Just a brochure site.</p></body></html>`
	assert.Nil(t, classifyLoginPage(plain, "https://x.example.com"))
}

func TestAssessTakeover(t *testing.T) {
	chain := []map[string]any{
		{"domain": "shop.example.com", "cname": "example.myshopify.herokuapp.com", "depth": 0, "nxdomain": true},
	}
	service, vulnerable, takeover := assessTakeover(chain)
	assert.True(t, vulnerable)
	assert.True(t, takeover)
	assert.Equal(t, "Heroku", service)

	healthy := []map[string]any{
		{"domain": "www.example.com", "cname": "edge.example-cdn.internal", "depth": 0},
	}
	_, vulnerable, takeover = assessTakeover(healthy)
	assert.False(t, vulnerable)
	assert.False(t, takeover)
}

func TestVHost_DifferingHostResponses(t *testing.T) {
	client, target := serverTarget(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.Host, ".test") || r.Host == "example.com" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "<html><title>Not here</title></html>")
			return
		}
		fmt.Fprint(w, "<html><title>Main site</title></html>")
	}))

	m := &VHost{base{client, discard()}}
	fields, err := m.Scan(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, true, fields["is_vhost"])
}
