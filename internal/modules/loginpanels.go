package modules

import (
	"context"
	"net/http"
	"strings"

	"github.com/subsort/subsort/pkg/types"
)

// adminPaths are the conventional panel locations checked beyond the
// landing page.
var adminPaths = []string{
	"/admin", "/admin/login", "/wp-admin", "/wp-login.php",
	"/administrator", "/login", "/signin", "/auth",
	"/panel", "/cpanel", "/dashboard",
}

var loginIndicators = []string{
	"login", "signin", "sign in", "log in", "authentication",
	"admin panel", "control panel", "password", "username",
}

// LoginPanels locates login portals on the landing page and common
// admin paths.
type LoginPanels struct{ base }

func (m *LoginPanels) Name() string        { return "loginpanels" }
func (m *LoginPanels) Description() string { return "login panel and admin portal discovery" }

func (m *LoginPanels) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	fields := types.Fields{
		"login_panels":      []map[string]any{},
		"admin_paths_found": []string{},
	}

	_, body, effectiveURL, ok := m.client.ResolveScheme(ctx, target)
	if !ok {
		return fields, nil
	}

	var panels []map[string]any
	if p := classifyLoginPage(body, effectiveURL); p != nil {
		panels = append(panels, p)
	}

	var foundPaths []string
	for _, path := range adminPaths {
		if ctx.Err() != nil {
			break
		}
		r := m.client.Probe(ctx, effectiveURL+path, http.MethodGet, nil)
		if !r.OK() || r.StatusCode != 200 {
			continue
		}
		if p := classifyLoginPage(string(r.Body), effectiveURL+path); p != nil {
			foundPaths = append(foundPaths, path)
			panels = append(panels, p)
		}
	}

	if panels != nil {
		fields["login_panels"] = panels
	}
	if foundPaths != nil {
		fields["admin_paths_found"] = foundPaths
	}
	fields["panel_count"] = len(panels)
	return fields, nil
}

// classifyLoginPage decides whether a page is a login surface and, if
// so, describes it. Returns nil for ordinary pages.
func classifyLoginPage(body, url string) map[string]any {
	info := parsePage(body)

	passwordForm := false
	for _, f := range info.Forms {
		if f.HasPassword {
			passwordForm = true
			break
		}
	}

	indicators := 0
	lower := strings.ToLower(body)
	for _, ind := range loginIndicators {
		if strings.Contains(lower, ind) {
			indicators++
		}
	}

	if !passwordForm && indicators < 2 {
		return nil
	}

	panelType := "generic"
	switch {
	case strings.Contains(lower, "wp-login") || strings.Contains(lower, "wordpress"):
		panelType = "wordpress"
	case strings.Contains(lower, "cpanel"):
		panelType = "cpanel"
	case passwordForm:
		panelType = "form"
	}

	return map[string]any{
		"url":           url,
		"type":          panelType,
		"has_form":      passwordForm,
		"title":         info.Title,
		"indicator_hits": indicators,
	}
}
