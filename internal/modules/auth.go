package modules

import (
	"context"
	"strings"

	"github.com/subsort/subsort/pkg/types"
)

// Auth detects authentication mechanisms: challenge headers, login
// forms, and SSO hints in the page.
type Auth struct{ base }

func (m *Auth) Name() string        { return "auth" }
func (m *Auth) Description() string { return "authentication mechanism detection" }

func (m *Auth) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	fields := types.Fields{
		"has_auth":      false,
		"auth_types":    []string{},
		"login_forms":   0,
		"requires_auth": false,
	}

	res, body, _, ok := m.client.ResolveScheme(ctx, target)
	if !ok {
		return fields, nil
	}

	var authTypes []string
	hasAuth := false

	if res.StatusCode == 401 {
		fields["requires_auth"] = true
		hasAuth = true
	}
	if v := res.Header("WWW-Authenticate"); v != "" {
		authTypes = append(authTypes, "HTTP "+strings.Fields(v)[0])
		hasAuth = true
	}
	if res.Header("Set-Cookie") != "" {
		authTypes = append(authTypes, "Session Cookie")
	}

	loginForms := 0
	for _, f := range parsePage(body).Forms {
		if f.HasPassword {
			loginForms++
			hasAuth = true
		}
	}
	if loginForms > 0 {
		authTypes = append(authTypes, "Form Authentication")
	}

	lower := strings.ToLower(body)
	for _, hint := range []string{"oauth", "saml", "openid", "single sign-on"} {
		if strings.Contains(lower, hint) {
			authTypes = append(authTypes, "SSO ("+hint+")")
			hasAuth = true
			break
		}
	}

	fields["has_auth"] = hasAuth
	if authTypes != nil {
		fields["auth_types"] = authTypes
	}
	fields["login_forms"] = loginForms
	return fields, nil
}
