package modules

import (
	"context"
	"strings"

	"github.com/subsort/subsort/pkg/types"
)

// techSignature groups the substrings that identify one technology.
type techSignature struct {
	name     string
	category string
	needles  []string
}

var techSignatures = []techSignature{
	// Web servers
	{"apache", "web_server", []string{"apache"}},
	{"nginx", "web_server", []string{"nginx"}},
	{"iis", "web_server", []string{"microsoft-iis"}},
	{"tomcat", "web_server", []string{"apache-coyote", "tomcat"}},

	// Languages and frameworks
	{"php", "language", []string{"x-powered-by: php", "php/"}},
	{"nodejs", "language", []string{"express", "x-powered-by: express"}},
	{"aspnet", "language", []string{"x-aspnet-version", "asp.net"}},
	{"django", "framework", []string{"csrftoken", "django"}},
	{"flask", "framework", []string{"werkzeug"}},
	{"rails", "framework", []string{"x-powered-by: rails", "ruby on rails"}},
	{"laravel", "framework", []string{"laravel_session", "laravel"}},
	{"spring", "framework", []string{"x-application-context", "jsessionid"}},

	// CMS
	{"wordpress", "cms", []string{"wp-content", "wp-includes"}},
	{"drupal", "cms", []string{"x-drupal", "drupal"}},
	{"joomla", "cms", []string{"/components/com_", "joomla"}},
	{"magento", "cms", []string{"x-magento", "magento"}},
	{"shopify", "cms", []string{"myshopify.com", "shopify"}},

	// CDN and cloud
	{"cloudflare", "cdn", []string{"cf-ray", "cloudflare"}},
	{"aws", "cdn", []string{"x-amz-", "amazonaws.com"}},
	{"azure", "cdn", []string{"x-azure", "windows.net"}},
	{"fastly", "cdn", []string{"x-served-by: cache", "fastly"}},

	// Frontend
	{"react", "frontend", []string{"__react_devtools", "react"}},
	{"angular", "frontend", []string{"ng-version", "angular"}},
	{"vue", "frontend", []string{"__vue__", "vue.js"}},
	{"jquery", "frontend", []string{"jquery"}},
	{"bootstrap", "frontend", []string{"bootstrap"}},
}

// TechStack fingerprints the technology stack from headers and body.
type TechStack struct{ base }

func (m *TechStack) Name() string        { return "techstack" }
func (m *TechStack) Description() string { return "technology stack fingerprinting" }

func (m *TechStack) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	res, body, _, ok := m.client.ResolveScheme(ctx, target)
	if !ok {
		return types.Fields{"technologies": []string{}}, nil
	}

	var sb strings.Builder
	for k, vals := range res.Headers {
		for _, v := range vals {
			sb.WriteString(strings.ToLower(k))
			sb.WriteString(": ")
			sb.WriteString(strings.ToLower(v))
			sb.WriteString("\n")
		}
	}
	haystack := sb.String() + strings.ToLower(body)

	detected := detectTech(haystack)
	fields := types.Fields{"technologies": detected.all}
	if detected.byCategory["web_server"] != "" {
		fields["web_server"] = detected.byCategory["web_server"]
	}
	if detected.byCategory["language"] != "" {
		fields["programming_language"] = detected.byCategory["language"]
	}
	if detected.byCategory["framework"] != "" {
		fields["framework"] = detected.byCategory["framework"]
	}
	if detected.byCategory["cms"] != "" {
		fields["cms"] = detected.byCategory["cms"]
	}
	if detected.byCategory["cdn"] != "" {
		fields["cdn"] = detected.byCategory["cdn"]
	}
	if len(detected.frontend) > 0 {
		fields["frontend"] = detected.frontend
	}
	return fields, nil
}

type techMatches struct {
	all        []string
	frontend   []string
	byCategory map[string]string
}

// detectTech scans a lowercase haystack against the signature table.
// First match per category wins.
func detectTech(haystack string) techMatches {
	out := techMatches{byCategory: map[string]string{}, all: []string{}}
	for _, sig := range techSignatures {
		for _, needle := range sig.needles {
			if strings.Contains(haystack, needle) {
				out.all = append(out.all, sig.name)
				if sig.category == "frontend" {
					out.frontend = append(out.frontend, sig.name)
				} else if out.byCategory[sig.category] == "" {
					out.byCategory[sig.category] = sig.name
				}
				break
			}
		}
	}
	return out
}
