package modules

import (
	"context"
	"regexp"
	"strings"

	"github.com/subsort/subsort/pkg/types"
)

// vulnLibrary describes version ranges of a library with published
// issues worth flagging.
type vulnLibrary struct {
	name            string
	badPrefixes     []string
	vulnerabilities []string
}

var vulnLibraries = []vulnLibrary{
	{"jquery", []string{"1.", "2.0", "2.1"}, []string{"XSS", "DOM manipulation"}},
	{"angular", []string{"1.0", "1.1", "1.2", "1.3", "1.4", "1.5"}, []string{"XSS", "Template injection"}},
	{"bootstrap", []string{"2.", "3.0", "3.1", "3.2"}, []string{"XSS in tooltip/popover"}},
}

// versionedSrc matches library script names like jquery-1.8.3.min.js.
var versionedSrc = regexp.MustCompile(`([a-z]+)[-.]([0-9]+(?:\.[0-9]+)+)`)

// JSVuln flags externally loaded JavaScript libraries at versions with
// known vulnerabilities.
type JSVuln struct{ base }

func (m *JSVuln) Name() string        { return "jsvuln" }
func (m *JSVuln) Description() string { return "vulnerable JavaScript library detection" }

func (m *JSVuln) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	fields := types.Fields{
		"vulnerable_libraries":  []map[string]any{},
		"total_vulnerabilities": 0,
	}

	_, body, _, ok := m.client.ResolveScheme(ctx, target)
	if !ok || body == "" {
		return fields, nil
	}

	var found []map[string]any
	total := 0
	for _, s := range parsePage(body).Scripts {
		if s.Inline {
			continue
		}
		if lib, version, vulns, hit := CheckScriptSrc(s.Src); hit {
			found = append(found, map[string]any{
				"library":         lib,
				"version":         version,
				"vulnerabilities": vulns,
				"source":          s.Src,
			})
			total += len(vulns)
		}
	}

	if found != nil {
		fields["vulnerable_libraries"] = found
	}
	fields["total_vulnerabilities"] = total
	return fields, nil
}

// CheckScriptSrc extracts a library name and version from a script URL
// and reports known vulnerabilities for that version, if any.
func CheckScriptSrc(src string) (lib, version string, vulns []string, hit bool) {
	match := versionedSrc.FindStringSubmatch(strings.ToLower(src))
	if match == nil {
		return "", "", nil, false
	}
	lib, version = match[1], match[2]

	for _, v := range vulnLibraries {
		if v.name != lib {
			continue
		}
		for _, prefix := range v.badPrefixes {
			if strings.HasPrefix(version, prefix) {
				return lib, version, v.vulnerabilities, true
			}
		}
	}
	return "", "", nil, false
}
