package modules

import (
	"context"
	"strings"

	"github.com/subsort/subsort/pkg/types"
)

var knownJSLibraries = []string{"jquery", "angular", "react", "vue", "bootstrap", "lodash", "moment", "d3"}

// JSAssets inventories the JavaScript a page loads.
type JSAssets struct{ base }

func (m *JSAssets) Name() string        { return "js" }
func (m *JSAssets) Description() string { return "JavaScript asset extraction" }

func (m *JSAssets) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	fields := types.Fields{
		"js_files":          []map[string]any{},
		"inline_js_count":   0,
		"external_js_count": 0,
		"js_libraries":      []string{},
	}

	_, body, effectiveURL, ok := m.client.ResolveScheme(ctx, target)
	if !ok || body == "" {
		return fields, nil
	}

	info := parsePage(body)

	var files []map[string]any
	var libraries []string
	inline, external := 0, 0
	seenLib := map[string]bool{}

	for _, s := range info.Scripts {
		if s.Inline {
			inline++
			continue
		}
		external++
		files = append(files, map[string]any{
			"url":   absoluteURL(effectiveURL, s.Src),
			"async": s.Async,
			"defer": s.Defer,
		})
		lower := strings.ToLower(s.Src)
		for _, lib := range knownJSLibraries {
			if strings.Contains(lower, lib) && !seenLib[lib] {
				seenLib[lib] = true
				libraries = append(libraries, lib)
			}
		}
	}

	if files != nil {
		fields["js_files"] = files
	}
	if libraries != nil {
		fields["js_libraries"] = libraries
	}
	fields["inline_js_count"] = inline
	fields["external_js_count"] = external
	return fields, nil
}
