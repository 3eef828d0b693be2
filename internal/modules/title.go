package modules

import (
	"context"
	"strings"

	"github.com/subsort/subsort/pkg/types"
)

// Title extracts the page title and meta description.
type Title struct{ base }

func (m *Title) Name() string        { return "title" }
func (m *Title) Description() string { return "page title and meta description extraction" }

func (m *Title) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	res, body, _, ok := m.client.ResolveScheme(ctx, target)
	if !ok || body == "" {
		return types.Fields{
			"title":     "No title found",
			"has_title": false,
		}, nil
	}

	ct := strings.ToLower(res.Header("Content-Type"))
	if ct != "" && !strings.Contains(ct, "text/html") {
		return types.Fields{
			"title":        "Non-HTML content",
			"content_type": ct,
			"has_title":    false,
		}, nil
	}

	info := parsePage(body)
	title := info.Title
	if title == "" {
		title = "No title found"
	}

	fields := types.Fields{
		"title":        title,
		"title_length": len(info.Title),
		"has_title":    info.Title != "",
	}
	if info.MetaDesc != "" {
		fields["description"] = info.MetaDesc
	}
	return fields, nil
}
