package modules

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/subsort/subsort/pkg/types"
)

// interestingPathHints flag disallowed paths worth a second look.
var interestingPathHints = []string{
	"admin", "backup", "config", "db", "dump", "login", "private",
	"secret", "staging", "test", "tmp", "upload", "api", "internal",
}

// Robots fetches robots.txt and sitemap.xml and reports the crawl
// surface they disclose.
type Robots struct{ base }

func (m *Robots) Name() string        { return "robots" }
func (m *Robots) Description() string { return "robots.txt and sitemap analysis" }

func (m *Robots) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	fields := types.Fields{
		"robots_accessible": false,
	}

	_, _, effectiveURL, ok := m.client.ResolveScheme(ctx, target)
	if !ok {
		return fields, nil
	}

	r := m.client.Probe(ctx, effectiveURL+"/robots.txt", http.MethodGet, nil)
	if r.OK() && r.StatusCode == 200 && len(r.Body) > 0 {
		parsed := parseRobots(string(r.Body))
		fields["robots_accessible"] = true
		fields["disallowed_paths"] = parsed.Disallowed
		fields["allowed_paths"] = parsed.Allowed
		fields["user_agents"] = parsed.UserAgents
		fields["sitemap_urls"] = parsed.Sitemaps
		fields["interesting_paths"] = interestingPaths(parsed.Disallowed)
		if parsed.CrawlDelay > 0 {
			fields["crawl_delay"] = parsed.CrawlDelay
		}
	}

	sm := m.client.Probe(ctx, effectiveURL+"/sitemap.xml", http.MethodGet, nil)
	fields["sitemap_accessible"] = sm.OK() && sm.StatusCode == 200 && len(sm.Body) > 0

	return fields, nil
}

type robotsFile struct {
	UserAgents []string
	Disallowed []string
	Allowed    []string
	Sitemaps   []string
	CrawlDelay int
}

// parseRobots walks a robots.txt line by line. Unknown directives are
// ignored.
func parseRobots(content string) robotsFile {
	var out robotsFile
	seen := map[string]bool{}

	add := func(list *[]string, v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			*list = append(*list, v)
		}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "user-agent":
			add(&out.UserAgents, value)
		case "disallow":
			add(&out.Disallowed, value)
		case "allow":
			add(&out.Allowed, value)
		case "sitemap":
			// The value itself contains "://", so re-join what Cut split.
			full := strings.TrimSpace(line[len(key)+1:])
			add(&out.Sitemaps, full)
		case "crawl-delay":
			if d, err := strconv.Atoi(value); err == nil {
				out.CrawlDelay = d
			}
		}
	}
	return out
}

func interestingPaths(paths []string) []string {
	var out []string
	for _, p := range paths {
		lower := strings.ToLower(p)
		for _, hint := range interestingPathHints {
			if strings.Contains(lower, hint) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
