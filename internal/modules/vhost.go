package modules

import (
	"context"
	"net/http"
	"strings"

	"github.com/subsort/subsort/pkg/types"
)

// VHost probes for virtual-host behaviour by replaying the request with
// foreign Host headers and comparing the responses against the baseline.
type VHost struct{ base }

func (m *VHost) Name() string        { return "vhost" }
func (m *VHost) Description() string { return "virtual host detection via Host header variation" }

func (m *VHost) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	fields := types.Fields{
		"is_vhost":          false,
		"alternative_hosts": []map[string]any{},
	}

	res, body, effectiveURL, ok := m.client.ResolveScheme(ctx, target)
	if !ok {
		return fields, nil
	}

	baseStatus := res.StatusCode
	baseLen := len(body)
	baseTitle := parsePage(body).Title

	testHosts := []string{
		"example.com",
		"nonexistent." + string(target),
		strings.ReplaceAll(string(target), ".", "-") + ".test",
	}

	var alternatives []map[string]any
	for _, host := range testHosts {
		r := m.client.Probe(ctx, effectiveURL, http.MethodGet, map[string]string{"Host": host})
		if !r.OK() {
			continue
		}
		title := parsePage(string(r.Body)).Title
		if r.StatusCode != baseStatus || diffExceeds(len(r.Body), baseLen, 100) || title != baseTitle {
			alternatives = append(alternatives, map[string]any{
				"host":   host,
				"status": r.StatusCode,
				"title":  title,
			})
		}
	}

	if len(alternatives) > 0 {
		fields["is_vhost"] = true
		fields["alternative_hosts"] = alternatives
	}
	return fields, nil
}

func diffExceeds(a, b, threshold int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d > threshold
}
