package modules

import (
	"context"

	"github.com/subsort/subsort/pkg/types"
)

// Status reports basic reachability: status code, category, effective
// URL, and response size.
type Status struct{ base }

func (m *Status) Name() string        { return "status" }
func (m *Status) Description() string { return "HTTP status code and basic connectivity" }

func (m *Status) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	res, body, effectiveURL, ok := m.client.ResolveScheme(ctx, target)
	if !ok {
		fields := types.Fields{
			"accessible":      false,
			"status_code":     nil,
			"status_category": "unreachable",
			"final_url":       nil,
		}
		if res != nil {
			fields["error_kind"] = string(res.ErrKind)
			fields["attempts"] = res.Attempts
		}
		return fields, nil
	}

	return types.Fields{
		"accessible":      true,
		"status_code":     res.StatusCode,
		"status_category": categorizeStatus(res.StatusCode),
		"final_url":       effectiveURL,
		"response_size":   len(body),
		"attempts":        res.Attempts,
	}, nil
}

func categorizeStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "success"
	case code >= 300 && code < 400:
		return "redirect"
	case code >= 400 && code < 500:
		return "client_error"
	case code >= 500 && code < 600:
		return "server_error"
	default:
		return "unknown"
	}
}
