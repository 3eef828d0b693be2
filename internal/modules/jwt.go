package modules

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/subsort/subsort/pkg/types"
)

// jwtPattern matches the three dot-separated base64url segments of a
// serialized token.
var jwtPattern = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)

// JWT finds serialized tokens in response headers and bodies and
// decodes their unverified claims for inspection.
type JWT struct{ base }

func (m *JWT) Name() string        { return "jwt" }
func (m *JWT) Description() string { return "JWT token discovery and decoding" }

func (m *JWT) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	fields := types.Fields{
		"jwt_tokens":  []map[string]any{},
		"token_count": 0,
	}

	res, body, _, ok := m.client.ResolveScheme(ctx, target)
	if !ok {
		return fields, nil
	}

	var tokens []map[string]any
	algorithms := map[string]bool{}
	var insecure []string

	record := func(raw, source string) {
		decoded, err := DecodeJWT(raw)
		if err != nil {
			return
		}
		decoded["source"] = source
		tokens = append(tokens, decoded)

		if header, ok := decoded["header"].(map[string]any); ok {
			if alg, ok := header["alg"].(string); ok {
				algorithms[alg] = true
				if strings.EqualFold(alg, "none") {
					insecure = append(insecure, "alg=none accepted")
				}
				if strings.HasPrefix(strings.ToUpper(alg), "HS") {
					insecure = append(insecure, "symmetric signing ("+alg+")")
				}
			}
		}
	}

	for name, vals := range res.Headers {
		lower := strings.ToLower(name)
		if !strings.Contains(lower, "authorization") && !strings.Contains(lower, "token") &&
			!strings.Contains(lower, "cookie") {
			continue
		}
		for _, v := range vals {
			for _, raw := range jwtPattern.FindAllString(v, -1) {
				record(raw, "header:"+name)
			}
		}
	}
	for _, raw := range jwtPattern.FindAllString(body, -1) {
		record(raw, "body")
	}

	if tokens != nil {
		fields["jwt_tokens"] = tokens
	}
	fields["token_count"] = len(tokens)
	if len(algorithms) > 0 {
		algs := make([]string, 0, len(algorithms))
		for a := range algorithms {
			algs = append(algs, a)
		}
		fields["algorithms_detected"] = algs
	}
	if insecure != nil {
		fields["insecure_configs"] = dedupe(insecure)
	}
	return fields, nil
}

// DecodeJWT decodes the header and claims of a serialized token without
// verifying the signature.
func DecodeJWT(raw string) (map[string]any, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, errMalformedJWT
	}

	header, err := decodeSegment(parts[0])
	if err != nil {
		return nil, err
	}
	claims, err := decodeSegment(parts[1])
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"header": header,
		"claims": claims,
	}, nil
}

var errMalformedJWT = errors.New("malformed JWT")

func decodeSegment(seg string) (map[string]any, error) {
	data, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
