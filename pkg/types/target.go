package types

import "strings"

// Target is a normalized hostname to be probed. A valid Target is
// lowercase, carries no scheme, port, path, or fragment, and satisfies
// the DNS label rules enforced by Valid.
type Target string

// NormalizeTarget cleans a raw input line into Target form: any scheme,
// path, query, fragment, and port are stripped, the result is lowercased
// and trailing dots removed. The returned Target is not guaranteed to be
// valid; callers check Valid separately.
func NormalizeTarget(raw string) Target {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if idx := strings.Index(s, "://"); idx != -1 {
		s = s[idx+3:]
	}

	// Drop path, query, and fragment.
	for _, sep := range []string{"/", "?", "#"} {
		if idx := strings.Index(s, sep); idx != -1 {
			s = s[:idx]
		}
	}

	// Drop a port suffix. More than one colon means an IPv6 literal,
	// which is not a hostname and fails validation on its own.
	if strings.Count(s, ":") == 1 {
		s = s[:strings.Index(s, ":")]
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".")

	return Target(s)
}

// Valid reports whether the target is a well-formed hostname: at most
// 253 characters, at least one dot, and every dot-separated label 1-63
// alphanumeric/hyphen characters with no leading or trailing hyphen.
func (t Target) Valid() bool {
	s := string(t)
	if s == "" || len(s) > 253 {
		return false
	}
	if !strings.Contains(s, ".") {
		return false
	}

	for _, label := range strings.Split(s, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
				return false
			}
		}
	}

	return true
}

func (t Target) String() string { return string(t) }
