package modules

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spaolacci/murmur3"

	"github.com/subsort/subsort/pkg/types"
)

// knownFaviconHashes maps mmh3 favicon hashes to the product they
// identify.
var knownFaviconHashes = map[int32]string{
	-1588080585: "Apache HTTP Server",
	1404073852:  "nginx",
	708578229:   "Microsoft IIS",
	-235893395:  "WordPress",
	1942532096:  "Django",
	81166609:    "Amazon S3",
	-1194133913: "Cloudflare",
	1011053026:  "Drupal",
	-1506969290: "Joomla",
	-1278104634: "Shopify",
	566218143:   "Splunk",
	-1025300011: "Kibana",
	394490493:   "Grafana",
	-1347968860: "pfSense",
}

// Favicon fetches the site favicon and fingerprints it with the
// Shodan-compatible mmh3 hash of the base64-encoded bytes.
type Favicon struct{ base }

func (m *Favicon) Name() string        { return "favicon" }
func (m *Favicon) Description() string { return "favicon hashing for technology identification" }

func (m *Favicon) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	fields := types.Fields{
		"favicon_found": false,
	}

	_, body, effectiveURL, ok := m.client.ResolveScheme(ctx, target)
	if !ok {
		return fields, nil
	}

	// Prefer the location declared in the page, fall back to the
	// conventional path.
	href := parsePage(body).FaviconHref
	candidates := []string{}
	if href != "" {
		candidates = append(candidates, absoluteURL(effectiveURL, href))
	}
	candidates = append(candidates, effectiveURL+"/favicon.ico")

	for _, u := range candidates {
		r := m.client.Probe(ctx, u, http.MethodGet, nil)
		if !r.OK() || r.StatusCode != 200 || len(r.Body) == 0 {
			continue
		}

		mmh3 := FaviconMMH3(r.Body)
		fields["favicon_found"] = true
		fields["favicon_url"] = u
		fields["favicon_mmh3"] = strconv.FormatInt(int64(mmh3), 10)
		fields["favicon_md5"] = fmt.Sprintf("%x", md5.Sum(r.Body))
		if tech, known := knownFaviconHashes[mmh3]; known {
			fields["favicon_technology"] = tech
		}
		break
	}

	return fields, nil
}

// FaviconMMH3 computes the Shodan-style favicon hash: murmur3 32-bit
// over the standard base64 encoding wrapped at 76 columns with a
// trailing newline.
func FaviconMMH3(data []byte) int32 {
	encoded := base64.StdEncoding.EncodeToString(data)

	var wrapped []byte
	for len(encoded) > 76 {
		wrapped = append(wrapped, encoded[:76]...)
		wrapped = append(wrapped, '\n')
		encoded = encoded[76:]
	}
	wrapped = append(wrapped, encoded...)
	wrapped = append(wrapped, '\n')

	return int32(murmur3.Sum32(wrapped))
}
