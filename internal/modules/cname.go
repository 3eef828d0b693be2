package modules

import (
	"context"
	"errors"
	"net"
	"strings"

	mdns "github.com/miekg/dns"

	"github.com/subsort/subsort/pkg/types"
)

// takeoverServices maps CNAME target suffixes of SaaS providers to
// their product name. A chain ending at one of these that no longer
// resolves is a takeover candidate.
var takeoverServices = map[string]string{
	"amazonaws.com":     "AWS S3/ELB",
	"cloudfront.net":    "AWS CloudFront",
	"azurewebsites.net": "Azure Websites",
	"herokuapp.com":     "Heroku",
	"github.io":         "GitHub Pages",
	"netlify.com":       "Netlify",
	"netlify.app":       "Netlify",
	"vercel.app":        "Vercel",
	"surge.sh":          "Surge.sh",
	"bitbucket.io":      "Bitbucket",
	"fastly.com":        "Fastly CDN",
	"cloudflare.net":    "Cloudflare",
	"unbounce.com":      "Unbounce",
	"helpjuice.com":     "HelpJuice",
	"zendesk.com":       "Zendesk",
	"pantheonsite.io":   "Pantheon",
}

const maxCNAMEDepth = 10

// CName walks the target's CNAME chain and checks the tail against
// known takeover-prone providers.
type CName struct{ base }

func (m *CName) Name() string        { return "cname" }
func (m *CName) Description() string { return "CNAME chain resolution and takeover check" }

func (m *CName) Scan(ctx context.Context, target types.Target) (types.Fields, error) {
	fields := types.Fields{
		"cname_records":     []map[string]any{},
		"vulnerable":        false,
		"takeover_possible": false,
		"risk_level":        "low",
	}

	chain := m.resolveChain(ctx, string(target))
	if len(chain) == 0 {
		return fields, nil
	}
	fields["cname_records"] = chain

	service, vulnerable, takeover := assessTakeover(chain)
	fields["vulnerable"] = vulnerable
	fields["takeover_possible"] = takeover
	if service != "" {
		fields["service_identified"] = service
	}
	switch {
	case takeover:
		fields["risk_level"] = "high"
	case vulnerable:
		fields["risk_level"] = "medium"
	}
	return fields, nil
}

// resolveChain follows CNAME records up to a fixed depth, marking the
// tail when it no longer resolves.
func (m *CName) resolveChain(ctx context.Context, domain string) []map[string]any {
	client := &mdns.Client{}
	resolver := systemResolver()

	var chain []map[string]any
	current := domain

	for depth := 0; depth < maxCNAMEDepth; depth++ {
		if ctx.Err() != nil {
			break
		}

		msg := &mdns.Msg{}
		msg.SetQuestion(mdns.Fqdn(current), mdns.TypeCNAME)

		resp, _, err := client.ExchangeContext(ctx, msg, resolver)
		if err != nil {
			break
		}

		var cname string
		for _, rr := range resp.Answer {
			if c, ok := rr.(*mdns.CNAME); ok {
				cname = strings.TrimSuffix(c.Target, ".")
				break
			}
		}
		if cname == "" {
			// End of chain; note if the tail is dangling.
			if len(chain) > 0 && resp.Rcode == mdns.RcodeNameError {
				chain[len(chain)-1]["nxdomain"] = true
			}
			break
		}

		chain = append(chain, map[string]any{
			"domain": current,
			"cname":  cname,
			"depth":  depth,
		})
		current = cname
	}

	// The last hop is dangling when its target has no address at all.
	if len(chain) > 0 {
		tail := chain[len(chain)-1]["cname"].(string)
		if _, err := net.LookupHost(tail); err != nil {
			var dnsErr *net.DNSError
			if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
				chain[len(chain)-1]["nxdomain"] = true
			}
		}
	}

	return chain
}

// assessTakeover inspects a chain for hops pointing at takeover-prone
// providers.
func assessTakeover(chain []map[string]any) (service string, vulnerable, takeover bool) {
	for _, hop := range chain {
		cname, _ := hop["cname"].(string)
		for suffix, name := range takeoverServices {
			if strings.HasSuffix(cname, suffix) || strings.Contains(cname, "."+suffix) {
				vulnerable = true
				service = name
				if nx, _ := hop["nxdomain"].(bool); nx {
					takeover = true
				}
			}
		}
	}
	return service, vulnerable, takeover
}

// systemResolver returns the first nameserver from resolv.conf, falling
// back to a public resolver.
func systemResolver() string {
	conf, err := mdns.ClientConfigFromFile("/etc/resolv.conf")
	if err == nil && len(conf.Servers) > 0 {
		return net.JoinHostPort(conf.Servers[0], conf.Port)
	}
	return "8.8.8.8:53"
}
