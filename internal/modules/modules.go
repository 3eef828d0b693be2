// Package modules contains the pluggable analysis units. Each module
// implements scanner.Module: it probes one target through the shared
// HTTP client and returns a flat field mapping. Modules never let a
// fault propagate; they degrade to a best-effort partial result.
package modules

import (
	"log/slog"

	"github.com/subsort/subsort/internal/probe"
	"github.com/subsort/subsort/internal/scanner"
)

// RegisterAll registers every built-in module factory. The registration
// order here is the default enable order.
func RegisterAll(reg *scanner.Registry) {
	reg.Register("status", func(c *probe.Client, l *slog.Logger) scanner.Module { return &Status{base{c, l}} })
	reg.Register("server", func(c *probe.Client, l *slog.Logger) scanner.Module { return &Server{base{c, l}} })
	reg.Register("title", func(c *probe.Client, l *slog.Logger) scanner.Module { return &Title{base{c, l}} })
	reg.Register("techstack", func(c *probe.Client, l *slog.Logger) scanner.Module { return &TechStack{base{c, l}} })
	reg.Register("vhost", func(c *probe.Client, l *slog.Logger) scanner.Module { return &VHost{base{c, l}} })
	reg.Register("responsetime", func(c *probe.Client, l *slog.Logger) scanner.Module { return &ResponseTime{base{c, l}} })
	reg.Register("favicon", func(c *probe.Client, l *slog.Logger) scanner.Module { return &Favicon{base{c, l}} })
	reg.Register("robots", func(c *probe.Client, l *slog.Logger) scanner.Module { return &Robots{base{c, l}} })
	reg.Register("js", func(c *probe.Client, l *slog.Logger) scanner.Module { return &JSAssets{base{c, l}} })
	reg.Register("auth", func(c *probe.Client, l *slog.Logger) scanner.Module { return &Auth{base{c, l}} })
	reg.Register("jsvuln", func(c *probe.Client, l *slog.Logger) scanner.Module { return &JSVuln{base{c, l}} })
	reg.Register("loginpanels", func(c *probe.Client, l *slog.Logger) scanner.Module { return &LoginPanels{base{c, l}} })
	reg.Register("jwt", func(c *probe.Client, l *slog.Logger) scanner.Module { return &JWT{base{c, l}} })
	reg.Register("cname", func(c *probe.Client, l *slog.Logger) scanner.Module { return &CName{base{c, l}} })
}

// base carries the collaborators every module shares.
type base struct {
	client *probe.Client
	log    *slog.Logger
}
