// Package scanner drives N targets through the enabled analysis modules
// under a bounded concurrency ceiling, emitting exactly one ScanRecord
// per target. Targets are parallelized; modules within one target run
// strictly sequentially in enable order, so a ScanRecord is only ever
// mutated by the single task that owns it.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/subsort/subsort/internal/probe"
	"github.com/subsort/subsort/pkg/types"
)

// MaxConcurrency is the hard ceiling on simultaneously scanned targets.
// Configured values above it are clamped silently; below 1 is a
// configuration error caught at load time.
const MaxConcurrency = 200

// Options holds scan-wide execution parameters.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	Delay       time.Duration
}

// Scanner orchestrates concurrent target scans.
type Scanner struct {
	registry *Registry
	client   *probe.Client
	opts     Options
	log      *slog.Logger

	enabled []Module
}

// New creates a scanner backed by the given registry and probe client.
func New(registry *Registry, client *probe.Client, opts Options, log *slog.Logger) *Scanner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Concurrency > MaxConcurrency {
		opts.Concurrency = MaxConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Scanner{
		registry: registry,
		client:   client,
		opts:     opts,
		log:      log.With("component", "scanner"),
	}
}

// Enable instantiates the named modules in order. Unknown names are
// configuration errors reported before any scanning starts.
func (s *Scanner) Enable(names []string) error {
	for _, name := range names {
		m, err := s.registry.Build(name, s.client, s.log)
		if err != nil {
			return err
		}
		s.enabled = append(s.enabled, m)
		s.log.Debug("module enabled", "module", name)
	}
	return nil
}

// EnabledModules returns the names of enabled modules in enable order.
func (s *Scanner) EnabledModules() []string {
	names := make([]string, len(s.enabled))
	for i, m := range s.enabled {
		names[i] = m.Name()
	}
	return names
}

// ScanAll scans every target concurrently under the configured ceiling
// and returns one record per target. Records arrive in completion order;
// no cross-target ordering is guaranteed. Cancelling ctx stops new
// probes promptly; targets already finished keep their records.
func (s *Scanner) ScanAll(ctx context.Context, targets []types.Target) []types.ScanRecord {
	sem := make(chan struct{}, s.opts.Concurrency)
	records := make([]types.ScanRecord, 0, len(targets))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, target := range targets {
		if ctx.Err() != nil {
			mu.Lock()
			rec := types.NewScanRecord(target)
			rec.Fields["batch_error"] = ctx.Err().Error()
			records = append(records, rec)
			mu.Unlock()
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			// Emit minimal records for targets never started.
			mu.Lock()
			rec := types.NewScanRecord(target)
			rec.Fields["batch_error"] = ctx.Err().Error()
			records = append(records, rec)
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(t types.Target) {
			defer wg.Done()
			defer func() { <-sem }()

			rec := s.scanTarget(ctx, t)

			// Throttle aggregate request rate independent of the
			// concurrency width: hold the slot through the delay.
			if s.opts.Delay > 0 {
				sleepCtx(ctx, s.opts.Delay)
			}

			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
		}(target)
	}

	wg.Wait()
	return records
}

// scanTarget runs every enabled module sequentially against one target.
// Failure isolation is per module: a timeout or error becomes a marker
// field and the remaining modules still run.
func (s *Scanner) scanTarget(ctx context.Context, target types.Target) (rec types.ScanRecord) {
	rec = types.NewScanRecord(target)

	defer func() {
		// Nothing below should panic, but a hostile response must
		// never abort the batch; downgrade to a minimal record.
		if r := recover(); r != nil {
			s.log.Error("target scan panic", "target", target.String(), "panic", r)
			rec = types.NewScanRecord(target)
			rec.Fields["batch_error"] = fmt.Sprint(r)
		}
	}()

	for _, m := range s.enabled {
		fields, err := s.runModule(ctx, m, target)
		switch {
		case err == nil:
			rec.Fields.Merge(fields)
		case errors.Is(err, context.DeadlineExceeded):
			s.log.Warn("module timed out", "module", m.Name(), "target", target.String())
			rec.Fields[m.Name()+"_timeout"] = true
		default:
			s.log.Warn("module failed", "module", m.Name(), "target", target.String(), "err", err)
			rec.Fields[m.Name()+"_error"] = err.Error()
		}
	}

	return rec
}

// runModule invokes one module under its individual deadline of twice
// the request timeout, converting any propagating panic into an error.
// Modules already catch their own faults; this is the second safety
// layer.
func (s *Scanner) runModule(ctx context.Context, m Module, target types.Target) (types.Fields, error) {
	mctx, cancel := context.WithTimeout(ctx, 2*s.opts.Timeout)
	defer cancel()

	type result struct {
		fields types.Fields
		err    error
	}

	// Buffered so a module finishing after the deadline can deliver its
	// result and exit without anyone receiving it. The goroutine shares
	// nothing with the caller besides this channel.
	done := make(chan result, 1)
	go func() {
		var res result
		defer func() {
			if r := recover(); r != nil {
				res = result{err: fmt.Errorf("module panic: %v", r)}
			}
			done <- res
		}()
		res.fields, res.err = m.Scan(mctx, target)
	}()

	select {
	case res := <-done:
		if res.err == nil && mctx.Err() == context.DeadlineExceeded {
			return nil, context.DeadlineExceeded
		}
		return res.fields, res.err
	case <-mctx.Done():
		// The module goroutine is abandoned; it holds no reference to
		// the record so nothing is corrupted.
		if mctx.Err() == context.DeadlineExceeded {
			return nil, context.DeadlineExceeded
		}
		return nil, mctx.Err()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
