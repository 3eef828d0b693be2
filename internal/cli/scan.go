package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/subsort/subsort/internal/input"
	"github.com/subsort/subsort/internal/logging"
	"github.com/subsort/subsort/internal/modules"
	"github.com/subsort/subsort/internal/output"
	"github.com/subsort/subsort/internal/probe"
	"github.com/subsort/subsort/internal/scanner"
	"github.com/subsort/subsort/pkg/types"
)

var (
	inputFlag   string
	outputFlag  string
	modulesFlag []string
	allFlag     bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [hostname ...]",
	Short: "Scan a list of hostnames",
	Long: `Reads hostnames from a file (-i), from the command line, or from
stdin, probes each one over HTTPS with HTTP fallback, and runs the
enabled analysis modules against every reachable target.`,
	RunE: runScan,
}

func init() {
	flags := scanCmd.Flags()
	flags.StringVarP(&inputFlag, "input", "i", "", "file with one hostname per line (default: stdin)")
	flags.StringVarP(&outputFlag, "output", "o", "", "write results to this file (default: stdout)")
	flags.StringSliceVarP(&modulesFlag, "modules", "m", nil, "comma-separated modules to enable")
	flags.BoolVar(&allFlag, "all", false, "enable every module")

	flags.Int("threads", 50, "concurrent targets (max 200)")
	flags.Duration("timeout", 5*time.Second, "per-request timeout")
	flags.Int("retries", 3, "retries per failed request")
	flags.Duration("delay", 0, "pause after each target completes")
	flags.Float64("rate", 0, "global requests-per-second cap (0 = unlimited)")
	flags.String("user-agent", "", "pin a User-Agent instead of rotating")
	flags.Bool("follow-redirects", true, "follow HTTP redirects")
	flags.Bool("ignore-ssl", false, "skip TLS certificate verification")
	flags.StringP("output-format", "f", "txt", "output format: json, csv, txt, table")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	if cmd.Flags().Changed("modules") {
		cfg.Modules = modulesFlag
	}

	log, closer, err := logging.New(verboseFlag, logFileFlag)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	targets, err := readTargets(args)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no valid targets to scan")
	}

	formatter, err := output.GetFormatter(cfg.OutputFormat)
	if err != nil {
		return err
	}

	reg := scanner.NewRegistry()
	modules.RegisterAll(reg)

	enabled := cfg.Modules
	if allFlag {
		enabled = reg.Names()
	}

	client := probe.New(probe.Options{
		Timeout:           cfg.Timeout,
		Retries:           cfg.Retries,
		Concurrency:       cfg.Concurrency,
		UserAgent:         cfg.UserAgent,
		FollowRedirects:   cfg.FollowRedirects,
		SkipTLSVerify:     cfg.SkipTLSVerify,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, log)

	sc := scanner.New(reg, client, scanner.Options{
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout,
		Delay:       cfg.Delay,
	}, log)
	if err := sc.Enable(enabled); err != nil {
		return err
	}

	if !silentFlag {
		printBanner(len(targets), sc.EnabledModules())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	records := sc.ScanAll(ctx, targets)

	var w io.Writer = os.Stdout
	if outputFlag != "" {
		path := outputPath(outputFlag, cfg.OutputFormat)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
		if !silentFlag {
			fmt.Fprintf(os.Stderr, "Writing results to %s\n", path)
		}
	}

	if err := formatter.Format(w, records, sc.EnabledModules()); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	if !silentFlag {
		fmt.Fprintf(os.Stderr, "Scanned %d targets in %s\n",
			len(records), time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// readTargets resolves the three input sources in priority order:
// positional arguments, the input file, then stdin.
func readTargets(args []string) ([]types.Target, error) {
	if len(args) > 0 {
		var targets []types.Target
		for _, arg := range args {
			t := types.NormalizeTarget(arg)
			if t.Valid() {
				targets = append(targets, t)
			}
		}
		return targets, nil
	}
	if inputFlag != "" {
		return input.ReadFile(inputFlag)
	}
	return input.Read(os.Stdin)
}

// outputPath appends a timestamp and format extension when the user
// gave a bare name, so repeated runs never clobber earlier results.
func outputPath(path, format string) string {
	if filepath.Ext(path) != "" {
		return path
	}
	ext := map[string]string{"json": ".json", "csv": ".csv", "table": ".txt"}[format]
	if ext == "" {
		ext = ".txt"
	}
	return path + "_" + time.Now().Format("20060102_150405") + ext
}

func printBanner(targetCount int, enabled []string) {
	fmt.Fprintln(os.Stderr, color.CyanString("subsort %s", version))
	fmt.Fprintf(os.Stderr, "Targets: %d  Modules: %v\n\n", targetCount, enabled)
}
