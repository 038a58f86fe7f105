package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cascadia-hq/halcyon/pkg/cli"
	"cascadia-hq/halcyon/pkg/config"
	"cascadia-hq/halcyon/pkg/logging"
	"cascadia-hq/halcyon/pkg/resolver"
	"cascadia-hq/halcyon/pkg/rulesource"
)

var resolveFlags struct {
	rules     string
	vars      string
	delimiter string
	format    string
	watch     bool
	schedule  string
	workers   int
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a rule table against a variable file",
	Long: `Resolve every rule in a delimited rule table against a JSON or YAML
variable file, printing one outcome per rule in table order.

A rule that fails to lex, parse, or evaluate is reported as an error for
that rule only; the remaining rules still resolve.

Examples:
  # Resolve once and print text results
  halcyon resolve --rules rules.csv --vars vars.json

  # JSON output for downstream tooling
  halcyon resolve --rules rules.csv --vars vars.json --format json

  # Re-resolve whenever either file changes
  halcyon resolve --rules rules.csv --vars vars.json --watch

  # Re-resolve every night at 3 AM
  halcyon resolve --rules rules.csv --vars vars.json --schedule "0 3 * * *"`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveFlags.rules, "rules", "r", "", "rule table file (id and condition columns)")
	resolveCmd.Flags().StringVar(&resolveFlags.vars, "vars", "", "variable file (JSON or YAML mapping)")
	resolveCmd.Flags().StringVar(&resolveFlags.delimiter, "delimiter", "", "rule table column delimiter (default \";\")")
	resolveCmd.Flags().StringVar(&resolveFlags.format, "format", "text", "output format: text, json, csv")
	resolveCmd.Flags().BoolVar(&resolveFlags.watch, "watch", false, "re-resolve when source files change")
	resolveCmd.Flags().StringVar(&resolveFlags.schedule, "schedule", "", "cron expression for periodic re-resolution")
	resolveCmd.Flags().IntVar(&resolveFlags.workers, "parallel", 0, "number of evaluation workers (0 = from config)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flags override configuration.
	if resolveFlags.rules != "" {
		cfg.Source.RulesPath = resolveFlags.rules
	}
	if resolveFlags.vars != "" {
		cfg.Source.VarsPath = resolveFlags.vars
	}
	if resolveFlags.delimiter != "" {
		cfg.Source.Delimiter = resolveFlags.delimiter
	}
	if resolveFlags.watch {
		cfg.Source.Watch = true
	}
	if resolveFlags.schedule != "" {
		cfg.Source.Schedule = resolveFlags.schedule
	}
	if resolveFlags.workers > 0 {
		cfg.Resolver.Workers = resolveFlags.workers
	}

	// Flag overrides bypass Load's validation, so re-validate the result.
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if cfg.Source.RulesPath == "" {
		return cli.NewFlagError("source.rules_path", "--rules", "no rule table specified")
	}
	if cfg.Source.VarsPath == "" {
		return cli.NewFlagError("source.vars_path", "--vars", "no variable file specified")
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	r := resolver.New(logger, &resolver.Options{
		Workers:   cfg.Resolver.Workers,
		CacheSize: cfg.Resolver.CacheSize,
		CacheTTL:  time.Duration(cfg.Resolver.CacheTTL),
		Metrics:   resolver.NewMetrics(nil),
	})

	run := func(ctx context.Context) error {
		rules, err := rulesource.LoadRulesCSV(cfg.Source.RulesPath, rune(cfg.Source.Delimiter[0]))
		if err != nil {
			return err
		}

		vars, err := rulesource.LoadVars(cfg.Source.VarsPath)
		if err != nil {
			return err
		}

		results, err := r.Resolve(ctx, rules, vars)
		if err != nil {
			return err
		}

		return cli.WriteResults(os.Stdout, cli.OutputFormat(resolveFlags.format), results)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		return cli.NewCommandError("resolve", err)
	}

	if !cfg.Source.Watch && cfg.Source.Schedule == "" {
		return nil
	}

	if cfg.Source.Schedule != "" {
		sched := rulesource.NewScheduler(cfg.Source.Schedule, logger)
		if err := sched.Start(ctx, func(ctx context.Context) {
			if err := run(ctx); err != nil {
				logger.Error("scheduled resolution failed", "error", err)
			}
		}); err != nil {
			return cli.NewCommandError("resolve", err)
		}
		defer sched.Stop()
	}

	if cfg.Source.Watch {
		watcher, err := rulesource.NewWatcher(
			[]string{cfg.Source.RulesPath, cfg.Source.VarsPath},
			rulesource.DefaultDebounceInterval,
			logger,
		)
		if err != nil {
			return cli.NewCommandError("resolve", err)
		}

		// Blocks until interrupted.
		if err := watcher.Watch(ctx, func() error { return run(ctx) }); err != nil {
			return cli.NewCommandError("resolve", err)
		}
		return nil
	}

	<-ctx.Done()
	return nil
}

// loadConfig reads the --config file when given, otherwise defaults.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger from configuration; --verbose forces debug.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return logging.New(level, cfg.Logging.Format, os.Stderr)
}
