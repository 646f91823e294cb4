package internal

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/kiln/pkg/logger"
	"github.com/dmitrymomot/kiln/pkg/site"
)

type flags struct {
	config    string
	logLevel  string
	logFormat string
	mode      string
	app       string
	out       string
	snapshot  string
	content   string
	workers   int
	publish   bool
	addr      string
}

// Command returns the kiln command tree building pages. Options are applied
// after the configuration loaded from flags, the config file and the
// environment.
func Command(pages []site.Module, opts ...Option) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "kiln",
		Short:         "Build a static site from declarative page requests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&f.config, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&f.logFormat, "log-format", "", "log format (text, json)")
	root.PersistentFlags().StringVarP(&f.out, "out", "o", "", "output directory")

	newApp := func(cmd *cobra.Command) (*App, Config, error) {
		cfg, err := f.load(cmd)
		if err != nil {
			return nil, Config{}, err
		}
		all := append([]Option{
			WithConfig(cfg),
			WithPages(pages...),
			WithLogger(cfg.Logger(cmd.ErrOrStderr())),
		}, opts...)
		return New(all...), cfg, nil
	}

	build := &cobra.Command{
		Use:   "build",
		Short: "Resolve every request and write the site",
		Long: `Resolve the requests of every page and write the site.

In live mode requests go to the network and the content directory, and the
minimized snapshot is saved for later replay builds. In replay mode every
response comes from the snapshot and a missing one fails the build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cfg, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer flushSentry(cfg)

			start := time.Now()
			report, err := app.Build(cmd.Context())
			if report != nil {
				m := report.Manifest
				fmt.Fprintf(cmd.OutOrStdout(), "built %d route(s), skipped %d, %d response(s) in %s\n",
					len(m.Routes), len(m.Skipped), m.Responses, time.Since(start).Round(time.Millisecond))
				if report.Snapshot != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "snapshot: %s\n", report.Snapshot)
				}
				if report.Published > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "published %d file(s)\n", report.Published)
				}
			}
			return err
		},
	}
	build.Flags().StringVar(&f.mode, "mode", "", "build mode (live, replay)")
	build.Flags().StringVar(&f.app, "app", "", "response retention (cli, browser)")
	build.Flags().StringVar(&f.snapshot, "snapshot", "", "snapshot file")
	build.Flags().StringVar(&f.content, "content", "", "content directory")
	build.Flags().IntVar(&f.workers, "workers", 0, "routes resolved concurrently")
	build.Flags().BoolVar(&f.publish, "publish", false, "upload the output to S3 after the build")

	check := &cobra.Command{
		Use:   "check",
		Short: "Run the preflight checks without building",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := newApp(cmd)
			if err != nil {
				return err
			}
			report, err := app.Check(cmd.Context())
			if report != nil {
				names := make([]string, 0, len(report.Checks))
				for name := range report.Checks {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					res := report.Checks[name]
					line := fmt.Sprintf("%-10s %s", name, res.Status)
					if res.Error != "" {
						line += ": " + res.Error
					}
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
			}
			return err
		},
	}
	check.Flags().StringVar(&f.mode, "mode", "", "build mode (live, replay)")
	check.Flags().StringVar(&f.snapshot, "snapshot", "", "snapshot file")
	check.Flags().StringVar(&f.content, "content", "", "content directory")

	preview := &cobra.Command{
		Use:   "preview",
		Short: "Serve the built site locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := newApp(cmd)
			if err != nil {
				return err
			}
			return app.Preview(cmd.Context(), f.addr)
		},
	}
	preview.Flags().StringVar(&f.addr, "addr", "", "listen address")

	root.AddCommand(build, check, preview)
	return root
}

// load reads the config file and the environment, then applies the flags
// that were set.
func (f *flags) load(cmd *cobra.Command) (Config, error) {
	cfg, err := LoadConfig(f.config)
	if err != nil {
		return Config{}, err
	}

	set := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if set("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if set("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if set("out") {
		cfg.OutputDir = f.out
	}
	if set("mode") {
		cfg.Mode = f.mode
	}
	if set("app") {
		cfg.App = f.app
	}
	if set("snapshot") {
		cfg.Snapshot = f.snapshot
	}
	if set("content") {
		cfg.ContentDir = f.content
	}
	if set("workers") {
		cfg.Workers = f.workers
	}
	if set("publish") {
		cfg.Publish.Enabled = f.publish
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

func flushSentry(cfg Config) {
	if cfg.Sentry.DSN != "" {
		logger.Flush(2 * time.Second)
	}
}
