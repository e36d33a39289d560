// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package check implements the cargo-avail command.
package check

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/cargo-avail/internal/act/cli"
	"github.com/google/cargo-avail/internal/config"
	"github.com/google/cargo-avail/pkg/avail"
	"github.com/google/cargo-avail/pkg/registry/cratesio"
	"github.com/google/cargo-avail/pkg/registry/cratesio/index"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// Config holds all configuration for the command.
type Config struct {
	Names         []string
	Manifests     []string
	Quiet         bool
	AvailableOnly bool
	JSON          bool
	ConfigPath    string
	Concurrency   int
	Timeout       time.Duration
	IndexURL      string
	IndexRepo     string
	SyncIndex     bool
	SyncIndexFrom string
	MinInterval   time.Duration
	UserAgent     string
	Cache         bool
	Reserved      []string
	Details       bool
	Progress      bool
	ListReserved  bool
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.JSON && (c.Quiet || c.AvailableOnly) {
		return errors.New("--json cannot be combined with --quiet or --available-only")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must not be negative")
	}
	if c.Timeout < 0 || c.MinInterval < 0 {
		return errors.New("durations must not be negative")
	}
	if c.IndexURL != "" && c.IndexRepo != "" {
		return errors.New("--index-url and --index-repo are mutually exclusive")
	}
	if c.SyncIndex && c.IndexRepo == "" {
		return errors.New("--sync-index requires --index-repo")
	}
	if c.IndexURL != "" {
		u, err := url.Parse(c.IndexURL)
		if err != nil {
			return errors.Wrap(err, "parsing index URL")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.Errorf("index URL must be http or https: %s", c.IndexURL)
		}
	}
	return nil
}

// apply fills in values from a config file for flags not set on the command line.
func (c *Config) apply(flags *pflag.FlagSet, f *config.File) error {
	unset := func(name string) bool { return !flags.Changed(name) }
	// The index source is a single setting: either flag overrides both file keys.
	if unset("index-url") && unset("index-repo") {
		if f.IndexURL != "" {
			c.IndexURL = f.IndexURL
		}
		if f.IndexRepo != "" {
			c.IndexRepo = f.IndexRepo
		}
	}
	if unset("concurrency") && f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if unset("user-agent") && f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if unset("cache") && f.Cache {
		c.Cache = true
	}
	if unset("reserve") && len(f.Reserved) > 0 {
		c.Reserved = f.Reserved
	}
	timeout, err := f.TimeoutDuration()
	if err != nil {
		return err
	}
	if unset("timeout") && timeout != 0 {
		c.Timeout = timeout
	}
	interval, err := f.MinIntervalDuration()
	if err != nil {
		return err
	}
	if unset("min-interval") && interval != 0 {
		c.MinInterval = interval
	}
	return nil
}

// Deps holds dependencies for the command.
type Deps struct {
	IO cli.IO
	// Index and Registry replace the ones derived from Config when set.
	Index    index.Index
	Registry cratesio.Registry
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(context.Context) (*Deps, error) {
	return &Deps{}, nil
}

func parseArgs(cfg *Config, args []string) error {
	cfg.Names = args
	return nil
}

// Output is the result of a run.
type Output struct {
	Results []avail.Result
	Outcome avail.Outcome
}

// ExitCode is 0 when every name is available, 1 when some name cannot be
// used and 3 when some name could not be checked.
func (o Output) ExitCode() int { return o.Outcome.ExitCode() }

var errNoNames = errors.New("no crate names provided")

// Handler contains the business logic for checking names.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*Output, error) {
	reserved := reservedNames(cfg.Reserved)
	if cfg.ListReserved {
		for _, name := range reserved.List() {
			fmt.Fprintln(deps.IO.Out, name)
		}
		return &Output{}, nil
	}
	names := append([]string(nil), cfg.Names...)
	for _, path := range cfg.Manifests {
		pkg, err := cratesio.ReadPackage(path)
		if err != nil {
			return nil, &cli.ExitError{Code: cli.UsageExitCode, Err: err}
		}
		if !pkg.Publishable() {
			log.Printf("%s: %s is not published to crates.io\n", path, pkg.Name)
		}
		names = append(names, pkg.Name)
	}
	if !cli.IsTerminal(deps.IO.In) {
		fromStdin, err := readNames(deps.IO.In)
		if err != nil {
			return nil, &cli.ExitError{Code: cli.UsageExitCode, Err: errors.Wrap(err, "reading stdin")}
		}
		names = append(names, fromStdin...)
	}
	if len(names) == 0 {
		return nil, &cli.ExitError{Code: cli.UsageExitCode, Err: errNoNames}
	}
	names = avail.Dedupe(names)
	transport := avail.TransportOptions{
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.Timeout,
		MinInterval: cfg.MinInterval,
		Cache:       cfg.Cache,
	}
	idx := deps.Index
	if idx == nil {
		var err error
		if idx, err = openIndex(ctx, cfg, transport); err != nil {
			return nil, &cli.ExitError{Code: cli.UsageExitCode, Err: err}
		}
	}
	checker := &avail.Checker{Index: idx, Reserved: reserved}
	opts := avail.BatchOptions{Concurrency: cfg.Concurrency}
	var bar *pb.ProgressBar
	if cfg.Progress && !cfg.Quiet {
		bar = pb.New(len(names))
		bar.Output = deps.IO.Err
		bar.ShowTimeLeft = true
		bar.Start()
		opts.OnResult = func(avail.Result) { bar.Increment() }
	}
	results := checker.CheckAll(ctx, names, opts)
	if bar != nil {
		bar.Finish()
	}
	var details []string
	if cfg.Details && !cfg.Quiet {
		reg := deps.Registry
		if reg == nil {
			reg = cratesio.HTTPRegistry{Client: avail.NewTransport(transport)}
		}
		details = fetchDetails(ctx, reg, results, cfg.Concurrency)
	}
	if !cfg.Quiet {
		if err := render(deps.IO, cfg, results, details); err != nil {
			return nil, errors.Wrap(err, "writing results")
		}
	}
	return &Output{Results: results, Outcome: avail.Summarize(results)}, nil
}

func reservedNames(extra []string) *cratesio.ReservedNames {
	if len(extra) == 0 {
		return cratesio.DefaultReservedNames()
	}
	return cratesio.NewReservedNames(append(cratesio.DefaultReservedNames().List(), extra...)...)
}

// readNames returns the trimmed, non-blank lines of r.
func readNames(r io.Reader) ([]string, error) {
	var names []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		if line := strings.TrimSpace(s.Text()); line != "" {
			names = append(names, line)
		}
	}
	return names, s.Err()
}

func openIndex(ctx context.Context, cfg Config, transport avail.TransportOptions) (index.Index, error) {
	if cfg.IndexRepo != "" {
		fs := osfs.New(cfg.IndexRepo)
		if cfg.SyncIndex {
			log.Printf("Syncing index clone at %s...\n", cfg.IndexRepo)
			if err := index.Sync(ctx, &index.RepoFetcher{URL: cfg.SyncIndexFrom}, fs); err != nil {
				return nil, errors.Wrap(err, "syncing index")
			}
		}
		idx, err := index.OpenGitIndex(fs)
		if err != nil {
			return nil, errors.Wrapf(err, "opening index at %s", cfg.IndexRepo)
		}
		return idx, nil
	}
	var u *url.URL
	if cfg.IndexURL != "" {
		var err error
		if u, err = url.Parse(cfg.IndexURL); err != nil {
			return nil, errors.Wrap(err, "parsing index URL")
		}
	}
	return avail.NewIndex(u, transport), nil
}

// fetchDetails describes the published crate behind each taken result.
// Failures are logged and leave the detail empty.
func fetchDetails(ctx context.Context, reg cratesio.Registry, results []avail.Result, concurrency int) []string {
	details := make([]string, len(results))
	if concurrency <= 0 {
		concurrency = avail.MaxConcurrentRequests
	}
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, r := range results {
		if r.Status() != avail.StatusTaken {
			continue
		}
		g.Go(func() error {
			c, err := reg.Crate(ctx, r.Name)
			if err != nil {
				log.Printf("fetching details for %s: %v\n", r.Name, err)
				return nil
			}
			details[i] = describe(c.Metadata)
			return nil
		})
	}
	g.Wait()
	return details
}

func describe(m cratesio.Metadata) string {
	var parts []string
	if m.Name != "" {
		parts = append(parts, "published as "+m.Name)
	}
	if m.MaxVersion != "" {
		parts = append(parts, "latest "+m.MaxVersion)
	}
	if m.Repository != "" {
		parts = append(parts, m.Repository)
	}
	return strings.Join(parts, ", ")
}

// Command creates a new cargo-avail command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "cargo-avail [flags] [NAMES...]",
		Short: "Check whether crate names are truly available on crates.io",
		Long: `Check whether crate names are truly available on crates.io.

Names are read from the arguments and, when stdin is not a terminal, from
stdin, one per line. Each name is checked against the crates.io naming rules,
the reserved names (std, core, alloc, nul, com0, ...) and the crates.io index,
treating hyphens and underscores as equivalent.

Arguments starting with a hyphen that are not flags, such as -foo or ---test,
are checked as names. Unknown long options (--foo) remain usage errors.

Recently deleted crates cannot be detected, and a name passing all checks
could still fail at publish time.

Exit status: 0 if all names are available, 1 if any is taken, reserved or
invalid, 2 on usage errors, 3 if any name could not be checked.`,
		Args: cobra.ArbitraryArgs,
		// Silence errors because we will print the error ourselves in main.
		SilenceErrors: true,
		// Don't show usage for every error.
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.ConfigPath == "" {
				return nil
			}
			f, err := config.Load(cfg.ConfigPath)
			if err != nil {
				return &cli.ExitError{Code: cli.UsageExitCode, Err: err}
			}
			return cfg.apply(cmd.Flags(), f)
		},
		RunE: cli.RunE(
			&cfg,
			parseArgs,
			InitDeps,
			Handler,
		),
	}
	cmd.Flags().AddFlagSet(flagSet(cmd.Name(), &cfg))
	cmd.MarkFlagsMutuallyExclusive("quiet", "json")
	cmd.MarkFlagsMutuallyExclusive("available-only", "json")
	cmd.MarkFlagsMutuallyExclusive("index-url", "index-repo")
	return cmd
}

// flagSet returns the command-line flags for the Config struct.
func flagSet(name string, cfg *Config) *pflag.FlagSet {
	set := pflag.NewFlagSet(name, pflag.ContinueOnError)
	set.BoolVarP(&cfg.Quiet, "quiet", "q", false, "suppress output, exit code only")
	set.BoolVarP(&cfg.AvailableOnly, "available-only", "a", false, "only print available names (and names that could not be checked)")
	set.BoolVar(&cfg.JSON, "json", false, "output results as NDJSON (one JSON object per line)")
	set.StringArrayVar(&cfg.Manifests, "manifest-path", nil, "also check the package name declared by this Cargo.toml (repeatable)")
	set.StringVar(&cfg.ConfigPath, "config", "", "a TOML or YAML config file; flags take precedence")
	set.IntVar(&cfg.Concurrency, "concurrency", avail.MaxConcurrentRequests, "maximum number of names checked at once")
	set.DurationVar(&cfg.Timeout, "timeout", index.DefaultTimeout, "timeout for each index request")
	set.StringVar(&cfg.IndexURL, "index-url", "", "sparse index base URL (default "+index.DefaultURL.String()+")")
	set.StringVar(&cfg.IndexRepo, "index-repo", "", "check against a local clone of the crates.io-index git repository instead")
	set.BoolVar(&cfg.SyncIndex, "sync-index", false, "clone or update --index-repo before checking")
	set.StringVar(&cfg.SyncIndexFrom, "sync-index-from", "", "git URL to sync --index-repo from (default "+index.DefaultRepoURL+")")
	set.DurationVar(&cfg.MinInterval, "min-interval", 0, "minimum interval between index requests, widened when the index pushes back")
	set.StringVar(&cfg.UserAgent, "user-agent", "", "User-Agent for index requests")
	set.BoolVar(&cfg.Cache, "cache", false, "share responses between identical requests")
	set.StringSliceVar(&cfg.Reserved, "reserve", nil, "additional names to treat as reserved")
	set.BoolVar(&cfg.Details, "details", false, "show the published crate behind taken names, using the crates.io API")
	set.BoolVar(&cfg.Progress, "progress", false, "show a progress bar on stderr")
	set.BoolVar(&cfg.ListReserved, "list-reserved", false, "print the reserved names and exit")
	return set
}

// SubcommandArgs strips the subcommand name cargo passes when run as
// `cargo avail`. Cargo sets CARGO for the subcommands it runs; when invoked
// directly, "avail" is a crate name like any other.
func SubcommandArgs(args []string, getenv func(string) string) []string {
	if getenv("CARGO") != "" && len(args) > 0 && args[0] == "avail" {
		return args[1:]
	}
	return args
}

// HyphenNames moves arguments that look like flags but are not among cmd's
// flags after a "--", so they are checked as names. Unknown long options of
// the form --name are left for the flag parser to reject.
func HyphenNames(cmd *cobra.Command, args []string) []string {
	cmd.InitDefaultHelpFlag()
	cmd.InitDefaultVersionFlag()
	flags := cmd.Flags()
	opts, names := []string{}, []string(nil)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return append(append(append(opts, "--"), names...), args[i+1:]...)
		case len(arg) < 2 || arg[0] != '-':
			names = append(names, arg)
		case strings.HasPrefix(arg, "--") && len(arg) > 2 && arg[2] != '-':
			opts = append(opts, arg)
			name, _, inline := strings.Cut(arg[2:], "=")
			if f := flags.Lookup(name); f != nil && !inline && f.NoOptDefVal == "" && i+1 < len(args) {
				i++
				opts = append(opts, args[i])
			}
		default:
			f := flags.ShorthandLookup(arg[1:2])
			if arg[1] == '-' || f == nil {
				names = append(names, arg)
				continue
			}
			opts = append(opts, arg)
			if len(arg) == 2 && f.NoOptDefVal == "" && i+1 < len(args) {
				i++
				opts = append(opts, args[i])
			}
		}
	}
	if len(names) == 0 {
		return opts
	}
	return append(append(opts, "--"), names...)
}
