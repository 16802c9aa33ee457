package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/jingkaihe/skills-mcp/pkg/presenter"
	"github.com/jingkaihe/skills-mcp/pkg/server"
	"github.com/jingkaihe/skills-mcp/pkg/skills"
	"github.com/jingkaihe/skills-mcp/pkg/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	transportStdio = "stdio"
	transportHTTP  = "http"
)

type ServeConfig struct {
	SkillsDirs         []string
	Excludes           []string
	StalenessThreshold time.Duration
	ScanConcurrency    int
	Watch              bool
	Transport          string
	HTTPAddr           string
	HTTPBaseURL        string
}

func NewServeConfig() *ServeConfig {
	return &ServeConfig{
		StalenessThreshold: skills.DefaultStalenessThreshold,
		ScanConcurrency:    skills.DefaultScanConcurrency,
		Watch:              false,
		Transport:          transportStdio,
		HTTPAddr:           server.DefaultHTTPAddr,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the skills MCP server",
	Long: `Scan the skills directories and serve the skills over MCP.

The initial scan must succeed, otherwise the server exits. After that the cache is
refreshed lazily: list_skills rescans once the last scan is older than the staleness
threshold, and get_skill always reads instructions from disk. With --watch, file
system events mark the cache stale immediately.

Logs and status messages go to stderr; with the stdio transport stdout carries
only the MCP protocol.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		config := getServeConfigFromFlags(cmd)
		if err := runServeCommand(ctx, config); err != nil {
			presenter.Error(err, "skills MCP server failed")
			os.Exit(1)
		}
	},
}

func init() {
	addServeFlags(serveCmd, NewServeConfig())
}

// addServeFlags registers the serve flags on cmd. The root command carries
// them too because it runs serve when invoked without a subcommand.
func addServeFlags(cmd *cobra.Command, defaults *ServeConfig) {
	cmd.Flags().Duration("staleness-threshold", defaults.StalenessThreshold, "How old the last scan may get before list_skills rescans")
	cmd.Flags().Int("scan-concurrency", defaults.ScanConcurrency, "Maximum number of SKILL.md files read in parallel during a scan")
	cmd.Flags().Bool("watch", defaults.Watch, "Watch the skills directories and mark the cache stale on changes")
	cmd.Flags().String("transport", defaults.Transport, "MCP transport (stdio, http)")
	cmd.Flags().String("http-addr", defaults.HTTPAddr, "Listen address for the http transport")
	cmd.Flags().String("http-base-url", "", "Public base URL advertised to SSE clients (defaults to http://<http-addr>)")
}

// getServeConfigFromFlags builds the config from defaults, then config file
// and environment, then explicitly set flags
func getServeConfigFromFlags(cmd *cobra.Command) *ServeConfig {
	config := NewServeConfig()

	config.SkillsDirs = viper.GetStringSlice("skills_dirs")
	config.Excludes = viper.GetStringSlice("exclude")

	if viper.IsSet("staleness_threshold") {
		config.StalenessThreshold = viper.GetDuration("staleness_threshold")
	}
	if viper.IsSet("scan_concurrency") {
		config.ScanConcurrency = viper.GetInt("scan_concurrency")
	}
	if viper.IsSet("watch") {
		config.Watch = viper.GetBool("watch")
	}
	if viper.IsSet("transport") {
		config.Transport = viper.GetString("transport")
	}
	if viper.IsSet("http.addr") {
		config.HTTPAddr = viper.GetString("http.addr")
	}
	if viper.IsSet("http.base_url") {
		config.HTTPBaseURL = viper.GetString("http.base_url")
	}

	flags := cmd.Flags()
	if flags.Changed("staleness-threshold") {
		config.StalenessThreshold, _ = flags.GetDuration("staleness-threshold")
	}
	if flags.Changed("scan-concurrency") {
		config.ScanConcurrency, _ = flags.GetInt("scan-concurrency")
	}
	if flags.Changed("watch") {
		config.Watch, _ = flags.GetBool("watch")
	}
	if flags.Changed("transport") {
		config.Transport, _ = flags.GetString("transport")
	}
	if flags.Changed("http-addr") {
		config.HTTPAddr, _ = flags.GetString("http-addr")
	}
	if flags.Changed("http-base-url") {
		config.HTTPBaseURL, _ = flags.GetString("http-base-url")
	}

	return config
}

// validateSkillsDirs requires at least one directory and every directory to
// be absolute, listing all offending paths at once
func validateSkillsDirs(dirs []string) error {
	if len(dirs) == 0 {
		return errors.New("at least one --skills-dir is required\n\nUsage: skills-mcp --skills-dir /path/to/skills\n       skills-mcp -s /path/to/skills -s /path/to/more-skills")
	}

	var relative []string
	for _, dir := range dirs {
		if !filepath.IsAbs(dir) {
			relative = append(relative, "  - "+dir)
		}
	}
	if len(relative) > 0 {
		return errors.Errorf("all skills directories must be absolute paths\nNon-absolute paths found:\n%s", strings.Join(relative, "\n"))
	}

	return nil
}

func validateServeConfig(config *ServeConfig) error {
	if err := validateSkillsDirs(config.SkillsDirs); err != nil {
		return err
	}

	if config.StalenessThreshold < 0 {
		return errors.Errorf("staleness threshold cannot be negative: %s", config.StalenessThreshold)
	}
	if config.ScanConcurrency < 1 {
		return errors.Errorf("scan concurrency must be at least 1, got %d", config.ScanConcurrency)
	}

	switch config.Transport {
	case transportStdio:
	case transportHTTP:
		httpConfig := &server.HTTPConfig{Addr: config.HTTPAddr, BaseURL: config.HTTPBaseURL}
		if err := httpConfig.Validate(); err != nil {
			return err
		}
	default:
		return errors.Errorf("unknown transport %q, must be one of: %s, %s", config.Transport, transportStdio, transportHTTP)
	}

	return nil
}

// newRegistry validates the config and builds a registry from it
func newRegistry(config *ServeConfig) (*skills.Registry, error) {
	if err := validateServeConfig(config); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return skills.NewRegistry(
		skills.WithSkillDirs(config.SkillsDirs...),
		skills.WithExcludes(config.Excludes...),
		skills.WithStalenessThreshold(config.StalenessThreshold),
		skills.WithScanConcurrency(config.ScanConcurrency),
	)
}

func runServeCommand(ctx context.Context, config *ServeConfig) error {
	registry, err := newRegistry(config)
	if err != nil {
		return err
	}

	presenter.Info(fmt.Sprintf("Skills MCP server %s starting...", version.Get().Short()))
	presenter.Section("Skills directories")
	for _, dir := range registry.Dirs() {
		presenter.Item(dir, "")
	}

	presenter.Info("Scanning skills directories...")
	if err := registry.Scan(ctx); err != nil {
		return errors.Wrap(err, "failed to scan skills directories")
	}

	infos := registry.SkillInfos()
	presenter.Success(fmt.Sprintf("Loaded %d skill(s)", len(infos)))
	for _, info := range infos {
		presenter.Item(info.ID, info.Metadata.Name)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if config.Watch {
		startWatcher(ctx, registry)
	}

	mcpServer := server.New(registry)

	switch config.Transport {
	case transportHTTP:
		httpServer, err := server.NewHTTPServer(mcpServer, registry, &server.HTTPConfig{
			Addr:    config.HTTPAddr,
			BaseURL: config.HTTPBaseURL,
		})
		if err != nil {
			return err
		}
		presenter.Info(fmt.Sprintf("Serving MCP on http://%s/mcp (SSE at /sse)", config.HTTPAddr))
		presenter.Info("Press Ctrl+C to stop the server")
		err = httpServer.Start(ctx)
		presenter.Info("Skills MCP server stopped")
		return err
	default:
		presenter.Info("Starting stdio transport...")
		return server.ServeStdio(ctx, mcpServer, os.Stdin, os.Stdout)
	}
}

// startWatcher runs a watcher until ctx is done. Failing to watch is not
// fatal since staleness still bounds how out of date the cache can get.
func startWatcher(ctx context.Context, registry *skills.Registry) {
	watcher, err := skills.NewWatcher(registry, registry.Dirs()...)
	if err != nil {
		logger.G(ctx).WithError(err).Warn("failed to watch skills directories")
		presenter.Warning("File watching disabled: " + err.Error())
		return
	}

	go func() {
		if err := watcher.Run(ctx); err != nil {
			logger.G(ctx).WithError(err).Warn("skills watcher stopped")
		}
	}()
	logger.G(ctx).WithField("dirs", registry.Dirs()).Info("watching skills directories for changes")
}
