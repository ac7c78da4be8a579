package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kudosx/kudosx/internal/config"
	"github.com/kudosx/kudosx/internal/hosting"
	"github.com/kudosx/kudosx/internal/install"
	"github.com/kudosx/kudosx/internal/logging"
	"github.com/kudosx/kudosx/internal/manager"
	"github.com/kudosx/kudosx/internal/registry"
	"github.com/kudosx/kudosx/internal/resolver"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"

	// Global flags
	verbose    bool
	workDir    string
	configPath string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "kudosx",
	Short: "Install and update Claude Code skills",
	Long: `kudosx manages Claude Code skills published in source repositories.

Skills are installed globally (~/.claude/skills) or into the current
project (./.claude/skills). Each installation records its version so
kudosx can tell when a newer release is available.

Run without a subcommand in a terminal to open the interactive browser.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "C", "", "working directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.kudosx/config.toml, .kudosx/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("kudosx {{.Version}}\n")
}

// isTerminal reports whether stdout is an interactive terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func runRoot(cmd *cobra.Command, args []string) error {
	if isTerminal() {
		return runExplore(cmd, args)
	}
	return runList(cmd, args)
}

// newTagLister builds the tag source used for version resolution.
var newTagLister = func(cfg *config.Config, logger *slog.Logger) hosting.TagLister {
	return &hosting.GitTagLister{
		BaseURL: cfg.Hosting.BaseURL,
		Timeout: cfg.Hosting.TagTimeout,
		Logger:  logger,
	}
}

// getWorkDir returns the effective working directory.
func getWorkDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return dir, nil
}

// app holds the components shared by commands.
type app struct {
	cfg      *config.Config
	workDir  string
	logger   *slog.Logger
	closer   io.Closer
	cache    *registry.Cache
	resolver *resolver.Resolver
	manager  *manager.Manager
}

// Close releases the log file, if one was opened.
func (a *app) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// loadConfig reads --config when given, otherwise the standard locations.
func loadConfig(dir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromDir(dir)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires configuration, logging, the registry, version resolution
// and the installer. Console logs go to logOut.
func newApp(logOut io.Writer) (*app, error) {
	dir, err := getWorkDir()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.NewFromConfig(cfg, dir, logging.Options{Verbose: verbose, Stderr: logOut})
	if err != nil {
		return nil, err
	}

	registryClient := hosting.NewClient(hosting.Options{
		Verify:  cfg.Hosting.Verify,
		Timeout: cfg.Registry.Timeout,
		Logger:  logger,
	})
	cache := registry.NewCache(
		registry.LocalSource{Path: cfg.Registry.LocalFile},
		registry.RemoteSource{
			URL:     cfg.Registry.RemoteURL,
			Timeout: cfg.Registry.Timeout,
			Client:  registryClient,
			Logger:  logger,
		},
		logger,
	)

	res := resolver.New(cache, newTagLister(cfg, logger), logger)

	downloads := hosting.NewClient(hosting.Options{
		Verify:  cfg.Hosting.Verify,
		Timeout: cfg.Hosting.DownloadTimeout,
		Logger:  logger,
	})
	fetcher := install.NewFetcher(downloads, cfg.Hosting.BaseURL, cfg.Hosting.Branch, logger)

	mgr := manager.New(manager.Options{
		Config:    cfg,
		WorkDir:   dir,
		Registry:  cache,
		Resolver:  res,
		Installer: fetcher,
		Logger:    logger,
	})

	return &app{
		cfg:      cfg,
		workDir:  dir,
		logger:   logger,
		closer:   closer,
		cache:    cache,
		resolver: res,
		manager:  mgr,
	}, nil
}

// colorOff reports whether output to w should be plain.
func colorOff(w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return true
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}
