// i18ndesk — localization project manager: JSON locale file analysis,
// review tracking, and bulk editing over an HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/i18ndesk/i18ndesk/analysis"
	"github.com/i18ndesk/i18ndesk/backup"
	"github.com/i18ndesk/i18ndesk/config"
	"github.com/i18ndesk/i18ndesk/i18n"
	"github.com/i18ndesk/i18ndesk/project"
	"github.com/i18ndesk/i18ndesk/review"
	"github.com/i18ndesk/i18ndesk/server"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var configPath string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "i18ndesk",
		Short: "Localization project manager for JSON locale files",
		Long: `i18ndesk — localization project manager.

Manages translation projects backed by flat JSON locale files: detects
quality issues (empty values, untranslated strings, placeholder mismatches,
overlong text), tracks per-key review status, compares locales, and applies
bulk edits with automatic pre-write backups.

Commands:
  serve       Start the HTTP API
  status      Show registered projects and their translation statistics
  version     Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default i18ndesk.yaml in the service root)")

	root.AddCommand(
		newServeCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("i18ndesk version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// serve (HTTP API)
// ---------------------------------------------------------------------------

// http.Server timeouts.
const (
	readHeaderTimeout = 15 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 30 * time.Second

	shutdownDeadline = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the i18ndesk HTTP API.

All persisted state (project registry, upload storage, backups, review
ledgers) lives under the configured service root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host to bind to")
	cmd.Flags().IntVar(&port, "port", 3333, "Port to listen on")

	return cmd
}

func runServe(cfg *config.Config) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	registry := project.NewStore(cfg.DataDir(), cfg.UploadsDir())
	ledger := review.NewLedger(cfg.ReviewDir())
	backups := backup.NewWriter(cfg.BackupsDir())
	engine := analysis.NewEngine(ledger, backups)
	srv := server.New(registry, engine, ledger, backups)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	log.Info().Str("addr", cfg.Addr()).Str("root", cfg.Root).Msg(i18n.T("Starting i18n manager API"))

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg(i18n.T("Shutting down"))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// status (read-only: registered projects + translation stats)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show registered projects and their translation statistics",
		Long: `Show every registered project with its detected locales and
per-locale completion. Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			runStatus(cfg)
			return nil
		},
	}

	return cmd
}

func runStatus(cfg *config.Config) {
	registry := project.NewStore(cfg.DataDir(), cfg.UploadsDir())
	projects := registry.List()

	if len(projects) == 0 {
		logInfo("%s", i18n.T("No projects registered"))
		return
	}

	fmt.Fprintf(os.Stderr, "\n%s%s%s (%s)\n", colorBlue, i18n.T("Projects"), colorReset,
		fmt.Sprintf(i18n.N("%d project", "%d projects", len(projects)), len(projects)))
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	for _, p := range projects {
		fmt.Fprintf(os.Stderr, "  %s%s%s  [%s]\n", colorGreen, p.Name, colorReset, p.ID)
		fmt.Fprintf(os.Stderr, "    %s: %s (%s)\n", i18n.T("source"), p.SourcePath, p.SourceType)

		if len(p.Locales) == 0 {
			fmt.Fprintf(os.Stderr, "    %s\n", i18n.T("no locale files detected"))
			continue
		}

		for _, info := range p.Locales {
			stat := p.Stats.Locales[info.Code]
			color := colorGreen
			if stat.Completion < 100 {
				color = colorYellow
			}
			fmt.Fprintf(os.Stderr, "    %-8s %-24s %4d %s, %3d %s  %s%3d%%%s\n",
				info.Code, info.Name, stat.Keys, i18n.T("keys"),
				stat.Empty, i18n.T("empty"), color, stat.Completion, colorReset)
		}
	}
	fmt.Fprintln(os.Stderr)
}
