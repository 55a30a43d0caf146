package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"kitmerge/internal/config"
	"kitmerge/internal/report"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every command needs once the configuration is loaded.
type app struct {
	cfg      *config.Config
	progress io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{progress: os.Stderr}

	rootCmd := &cobra.Command{
		Use:   "kitmerge",
		Short: "Merge translated kits back into their original documents",
		Long: `kitmerge extracts documents into translation kits (original copy, skeleton
recording and XLIFF work file) and merges the translated XLIFF back into the
original format, keeping markup, placeholders and segmentation intact.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load()
			zerolog.SetGlobalLevel(a.cfg.LogLevel)
			if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
				a.progress = io.Discard
			}
		},
	}
	rootCmd.PersistentFlags().Bool("quiet", false, "Hide progress bars")

	rootCmd.AddCommand(a.mergeCmd())
	rootCmd.AddCommand(a.extractCmd())
	rootCmd.AddCommand(a.historyCmd())

	return rootCmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openStore returns the PostgreSQL history store when DATABASE_URL is set,
// and an in-memory one otherwise. The returned func releases the pool.
func openStore(ctx context.Context, cfg *config.Config) (report.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		return report.NewMemoryStore(), func() {}, nil
	}

	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	store := report.NewPGStore(pgPool)
	if err := store.EnsureSchema(ctx); err != nil {
		pgPool.Close()
		return nil, nil, err
	}
	return store, pgPool.Close, nil
}

func newProgress(out io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(int64(total),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
