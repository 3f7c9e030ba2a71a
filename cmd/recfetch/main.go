package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"recfetch/internal/config"
	"recfetch/internal/loader"
	"recfetch/internal/logger"
	"recfetch/internal/naming"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		verbose bool
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "recfetch [dest-dir]",
		Short: "Download the latest recording from the recorder once",
		Long: `Connects to the recorder's FTP server, picks the latest recording and
saves it under the schedule-based name, like POST /download on recfetchd does.

Configuration is read from the environment and .env (see recfetchd).
dest-dir overrides DEST_DIR.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			godotenv.Load()
			if len(args) == 1 {
				os.Setenv("DEST_DIR", args[0])
			}

			cfg, err := config.Load()
			if err != nil {
				return fail(fmt.Errorf("load config failed: %w", err))
			}

			// прогресс-бар пишет в stderr, логи туда же, поэтому по умолчанию только предупреждения
			cfg.Logger.Plaintext = true
			cfg.Logger.Level = slog.LevelWarn
			if verbose {
				cfg.Logger.Level = slog.LevelDebug
			}
			slog.SetDefault(logger.New(os.Stderr, cfg.Logger))

			path, err := fetch(cmd.Context(), cfg, quiet)
			if err != nil {
				return fail(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "don't show progress bar")

	return cmd
}

func fetch(ctx context.Context, cfg config.Config, quiet bool) (string, error) {
	names := naming.New(cfg.Naming.Schedule, cfg.Naming.FolderPrefix, cfg.Naming.DayNames)
	ldr := loader.New(loader.NewFTPDialer(cfg.FTP), names, loader.Config{
		Prefix:        cfg.FTP.Prefix,
		ProgressEvery: cfg.Loader.ProgressEvery,
	})

	if quiet {
		return ldr.Fetch(ctx, cfg.Loader.DestDir, nil)
	}

	bar := progressbar.NewOptions(1000,
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	defer bar.Exit()

	// шкала в десятых долях процента, как на иконке
	return ldr.Fetch(ctx, cfg.Loader.DestDir, func(p float64) {
		_ = bar.Set(int(p * 10))
	})
}

func fail(err error) error {
	fmt.Fprintln(os.Stderr, "error:", err)
	return err
}
