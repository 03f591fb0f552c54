// Package main provides the trainer CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/cheese-opening-trainer/internal/config"
	"github.com/park285/cheese-opening-trainer/internal/obslog"
	"github.com/park285/cheese-opening-trainer/internal/trainerbuilder"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	obslog.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trainer",
		Short:         "Opening repertoire trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return obslog.InitFromEnv()
		},
	}

	rootCmd.AddCommand(newLinesCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newJudgeCmd())
	rootCmd.AddCommand(newLessonCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newBookCmd())
	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

// withDeps loads configuration and builds the components for one command.
func withDeps(cmd *cobra.Command, fn func(d *trainerbuilder.Deps) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	d, err := trainerbuilder.New(cmd.Context(), cfg, obslog.L())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(); cerr != nil {
			obslog.L().Warn("close dependencies", zap.Error(cerr))
		}
	}()
	return fn(d)
}

// readInput reads path, or stdin for "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func splitMoves(s string) []string {
	return strings.Fields(strings.ReplaceAll(s, ",", " "))
}
