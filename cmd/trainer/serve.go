package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/cheese-opening-trainer/internal/config"
	"github.com/park285/cheese-opening-trainer/internal/httpapi"
	"github.com/park285/cheese-opening-trainer/internal/obslog"
	"github.com/park285/cheese-opening-trainer/internal/review"
	"github.com/park285/cheese-opening-trainer/internal/trainerbuilder"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			logger := obslog.L()
			d, err := trainerbuilder.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := d.Close(); cerr != nil {
					logger.Warn("close dependencies", zap.Error(cerr))
				}
			}()

			srv, err := httpapi.New(d.HTTPDeps(logger.Named("http")))
			if err != nil {
				return err
			}
			logger.Info("trainer starting",
				zap.String("addr", cfg.HTTPAddr),
				zap.Bool("engine", d.Review != nil),
				zap.Bool("book", d.Book != nil),
			)
			return srv.ListenAndServe(cmd.Context(), cfg.HTTPAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: HTTP_ADDR or :8080)")
	return cmd
}

func newReviewCmd() *cobra.Command {
	var fen, moves, played string
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Judge a move with the configured UCI engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDeps(cmd, func(d *trainerbuilder.Deps) error {
				if d.Review == nil {
					return errors.New("STOCKFISH_PATH is required for review")
				}
				res, err := d.Review.ReviewMove(cmd.Context(), review.Request{FEN: fen, Moves: splitMoves(moves), Played: played})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s): %s, loss %.4f\n", res.Move.SAN, res.Move.LAN, res.Verdict.Judgement, res.Verdict.Loss)
				if res.BestLAN != "" {
					fmt.Fprintf(out, "best: %s (%s) at depth %d\n", res.BestSAN, res.BestLAN, res.Analysis.Depth)
				}
				if res.InBook {
					fmt.Fprintln(out, "book move")
				}
				if res.Opening != nil {
					fmt.Fprintf(out, "opening: %s %s\n", res.Opening.Code, res.Opening.Title)
				}
				for _, c := range res.Analysis.Candidates {
					fmt.Fprintf(out, "  %d. %-7s %v\n", c.Rank, c.Score, c.LANLine)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&fen, "fen", "", "starting position (default: standard)")
	cmd.Flags().StringVar(&moves, "moves", "", "coordinate moves leading to the position")
	cmd.Flags().StringVar(&played, "played", "", "move to judge, SAN or coordinates")
	_ = cmd.MarkFlagRequired("played")
	return cmd
}
