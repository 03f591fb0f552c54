package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/park285/cheese-opening-trainer/internal/eval"
	"github.com/park285/cheese-opening-trainer/internal/judgement"
	"github.com/park285/cheese-opening-trainer/internal/lesson"
)

func newJudgeCmd() *cobra.Command {
	var (
		color, played, playedLAN, reference, policy string
		candidates                                  []string
	)
	cmd := &cobra.Command{
		Use:   "judge",
		Short: "Classify a move from engine scores",
		Long: `Classify a move from White-relative engine scores.

Single-score mode compares --played with --reference. With --pv the reference
is taken from the ranked candidates; --played-lan identifies the played move.

  trainer judge --color white --played "cp 10" --reference "cp 30"
  trainer judge --color black --played "cp 40" --played-lan c7c5 \
    --pv "1;cp 25;e7e5 g1f3" --pv "2;cp 40;c7c5"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			side, err := lesson.ParseColor(color)
			if err != nil {
				return err
			}
			thresholds, err := judgement.LoadThresholds(policy)
			if err != nil {
				return err
			}
			c, err := judgement.NewClassifier(thresholds)
			if err != nil {
				return err
			}
			playedScore, err := eval.ParseScore(played)
			if err != nil {
				return fmt.Errorf("--played: %w", err)
			}

			var v judgement.Verdict
			if len(candidates) == 0 {
				ref, err := eval.ParseScore(reference)
				if err != nil {
					return fmt.Errorf("--reference: %w", err)
				}
				v = c.JudgeScores(side.Chess(), playedScore, ref)
			} else {
				pvs, err := parseCandidates(candidates)
				if err != nil {
					return err
				}
				if v, err = c.Judge(side.Chess(), playedScore, pvs, strings.ToLower(playedLAN)); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (loss %.4f vs %s", v.Judgement, v.Loss, v.Reference)
			if v.ReferenceLAN != "" {
				fmt.Fprintf(out, " %s", v.ReferenceLAN)
			}
			fmt.Fprintln(out, ")")
			return nil
		},
	}
	cmd.Flags().StringVar(&color, "color", "white", "side that played the move")
	cmd.Flags().StringVar(&played, "played", "", `score after the played move, e.g. "cp 35" or "#-3"`)
	cmd.Flags().StringVar(&playedLAN, "played-lan", "", "played move in coordinates")
	cmd.Flags().StringVar(&reference, "reference", "", "reference score for single-score mode")
	cmd.Flags().StringArrayVar(&candidates, "pv", nil, `engine candidate "rank;score;moves"`)
	cmd.Flags().StringVar(&policy, "thresholds", "", "judgement policy YAML (default: built in)")
	_ = cmd.MarkFlagRequired("played")
	return cmd
}

// parseCandidates reads "rank;score;lan lan ..." entries.
func parseCandidates(raw []string) ([]eval.MultiPV, error) {
	out := make([]eval.MultiPV, 0, len(raw))
	for _, r := range raw {
		parts := strings.SplitN(r, ";", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("--pv %q: want rank;score;moves", r)
		}
		rank, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("--pv %q: bad rank: %w", r, err)
		}
		score, err := eval.ParseScore(parts[1])
		if err != nil {
			return nil, fmt.Errorf("--pv %q: %w", r, err)
		}
		out = append(out, eval.MultiPV{Rank: rank, Score: score, LANLine: splitMoves(parts[2])})
	}
	return out, nil
}
