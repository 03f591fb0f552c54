package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/park285/cheese-opening-trainer/internal/config"
	"github.com/park285/cheese-opening-trainer/internal/openings"
)

func newBookCmd() *cobra.Command {
	var (
		path, fen, moves string
		maxPly, minWeight int
		asJSON            bool
	)
	cmd := &cobra.Command{
		Use:   "book",
		Short: "List polyglot book lines from a position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				path = cfg.OpeningBookPath
			}
			if strings.TrimSpace(path) == "" {
				return errors.New("--book or OPENING_BOOK_PATH is required")
			}
			if minWeight < 0 || minWeight > 0xFFFF {
				return fmt.Errorf("--min-weight %d out of range", minWeight)
			}
			book, err := openings.LoadBook(path)
			if err != nil {
				return err
			}
			prefix := splitMoves(moves)
			lines, err := book.Walk(fen, prefix, openings.WalkOptions{MaxPly: maxPly, MinWeight: uint16(minWeight)})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(lines)
			}
			firstPly := 0
			if strings.TrimSpace(fen) == "" {
				firstPly = len(prefix) + 1
			}
			for i, l := range lines {
				text := strings.Join(l.SANs, " ")
				if firstPly > 0 {
					text = sanText(l.SANs, firstPly)
				}
				fmt.Fprintf(out, "%3d. %s  [%d]", i+1, text, l.Weight)
				if l.Opening != nil {
					fmt.Fprintf(out, "  %s %s", l.Opening.Code, l.Opening.Title)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "book", "", "polyglot book file (default: OPENING_BOOK_PATH)")
	cmd.Flags().StringVar(&fen, "fen", "", "starting position (default: standard)")
	cmd.Flags().StringVar(&moves, "moves", "", "coordinate moves leading to the position")
	cmd.Flags().IntVar(&maxPly, "max-ply", 8, "maximum moves added per line")
	cmd.Flags().IntVar(&minWeight, "min-weight", 1, "skip book moves below this weight")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
