package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/park285/cheese-opening-trainer/internal/notation"
)

func newConvertCmd() *cobra.Command {
	var fen, moves, san, lan string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert one move between SAN and coordinate notation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (san == "") == (lan == "") {
				return errors.New("exactly one of --san or --lan is required")
			}
			board, err := notation.StartBoard(fen)
			if err != nil {
				return err
			}
			board, err = board.PlayLANs(splitMoves(moves))
			if err != nil {
				return err
			}

			var mv notation.Move
			if san != "" {
				mv, _, err = board.PlaySAN(san)
			} else {
				parsed, perr := notation.ParseLAN(lan)
				if perr != nil {
					return perr
				}
				mv, _, err = board.PlayLAN(parsed)
			}
			if err != nil {
				return err
			}
			if san != "" {
				fmt.Fprintln(cmd.OutOrStdout(), mv.LAN.String())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), mv.SAN)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fen, "fen", "", "starting position (default: standard)")
	cmd.Flags().StringVar(&moves, "moves", "", "coordinate moves played before the converted one")
	cmd.Flags().StringVar(&san, "san", "", "SAN move to convert to coordinates")
	cmd.Flags().StringVar(&lan, "lan", "", "coordinate move to convert to SAN")
	return cmd
}
