package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/park285/cheese-opening-trainer/internal/openings"
	"github.com/park285/cheese-opening-trainer/internal/pgntree"
)

type lineRow struct {
	Signature string `json:"signature"`
	SAN       string `json:"san"`
	ECO       string `json:"eco,omitempty"`
	Opening   string `json:"opening,omitempty"`
}

func newLinesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lines FILE",
		Short: "List the lines of a PGN study (FILE may be -)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			parsed, err := pgntree.ParseLines(text)
			if err != nil {
				return err
			}
			rows := lineRows(parsed)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			for i, r := range rows {
				name := ""
				if r.ECO != "" {
					name = fmt.Sprintf("  [%s %s]", r.ECO, r.Opening)
				}
				fmt.Fprintf(out, "%3d. %s%s\n     %s\n", i+1, r.SAN, name, r.Signature)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print lines as JSON")
	return cmd
}

func lineRows(p *pgntree.Parsed) []lineRow {
	rows := make([]lineRow, 0, len(p.Lines))
	for i, l := range p.Lines {
		r := lineRow{Signature: p.Signatures[i], SAN: strings.Join(l.SANs(p.Tree), " ")}
		if p.Tree.RootFEN() == "" {
			r.SAN = sanText(l.SANs(p.Tree), p.Tree.Node(l[0]).Ply)
			if o, ok, err := openings.Name(l.LANs(p.Tree)); err == nil && ok {
				r.ECO, r.Opening = o.Code, o.Title
			}
		}
		rows = append(rows, r)
	}
	return rows
}

// sanText numbers moves the way PGN movetext does. firstPly is the ply of
// the first move.
func sanText(sans []string, firstPly int) string {
	var sb strings.Builder
	for i, san := range sans {
		ply := firstPly + i
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case ply%2 == 1:
			fmt.Fprintf(&sb, "%d. ", (ply+1)/2)
		case i == 0:
			fmt.Fprintf(&sb, "%d... ", ply/2)
		}
		sb.WriteString(san)
	}
	return sb.String()
}
