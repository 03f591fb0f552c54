package uci

import (
	"sort"
	"strconv"
	"strings"

	"github.com/park285/cheese-opening-trainer/internal/eval"
)

// Info is the part of a UCI "info" line the trainer consumes. Score is
// relative to the side to move, as engines report it.
type Info struct {
	MultiPV   int
	Depth     int
	Score     eval.Score
	Bound     string
	Principal []string
}

// ParseInfo decodes an "info ... score ... pv ..." line. Lines without a
// score or a principal variation are reported as not ok.
func ParseInfo(line string) (Info, bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 || parts[0] != "info" {
		return Info{}, false
	}
	info := Info{MultiPV: 1}
	scoreSet := false
	pvIdx := -1

	for i := 1; i < len(parts); i++ {
		switch parts[i] {
		case "multipv":
			if i+1 < len(parts) {
				if v, err := strconv.Atoi(parts[i+1]); err == nil && v > 0 {
					info.MultiPV = v
				}
				i++
			}
		case "depth":
			if i+1 < len(parts) {
				if v, err := strconv.Atoi(parts[i+1]); err == nil {
					info.Depth = v
				}
				i++
			}
		case "score":
			if i+2 < len(parts) {
				v, err := strconv.Atoi(parts[i+2])
				if err == nil {
					switch parts[i+1] {
					case "cp":
						info.Score = eval.CP(v)
						scoreSet = true
					case "mate":
						info.Score = eval.Mate(v)
						scoreSet = true
					}
				}
				i += 2
				if i+1 < len(parts) && (parts[i+1] == "lowerbound" || parts[i+1] == "upperbound") {
					info.Bound = parts[i+1]
					i++
				}
			}
		case "pv":
			pvIdx = i + 1
			i = len(parts)
		}
	}

	if !scoreSet || pvIdx == -1 || pvIdx >= len(parts) {
		return Info{}, false
	}
	info.Principal = append([]string(nil), parts[pvIdx:]...)
	return info, true
}

// collapse keeps the latest info per multipv slot, ordered by rank.
func collapse(m map[int]Info) []Info {
	if len(m) == 0 {
		return nil
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]Info, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
