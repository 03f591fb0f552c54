// Package completion tracks which lines of a chapter the user has completed
// and derives completion ratios from the chapter's current PGN.
package completion

// LineStats is the stored progress of one line, keyed by its signature.
type LineStats struct {
	IsComplete bool   `json:"isComplete"`
	LineKey    string `json:"lineKey"`
}

// ChapterStats maps line signatures to their progress. Entries whose line no
// longer exists are kept and ignored.
type ChapterStats map[string]LineStats

// MarkComplete returns a copy of s with key recorded as completed. s itself
// is left unchanged.
func (s ChapterStats) MarkComplete(key string) ChapterStats {
	out := s.Clone()
	out[key] = LineStats{IsComplete: true, LineKey: key}
	return out
}

func (s ChapterStats) Clone() ChapterStats {
	out := make(ChapterStats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

type Ratio struct {
	CompletedCount int `json:"completedCount"`
	TotalCount     int `json:"totalCount"`
}

// Fraction is CompletedCount/TotalCount, 0 for an empty chapter.
func (r Ratio) Fraction() float64 {
	if r.TotalCount == 0 {
		return 0
	}
	return float64(r.CompletedCount) / float64(r.TotalCount)
}

func (r Ratio) Done() bool { return r.TotalCount > 0 && r.CompletedCount == r.TotalCount }

// ChapterRatio counts the distinct signatures and how many of them stats
// marks complete.
func ChapterRatio(signatures []string, stats ChapterStats) Ratio {
	seen := make(map[string]struct{}, len(signatures))
	var r Ratio
	for _, sig := range signatures {
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		r.TotalCount++
		if st, ok := stats[sig]; ok && st.IsComplete {
			r.CompletedCount++
		}
	}
	return r
}

// Sum adds ratios, e.g. to report a whole lesson.
func Sum(ratios []Ratio) Ratio {
	var out Ratio
	for _, r := range ratios {
		out.CompletedCount += r.CompletedCount
		out.TotalCount += r.TotalCount
	}
	return out
}
