package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/park285/cheese-opening-trainer/internal/completion"
	"github.com/park285/cheese-opening-trainer/internal/lesson"
	"github.com/park285/cheese-opening-trainer/internal/trainerbuilder"
)

func newLessonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lesson",
		Short: "Manage stored lessons",
	}
	cmd.AddCommand(newLessonImportCmd())
	cmd.AddCommand(newLessonUpdateCmd())
	cmd.AddCommand(newLessonDeleteCmd())
	cmd.AddCommand(newLessonListCmd())
	return cmd
}

// readChapters loads one chapter per PGN file, titled by the file name.
func readChapters(cmd *cobra.Command, paths []string) ([]lesson.Chapter, error) {
	chapters := make([]lesson.Chapter, 0, len(paths))
	for _, path := range paths {
		text, err := readInput(cmd, path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		chapters = append(chapters, lesson.Chapter{Title: name, PGN: text})
	}
	return chapters, nil
}

// checkLesson validates limits and parses every chapter.
func checkLesson(d *trainerbuilder.Deps, l *lesson.Lesson) error {
	if err := d.Limits.Validate(l); err != nil {
		return err
	}
	for i, ch := range l.Chapters {
		if _, err := d.Cache.Parse(ch.PGN); err != nil {
			return fmt.Errorf("chapter %d (%s): %w", i+1, ch.Title, err)
		}
	}
	return nil
}

func newLessonImportCmd() *cobra.Command {
	var title, color string
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Create a lesson with one chapter per PGN file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := lesson.ParseColor(color)
			if err != nil {
				return err
			}
			chapters, err := readChapters(cmd, args)
			if err != nil {
				return err
			}
			return withDeps(cmd, func(d *trainerbuilder.Deps) error {
				l := lesson.New(title, side, chapters)
				if err := checkLesson(d, l); err != nil {
					return err
				}
				if err := d.Lessons.Create(cmd.Context(), l); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), l.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "lesson title")
	cmd.Flags().StringVar(&color, "color", "white", "side the user trains")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newLessonUpdateCmd() *cobra.Command {
	var title, color string
	cmd := &cobra.Command{
		Use:   "update ID [FILE...]",
		Short: "Change a lesson's title, color or chapters",
		Long: `Change a lesson's title, color or chapters.

Files replace all chapters, one chapter per file. Completed lines stay
stored; lines missing from the new PGN no longer count.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("lesson id: %w", err)
			}
			var chapters []lesson.Chapter
			if len(args) > 1 {
				if chapters, err = readChapters(cmd, args[1:]); err != nil {
					return err
				}
			}
			return withDeps(cmd, func(d *trainerbuilder.Deps) error {
				prev, err := d.Lessons.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				side := prev.UserColor
				if cmd.Flags().Changed("color") {
					if side, err = lesson.ParseColor(color); err != nil {
						return err
					}
				}
				if !cmd.Flags().Changed("title") {
					title = prev.Title
				}
				if chapters == nil {
					chapters = prev.Chapters
				}
				l := lesson.New(title, side, chapters)
				l.ID, l.CreatedAt = prev.ID, prev.CreatedAt
				if err := checkLesson(d, l); err != nil {
					return err
				}
				if err := d.Lessons.Update(cmd.Context(), l); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %d chapters\n", l.ID, len(l.Chapters))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new lesson title")
	cmd.Flags().StringVar(&color, "color", "", "new side the user trains")
	return cmd
}

func newLessonDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a lesson and its progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("lesson id: %w", err)
			}
			return withDeps(cmd, func(d *trainerbuilder.Deps) error {
				l, err := d.Lessons.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if err := d.Lessons.Delete(cmd.Context(), id); err != nil {
					return err
				}
				for i := range l.Chapters {
					if err := d.Progress.Reset(cmd.Context(), id, i); err != nil {
						return fmt.Errorf("reset chapter %d: %w", i+1, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				return nil
			})
		},
	}
}

func newLessonListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored lessons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDeps(cmd, func(d *trainerbuilder.Deps) error {
				ls, err := d.Lessons.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				for _, l := range ls {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %-5s  %2d chapters  %s\n", l.ID, l.UserColor, len(l.Chapters), l.Title)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum lessons to list")
	return cmd
}

func newProgressCmd() *cobra.Command {
	var lessonID string
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show per-chapter completion of a lesson",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(lessonID)
			if err != nil {
				return fmt.Errorf("--lesson: %w", err)
			}
			return withDeps(cmd, func(d *trainerbuilder.Deps) error {
				l, err := d.Lessons.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				stats, err := d.Progress.LoadLesson(cmd.Context(), id, len(l.Chapters))
				if err != nil {
					return err
				}
				ratios, err := completion.NewTracker(d.Cache).LessonRatios(cmd.Context(), l, stats)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for i, r := range ratios {
					fmt.Fprintf(out, "%2d. %-30s %d/%d\n", i+1, l.Chapters[i].Title, r.CompletedCount, r.TotalCount)
				}
				total := completion.Sum(ratios)
				fmt.Fprintf(out, "    %-30s %d/%d (%.0f%%)\n", "total", total.CompletedCount, total.TotalCount, total.Fraction()*100)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&lessonID, "lesson", "", "lesson ID")
	_ = cmd.MarkFlagRequired("lesson")
	cmd.AddCommand(newCompleteCmd())
	cmd.AddCommand(newResetCmd())
	return cmd
}

func newResetCmd() *cobra.Command {
	var (
		lessonID string
		chapter  int
	)
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the completed lines of a chapter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(lessonID)
			if err != nil {
				return fmt.Errorf("--lesson: %w", err)
			}
			return withDeps(cmd, func(d *trainerbuilder.Deps) error {
				l, err := d.Lessons.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if _, ok := l.Chapter(chapter - 1); !ok {
					return fmt.Errorf("chapter %d out of range (1-%d)", chapter, len(l.Chapters))
				}
				if err := d.Progress.Reset(cmd.Context(), id, chapter-1); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "chapter %d reset\n", chapter)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&lessonID, "lesson", "", "lesson ID")
	cmd.Flags().IntVar(&chapter, "chapter", 1, "chapter number, starting at 1")
	_ = cmd.MarkFlagRequired("lesson")
	return cmd
}

func newCompleteCmd() *cobra.Command {
	var (
		lessonID, line string
		chapter        int
	)
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Mark one line of a chapter as completed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(lessonID)
			if err != nil {
				return fmt.Errorf("--lesson: %w", err)
			}
			return withDeps(cmd, func(d *trainerbuilder.Deps) error {
				l, err := d.Lessons.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				ch, ok := l.Chapter(chapter - 1)
				if !ok {
					return fmt.Errorf("chapter %d out of range (1-%d)", chapter, len(l.Chapters))
				}
				parsed, err := d.Cache.Parse(ch.PGN)
				if err != nil {
					return err
				}
				sig := strings.Join(splitMoves(line), " ")
				if !slices.Contains(parsed.Signatures, sig) {
					return fmt.Errorf("%q is not a line of chapter %d", sig, chapter)
				}
				if err := d.Progress.MarkComplete(cmd.Context(), id, chapter-1, sig); err != nil {
					return err
				}
				stats, err := d.Progress.Load(cmd.Context(), id, chapter-1)
				if err != nil {
					return err
				}
				r := completion.ChapterRatio(parsed.Signatures, stats)
				fmt.Fprintf(cmd.OutOrStdout(), "chapter %d: %d/%d\n", chapter, r.CompletedCount, r.TotalCount)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&lessonID, "lesson", "", "lesson ID")
	cmd.Flags().IntVar(&chapter, "chapter", 1, "chapter number, starting at 1")
	cmd.Flags().StringVar(&line, "line", "", "line signature (coordinate moves)")
	_ = cmd.MarkFlagRequired("lesson")
	_ = cmd.MarkFlagRequired("line")
	return cmd
}
