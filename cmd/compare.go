package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-compare/internal/analysis"
	"github.com/spigell/cv-compare/internal/cv"
	"github.com/spigell/cv-compare/internal/document"
	"github.com/spigell/cv-compare/internal/report"
	"github.com/spigell/cv-compare/internal/storage"
)

const (
	PromptReport       = "Show report"
	PromptFieldScores  = "Show field scores"
	PromptProfiles     = "Show extracted profiles"
	PromptSave         = "Save to history"
	PromptDumpToFile   = "Dump comparison to file"
	PromptExit         = "Exit"
	comparisonFilename = "cv-compare-*.json"
)

var errExit = errors.New("exit requested")

var comparePrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptReport, PromptFieldScores, PromptProfiles, PromptSave, PromptDumpToFile, PromptExit},
}

var compareCmd = &cobra.Command{
	Use:   "compare <a> <b>",
	Short: "Compare two résumés (PDF, DOCX, text or profile JSON)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		compare(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringP("format", "f", formatText, "output format: text, json or yaml")
	compareCmd.Flags().Bool("save", false, "store the comparison in history")
	compareCmd.Flags().BoolP("interactive", "i", false, "open a menu after the comparison")
}

func compare(cmd *cobra.Command, pathA, pathB string) {
	ctx, cancel := signalContext()
	defer cancel()

	config, logger := setup("stderr")

	format, _ := cmd.Flags().GetString("format")
	if format != formatText && format != formatJSON && format != formatYAML {
		logger.Fatal("unsupported output format", zap.String("format", format))
	}
	save, _ := cmd.Flags().GetBool("save")
	interactive, _ := cmd.Flags().GetBool("interactive")

	engine := newEngineOrDie(config, logger)

	var a, b cv.Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = loadProfile(gctx, engine, pathA, logger)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = loadProfile(gctx, engine, pathB, logger)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}

	comparison := engine.CompareProfiles(ctx, a, b)
	logger.Info("candidates compared",
		zap.Float64("composite", comparison.Score.Composite),
		zap.String("tier", report.Tier(comparison.Score.Composite)),
	)

	if err := printComparison(format, comparison); err != nil {
		logger.Fatal("writing comparison", zap.Error(err))
	}

	if save {
		if err := saveComparison(ctx, config, logger, pathA, pathB, comparison); err != nil {
			logger.Fatal("saving comparison", zap.Error(err))
		}
	}

	if !interactive {
		return
	}

	for {
		_, action, err := comparePrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, config, logger, pathA, pathB, comparison); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, config *Config, logger *zap.Logger, pathA, pathB string, c analysis.Comparison) error {
	switch action {
	case PromptReport:
		return printComparison(formatText, c)
	case PromptFieldScores:
		printFieldScores(c.Score)
		return nil
	case PromptProfiles:
		return writeStructured(os.Stdout, formatJSON, map[string]cv.Profile{
			"candidate_a": c.A,
			"candidate_b": c.B,
		})
	case PromptSave:
		return saveComparison(ctx, config, logger, pathA, pathB, c)
	case PromptDumpToFile:
		filename, err := document.DumpToTmpFile(comparisonFilename, c)
		if err != nil {
			return fmt.Errorf("dump comparison to file: %w", err)
		}
		logger.Info("dumping comparison to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printComparison(format string, c analysis.Comparison) error {
	if format != formatText {
		return writeStructured(os.Stdout, format, c)
	}
	fmt.Println(strings.Join(c.Report, "\n"))
	return nil
}

func printFieldScores(r cv.ScoreReport) {
	for _, f := range r.ScoredFields() {
		score, _ := r.Score(f)
		fmt.Printf("%-16s %.3f\n", f, score)
	}
	fmt.Printf("%-16s %.3f\n", "COMPOSITE", r.Composite)
}

func saveComparison(ctx context.Context, config *Config, logger *zap.Logger, pathA, pathB string, c analysis.Comparison) error {
	store, err := storage.Open(config.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Save(ctx, pathA, pathB, c)
	if err != nil {
		return err
	}

	logger.Info("comparison saved", zap.String("id", rec.ID), zap.String("storage", config.Storage.Path))
	return nil
}
