package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/api"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Extract the structured profile of a résumé",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		analyze(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("format", "f", formatJSON, "output format: json or yaml")
	analyzeCmd.Flags().BoolP("sections", "s", false, "print the detected sections instead of the profile")
}

func analyze(cmd *cobra.Command, path string) {
	ctx, cancel := signalContext()
	defer cancel()

	config, logger := setup("stderr")

	format, _ := cmd.Flags().GetString("format")
	if format != formatJSON && format != formatYAML {
		logger.Fatal("unsupported output format", zap.String("format", format))
	}
	onlySections, _ := cmd.Flags().GetBool("sections")

	engine := newEngineOrDie(config, logger)

	sections, profile := engine.Analyze(ctx, readDocument(path, logger))
	logger.Info("résumé analyzed",
		zap.String("document", path),
		zap.Int("sections", len(sections)),
		zap.Int("fields", len(profile.Fields())),
	)

	var out any = api.AnalyzeResponse{Sections: sections, Profile: profile}
	if onlySections {
		out = sections
	}

	if err := writeStructured(os.Stdout, format, out); err != nil {
		logger.Fatal(fmt.Sprintf("writing %s output", format), zap.Error(err))
	}
}
