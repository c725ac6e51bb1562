package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/report"
	"github.com/spigell/cv-compare/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved comparisons",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		listHistory(cmd)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved comparison",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		showHistory(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "number of comparisons to list")
	historyShowCmd.Flags().StringP("format", "f", formatText, "output format: text, json or yaml")
}

func openStore(config *Config, logger *zap.Logger) *storage.Store {
	store, err := storage.Open(config.Storage.Path)
	if err != nil {
		logger.Fatal("opening history storage", zap.String("path", config.Storage.Path), zap.Error(err))
	}
	return store
}

func listHistory(cmd *cobra.Command) {
	config, logger := setup("stderr")
	store := openStore(config, logger)
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	items, err := store.List(cmd.Context(), limit)
	if err != nil {
		logger.Fatal("listing comparisons", zap.Error(err))
	}

	if len(items) == 0 {
		logger.Info("history is empty", zap.String("storage", config.Storage.Path))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tCANDIDATE A\tCANDIDATE B\tSCORE\tTIER")
	for _, s := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.3f\t%s\n",
			s.ID,
			s.CreatedAt.Local().Format(time.DateTime),
			orDash(firstNonEmpty(s.NameA, s.SourceA)),
			orDash(firstNonEmpty(s.NameB, s.SourceB)),
			s.Composite,
			report.Tier(s.Composite),
		)
	}
	w.Flush()
}

func showHistory(cmd *cobra.Command, id string) {
	config, logger := setup("stderr")
	store := openStore(config, logger)
	defer store.Close()

	format, _ := cmd.Flags().GetString("format")

	rec, err := store.Get(cmd.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		logger.Fatal("comparison not found", zap.String("id", id))
	}
	if err != nil {
		logger.Fatal("loading comparison", zap.Error(err))
	}

	if format != formatText {
		if err := writeStructured(os.Stdout, format, rec); err != nil {
			logger.Fatal("writing comparison", zap.Error(err))
		}
		return
	}

	fmt.Printf("%s (%s)\n", rec.ID, rec.CreatedAt.Local().Format(time.DateTime))
	fmt.Println(strings.Join(rec.Comparison.Report, "\n"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
