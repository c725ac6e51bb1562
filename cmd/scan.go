package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-compare/internal/cv"
	"github.com/spigell/cv-compare/internal/document"
	"github.com/spigell/cv-compare/internal/filtering"
)

const scanFilename = "cv-compare-scan-*.json"

// scanResult is one row of a folder scan.
type scanResult struct {
	Document string     `json:"document"`
	Format   string     `json:"format"`
	Contact  cv.Contact `json:"contact"`
	Fields   []cv.Field `json:"fields"`
	Profile  cv.Profile `json:"profile"`
}

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Analyze every résumé in a folder and list the candidates",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scan(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("exclude-file", "e", "", "file with documents to skip. Default is unset.")
	scanCmd.Flags().Bool("dump", false, "dump the scanned profiles to a temporary JSON file")
	scanCmd.Flags().Bool("append-exclude", false, "append scanned documents to the exclude file")
	scanCmd.Flags().Bool("keep-duplicates", false, "do not skip documents with identical content")

	viper.BindPFlag("scan.exclude-file", scanCmd.Flags().Lookup("exclude-file"))
}

func scan(cmd *cobra.Command, dir string) {
	ctx, cancel := signalContext()
	defer cancel()

	config, logger := setup("stderr")
	engine := newEngineOrDie(config, logger)

	docs, err := document.Discover(dir)
	if err != nil {
		logger.Fatal("listing documents", zap.Error(err))
	}
	logger.Info("documents found", zap.String("dir", dir), zap.Int("count", docs.Len()))

	steps := filtering.Default()
	if keep, _ := cmd.Flags().GetBool("keep-duplicates"); keep {
		filtering.DisableByName(steps, "duplicate_content", "keep-duplicates flag is set")
	}
	for _, s := range filtering.Describe(steps) {
		logger.Debug("filter", zap.String("name", s.Name), zap.Bool("enabled", s.Enabled), zap.String("reason", s.Reason))
	}

	docs, err = filtering.Run(ctx, &filtering.Config{ExcludeFile: config.Scan.ExcludeFile}, filtering.Deps{Logger: logger}, steps, docs)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if docs.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no documents left after filters"))
		return
	}

	results := make([]scanResult, docs.Len())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Scan.Concurrency)
	for i, doc := range docs.Items {
		g.Go(func() error {
			if err := doc.Load(); err != nil {
				logger.Warn("extracting document text failed, analyzing empty text",
					zap.String("document", doc.Name),
					zap.Error(err),
				)
			}
			_, profile := engine.Analyze(gctx, doc.Text)
			results[i] = scanResult{
				Document: doc.Name,
				Format:   string(doc.Format),
				Contact:  profile.Contact(),
				Fields:   profile.Fields(),
				Profile:  profile,
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("scan interrupted", zap.Error(err))
	}

	printScan(results)

	if dump, _ := cmd.Flags().GetBool("dump"); dump {
		filename, err := document.DumpToTmpFile(scanFilename, results)
		if err != nil {
			logger.Fatal("dump results to file", zap.Error(err))
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
	}

	if appendExclude, _ := cmd.Flags().GetBool("append-exclude"); appendExclude {
		excludeFile := config.Scan.ExcludeFile
		if excludeFile == "" {
			logger.Fatal("exclude file is not configured", zap.String("hint", "set --exclude-file or scan.exclude-file"))
		}

		excluded, err := document.GetExcludedDocumentsFromFile(excludeFile)
		if err != nil {
			logger.Fatal("reading exclude file", zap.Error(err))
		}
		excluded.Append(docs.ToExcluded())
		if err := excluded.ToFile(excludeFile); err != nil {
			logger.Fatal("writing exclude file", zap.Error(err))
		}
		logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", docs.Len()))
	}
}

func printScan(results []scanResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DOCUMENT\tNAME\tEMAIL\tPHONE\tFIELDS")
	for _, r := range results {
		fields := make([]string, 0, len(r.Fields))
		for _, f := range r.Fields {
			fields = append(fields, string(f))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Document,
			orDash(r.Contact.Name),
			orDash(r.Contact.Email),
			orDash(r.Contact.Phone),
			orDash(strings.Join(fields, ",")),
		)
	}
	w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
