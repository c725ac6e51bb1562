package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/analysis"
	"github.com/spigell/cv-compare/internal/cv"
	"github.com/spigell/cv-compare/internal/document"
	"github.com/spigell/cv-compare/internal/logger"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// setup builds the logger and reads the config. Any failure is fatal.
func setup(output string) (*Config, *zap.Logger) {
	logger, err := newLogger(output)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return config, logger
}

func newEngineOrDie(config *Config, logger *zap.Logger) *analysis.Engine {
	engine, err := newEngine(config, logger)
	if err != nil {
		logger.Fatal("building the analysis engine", zap.Error(err))
	}
	return engine
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// readDocument returns the text of the file at path. Extraction failures are
// logged and yield empty text, which analyzes to an empty profile.
func readDocument(path string, logger *zap.Logger) string {
	text, err := document.ReadFile(path)
	if err != nil {
		logger.Warn("extracting document text failed, analyzing empty text",
			zap.String("document", path),
			zap.Error(err),
		)
		return ""
	}
	logger.Debug("document text extracted", zap.String("document", path), zap.Int("length", len(text)))
	return text
}

// loadProfile returns the candidate profile for path: a .json file is decoded
// as a stored profile, anything else is read as a résumé and analyzed.
func loadProfile(ctx context.Context, engine *analysis.Engine, path string, logger *zap.Logger) (cv.Profile, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return cv.Profile{}, fmt.Errorf("reading profile %s: %w", path, err)
		}
		profile, err := cv.DecodeProfile(data)
		if err != nil {
			return cv.Profile{}, fmt.Errorf("decoding profile %s: %w", path, err)
		}
		return profile, nil
	}

	_, profile := engine.Analyze(ctx, readDocument(path, logger))
	return profile, nil
}

// writeStructured prints v as indented JSON or as YAML.
func writeStructured(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if format == formatYAML {
		if data, err = yaml.JSONToYAML(data); err != nil {
			return err
		}
	} else {
		data = append(data, '\n')
	}

	_, err = w.Write(data)
	return err
}

func newLogger(output string) (*zap.Logger, error) {
	return logger.NewWithOutput(viper.GetBool("json"), viper.GetBool("debug"), output)
}
