package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/cv-compare/internal/cv"
	"github.com/spigell/cv-compare/internal/scoring"
)

const (
	app       = "cv-compare"
	envPrefix = "CV_COMPARE"
)

type Config struct {
	NER        *ProviderConfig    `mapstructure:"ner" validate:"required"`
	Similarity *ProviderConfig    `mapstructure:"similarity" validate:"required"`
	Gemini     *GeminiConfig      `mapstructure:"gemini" validate:"required"`
	Weights    map[string]float64 `mapstructure:"weights" validate:"dive,gte=0"`
	Storage    *StorageConfig     `mapstructure:"storage" validate:"required"`
	Server     *ServerConfig      `mapstructure:"server" validate:"required"`
	Scan       *ScanConfig        `mapstructure:"scan" validate:"required"`
}

type ProviderConfig struct {
	Provider string `mapstructure:"provider" validate:"oneof=heuristic gemini token none"`
}

type GeminiConfig struct {
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxRetries     int    `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength   int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type ScanConfig struct {
	ExcludeFile string `mapstructure:"exclude-file"`
	Concurrency int    `mapstructure:"concurrency" validate:"gte=1,lte=64"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-compare extracts structured profiles from résumés and scores how similar two candidates are",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-compare.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("ner.provider", "heuristic")
	viper.SetDefault("similarity.provider", "token")
	viper.SetDefault("gemini.api-key-file", "")
	viper.SetDefault("gemini.model", "")
	viper.SetDefault("gemini.embedding-model", "")
	viper.SetDefault("gemini.max-retries", 3)
	viper.SetDefault("gemini.max-log-length", 200)
	viper.SetDefault("storage.path", "cv-compare.db")
	viper.SetDefault("server.addr", "127.0.0.1:8080")
	viper.SetDefault("scan.exclude-file", "")
	viper.SetDefault("scan.concurrency", 4)
}

func initConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit --config every key has a default.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if err := validator.New().Struct(config); err != nil {
		return config, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// weights merges the configured overrides into the default table. Keys are
// field names in any case.
func (c *Config) weights() (scoring.Weights, error) {
	if len(c.Weights) == 0 {
		return scoring.DefaultWeights(), nil
	}

	overrides := make(map[cv.Field]float64, len(c.Weights))
	for k, v := range c.Weights {
		f := cv.Field(strings.ToUpper(strings.ReplaceAll(k, "-", "_")))
		if !f.Known() {
			return nil, fmt.Errorf("%w: unknown field %q", scoring.ErrInvalidWeights, k)
		}
		overrides[f] = v
	}

	weights := scoring.DefaultWeights().Merge(overrides)
	return weights, weights.Validate()
}
