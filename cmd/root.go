package cmd

import (
	"errors"
	"log"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/ats-screener/internal/ai/gemini"
	"github.com/spigell/ats-screener/internal/filtering"
	"github.com/spigell/ats-screener/internal/requirements"
	"github.com/spigell/ats-screener/internal/scoring"
)

const (
	app = "ats-screener"
)

type Config struct {
	Scoring      scoring.Weights     `mapstructure:"scoring"`
	Requirements requirements.Config `mapstructure:"requirements"`
	Analysis     AnalysisConfig      `mapstructure:"analysis"`
	Shortlist    filtering.Config    `mapstructure:"shortlist"`
	AI           *AIConfig           `mapstructure:"ai"`
}

type AnalysisConfig struct {
	Workers          int           `mapstructure:"workers"`
	CandidateTimeout time.Duration `mapstructure:"candidate-timeout"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	Temperature  float32       `mapstructure:"temperature"`
	MaxRetries   int           `mapstructure:"max-retries"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "ats-screener scores resumes against a job description and ranks the candidates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is ats-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("scoring.semantic-weight", scoring.DefaultSemanticWeight)
	viper.SetDefault("scoring.keyword-weight", scoring.DefaultKeywordWeight)
	viper.SetDefault("scoring.hard-requirement-weight", scoring.DefaultHardRequirementWeight)

	viper.SetDefault("requirements.headings", requirements.DefaultHeadings)
	viper.SetDefault("requirements.window-size", requirements.DefaultWindowSize)
	viper.SetDefault("requirements.max-requirements", requirements.DefaultMaxRequirements)
	viper.SetDefault("requirements.fallback-count", requirements.DefaultFallbackCount)
	viper.SetDefault("requirements.fallback-min-length", requirements.DefaultFallbackMinLength)

	viper.SetDefault("analysis.workers", runtime.NumCPU())
	viper.SetDefault("analysis.candidate-timeout", time.Duration(0))

	viper.SetDefault("shortlist.minimum-score", 0.0)
	viper.SetDefault("shortlist.top", 0)
	viper.SetDefault("shortlist.exclude", []string{})

	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", gemini.DefaultModel)
	viper.SetDefault("ai.gemini.temperature", gemini.DefaultTemperature)
	viper.SetDefault("ai.gemini.max-retries", gemini.DefaultMaxRetries)
	viper.SetDefault("ai.gemini.max-log-length", gemini.DefaultMaxLogLength)
	viper.SetDefault("ai.gemini.timeout", gemini.DefaultTimeout)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional; defaults cover every key. A broken or
	// explicitly requested but missing file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
