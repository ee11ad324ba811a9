package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/krisis/internal/model"
)

var (
	cfgFile string
	verbose bool

	// logger is built in the root preamble and shared by all commands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "krisis",
	Short: "Krisis - Decision-analysis scaffold (non-normative)",
	Long: `Krisis is an open-source reasoning scaffold for analyzing target systems
and the operating environments they sit in, ahead of a decision.

It does not decide, rank, score, optimize, or recommend.

Krisis runs analytical frameworks over provided problem context material,
extracts explicit claims with their assumptions and unknowns, and surfaces
where human judgment is required. Framework disagreement is a valid and
expected outcome.

The Decision Owner retains full responsibility for all judgments.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute dispatches to the selected subcommand. main exits non-zero
// on the returned error.
func Execute() error {
	return rootCmd.Execute()
}

// version is stamped at build time:
// go build -ldflags "-X github.com/ppiankov/krisis/internal/cli.version=v1.2.3"
var version = "v0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("krisis " + version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.krisis/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig points viper at the config file (--config flag or the
// default search path) and enables KRISIS_* environment overrides.
func initConfig() {
	// A .env file in the working directory seeds API keys for local runs
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err != nil {
		// Environment overrides still apply without a home directory.
		fmt.Fprintf(os.Stderr, "Warning: cannot locate home directory: %v\n", err)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".krisis"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// KRISIS_LLM_PROVIDER maps to llm.provider, and so on
	viper.SetEnvPrefix("KRISIS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine, defaults and environment cover it
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig resolves the effective configuration: defaults, then config
// file, then KRISIS_* environment variables. Commands apply their own flag
// overrides on top of the returned value.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if viper.IsSet("llm.provider") {
		cfg.LLM.Provider = viper.GetString("llm.provider")
	}
	if viper.IsSet("llm.model") {
		cfg.LLM.Model = viper.GetString("llm.model")
	}
	if viper.IsSet("llm.base_url") {
		cfg.LLM.BaseURL = viper.GetString("llm.base_url")
	}
	if viper.IsSet("llm.temperature") {
		cfg.LLM.Temperature = float32(viper.GetFloat64("llm.temperature"))
	}
	if viper.IsSet("llm.max_tokens") {
		cfg.LLM.MaxTokens = viper.GetInt("llm.max_tokens")
	}
	if viper.IsSet("llm.timeout") {
		cfg.LLM.Timeout = viper.GetDuration("llm.timeout")
	}
	if viper.IsSet("analysis.max_retries") {
		cfg.Analysis.MaxRetries = viper.GetInt("analysis.max_retries")
	}
	if viper.IsSet("analysis.frameworks") {
		cfg.Analysis.Frameworks = viper.GetStringSlice("analysis.frameworks")
	}
	if viper.IsSet("http.timeout") {
		cfg.HTTP.Timeout = viper.GetDuration("http.timeout")
	}
	if viper.IsSet("http.user_agent") {
		cfg.HTTP.UserAgent = viper.GetString("http.user_agent")
	}
	if viper.IsSet("http.max_body_size") {
		cfg.HTTP.MaxBodySize = viper.GetInt64("http.max_body_size")
	}
	if viper.IsSet("http.respect_robots") {
		cfg.HTTP.RespectRobots = viper.GetBool("http.respect_robots")
	}
	if viper.IsSet("http.http_proxy") {
		cfg.HTTP.HTTPProxy = viper.GetString("http.http_proxy")
	}
	if viper.IsSet("http.https_proxy") {
		cfg.HTTP.HTTPSProxy = viper.GetString("http.https_proxy")
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Dir = viper.GetString("cache.dir")
	}
	if viper.IsSet("cache.ttl") {
		cfg.Cache.TTL = viper.GetDuration("cache.ttl")
	}
	if viper.IsSet("rate_limit.requests_per_second") {
		cfg.RateLimit.RequestsPerSecond = viper.GetFloat64("rate_limit.requests_per_second")
	}
	if viper.IsSet("rate_limit.burst") {
		cfg.RateLimit.Burst = viper.GetInt("rate_limit.burst")
	}
	if viper.IsSet("batch.workers") {
		cfg.Batch.Workers = viper.GetInt("batch.workers")
	}
	if viper.IsSet("storage.dir") {
		cfg.Storage.Dir = viper.GetString("storage.dir")
	}
	if viper.IsSet("output.include_footer") {
		cfg.Output.IncludeFooter = viper.GetBool("output.include_footer")
	}
	cfg.Output.Verbose = verbose

	return cfg
}

// resolveProvider fills in the provider and its API key from the
// environment. An unset provider falls back to whichever API key is
// present, OpenRouter first; Ollama needs a base URL, not a key.
func resolveProvider(cfg *model.Config) error {
	if cfg.LLM.Provider == "" {
		switch {
		case os.Getenv("OPENROUTER_API_KEY") != "":
			cfg.LLM.Provider = "openrouter"
		case os.Getenv("OPENAI_API_KEY") != "":
			cfg.LLM.Provider = "openai"
		case os.Getenv("ANTHROPIC_API_KEY") != "":
			cfg.LLM.Provider = "anthropic"
		case os.Getenv("GEMINI_API_KEY") != "":
			cfg.LLM.Provider = "gemini"
		case os.Getenv("OLLAMA_BASE_URL") != "":
			cfg.LLM.Provider = "ollama"
		default:
			return nil
		}
	}

	if cfg.LLM.APIKey != "" {
		return nil
	}

	// Get API key from environment
	switch cfg.LLM.Provider {
	case "openrouter":
		cfg.LLM.APIKey = os.Getenv("OPENROUTER_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY environment variable not set")
		}
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "gemini", "google":
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return nil
}
