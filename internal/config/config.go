// Package config resolves the server's process-level settings: where the
// std/built-in dependency bundle lives on disk, and how verbosely to log.
// Everything else this repo needs (contractPath, artifactPath,
// compilerOptions) belongs to a single workspace's ralph.json and is owned
// by internal/buildfile instead.
//
// Grounded on morler-codai's config.LoadConfigs (defaults -> config file ->
// environment -> flags, unmarshaled with spf13/viper) and its
// cobra.Command persistent-flag binding; the config file search path and
// RALPH_LSP_ environment prefix are this server's own, since morler-codai's
// only exist for its own AI-provider settings.
package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the server's resolved process-level configuration.
type Config struct {
	// DependencyRoot overrides the directory the std/built-in bundle (always
	// internal/dependency's own go:embed payload) is extracted into. Empty
	// means a per-user cache directory (os.UserCacheDir()/ralph-lsp/deps).
	DependencyRoot string `mapstructure:"dependency_root"`
	// LogLevel is one of debug/info/warn/error.
	LogLevel string `mapstructure:"log_level"`
	// LogFile, if set, redirects logging away from stderr.
	LogFile string `mapstructure:"log_file"`
}

// Default mirrors the zero-config server: bundled dependency set, info
// level, stderr logging.
var Default = Config{
	DependencyRoot: "",
	LogLevel:       "info",
	LogFile:        "",
}

// v is this package's own viper instance rather than viper's package-level
// singleton, so that repeated Load calls (one per CLI invocation, or one
// per test) never see a previous call's state leak through.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("dependency_root", Default.DependencyRoot)
	v.SetDefault("log_level", Default.LogLevel)
	v.SetDefault("log_file", Default.LogFile)

	v.SetEnvPrefix("RALPH_LSP")
	v.AutomaticEnv()
	_ = v.BindEnv("dependency_root", "RALPH_LSP_DEPENDENCY_ROOT")
	_ = v.BindEnv("log_level", "RALPH_LSP_LOG_LEVEL")
	_ = v.BindEnv("log_file", "RALPH_LSP_LOG_FILE")
	return v
}

// BindFlags attaches the settings' persistent flags to cmd, so that cobra's
// own flag parsing and viper's precedence chain agree on the same names.
func BindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("dependency-root", "", "override the directory the std/built-in bundle is extracted into")
	cmd.PersistentFlags().String("log-level", Default.LogLevel, "log level: debug, info, warn, or error")
	cmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")
	cmd.PersistentFlags().String("config", "", "path to a config file (default: ~/.ralph-lsp/config.yaml)")
}

// Load resolves Config from, in ascending precedence: compiled-in defaults,
// a config file (explicit --config, else ~/.ralph-lsp/config.yaml if
// present), RALPH_LSP_-prefixed environment variables, then cmd's own
// flags.
func Load(cmd *cobra.Command) (Config, error) {
	v := newViper()

	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := homeDir()
		if err == nil {
			v.AddConfigPath(home + "/.ralph-lsp")
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && configFile != "" {
			return Config{}, err
		}
	}

	bindPFlag(v, cmd, "dependency_root", "dependency-root")
	bindPFlag(v, cmd, "log_level", "log-level")
	bindPFlag(v, cmd, "log_file", "log-file")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func bindPFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	if f := cmd.Flags().Lookup(flag); f != nil {
		_ = v.BindPFlag(key, f)
	}
}
