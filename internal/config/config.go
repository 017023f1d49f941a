// Package config loads the CLI and server configuration from defaults,
// config file, environment, and flags, in ascending priority.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths     PathsConfig     `mapstructure:"paths"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Server    ServerConfig    `mapstructure:"server"`
	LogLevel  string          `mapstructure:"log_level"`
}

type PathsConfig struct {
	TokenizerPath string `mapstructure:"tokenizer_path"`
	CacheDir      string `mapstructure:"cache_dir"`
}

type TokenizerConfig struct {
	SpecialTokenPolicy string `mapstructure:"special_token_policy"`
	AddBOS             bool   `mapstructure:"add_bos"`
	AddEOS             bool   `mapstructure:"add_eos"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	Workers         int    `mapstructure:"workers"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	MaxAudioBytes   int    `mapstructure:"max_audio_bytes"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			TokenizerPath: "models/tekken.json",
			CacheDir:      "models",
		},
		Tokenizer: TokenizerConfig{
			SpecialTokenPolicy: "keep",
			AddBOS:             true,
			AddEOS:             false,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Workers:         4,
			ShutdownTimeout: 30,
			RequestTimeout:  60,
			MaxTextBytes:    1 << 20,
			MaxAudioBytes:   32 << 20,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("tokenizer", defaults.Paths.TokenizerPath, "Path to tokenizer artifact (tekken.json)")
	fs.String("paths-cache-dir", defaults.Paths.CacheDir, "Directory for fetched tokenizer artifacts")
	fs.String("special-token-policy", defaults.Tokenizer.SpecialTokenPolicy, "Decode policy for special tokens (keep|ignore|error)")
	fs.Bool("add-bos", defaults.Tokenizer.AddBOS, "Prepend the beginning-of-sequence token when encoding")
	fs.Bool("add-eos", defaults.Tokenizer.AddEOS, "Append the end-of-sequence token when encoding")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("workers", defaults.Server.Workers, "Max concurrent tokenization requests")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown timeout in seconds")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request timeout in seconds")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Max accepted text payload size")
	fs.Int("server-max-audio-bytes", defaults.Server.MaxAudioBytes, "Max accepted audio payload size")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("TEKKEN")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("tekken")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.tokenizer_path", c.Paths.TokenizerPath)
	v.SetDefault("paths.cache_dir", c.Paths.CacheDir)
	v.SetDefault("tokenizer.special_token_policy", c.Tokenizer.SpecialTokenPolicy)
	v.SetDefault("tokenizer.add_bos", c.Tokenizer.AddBOS)
	v.SetDefault("tokenizer.add_eos", c.Tokenizer.AddEOS)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.max_audio_bytes", c.Server.MaxAudioBytes)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.tokenizer_path", "tokenizer")
	v.RegisterAlias("paths.cache_dir", "paths-cache-dir")
	v.RegisterAlias("tokenizer.special_token_policy", "special-token-policy")
	v.RegisterAlias("tokenizer.add_bos", "add-bos")
	v.RegisterAlias("tokenizer.add_eos", "add-eos")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.workers", "workers")
	v.RegisterAlias("server.shutdown_timeout", "server-shutdown-timeout")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
	v.RegisterAlias("server.max_text_bytes", "server-max-text-bytes")
	v.RegisterAlias("server.max_audio_bytes", "server-max-audio-bytes")
	v.RegisterAlias("log_level", "log-level")
}
