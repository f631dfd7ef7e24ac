// Package config loads the xmtpdump settings from command line flags,
// XMTPDUMP_* environment variables and an optional config file, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding flags, e.g.
// XMTPDUMP_TOPIC_PREFIX for --topic-prefix.
const EnvPrefix = "XMTPDUMP"

const (
	defaultEnv       = "production"
	defaultHexMax    = 256
	defaultColor     = "auto"
	defaultLogLevel  = "warn"
	defaultLogFormat = "console"
)

// Config holds every setting of a run.
type Config struct {
	Env     string `mapstructure:"env" validate:"oneof=local dev production"`
	BaseURL string `mapstructure:"base-url" validate:"omitempty,url"`

	Raw    bool `mapstructure:"raw"`
	Pretty bool `mapstructure:"pretty"`

	TopicContains string `mapstructure:"topic-contains"`
	TopicPrefix   string `mapstructure:"topic-prefix"`
	MaxMessages   int    `mapstructure:"max-messages" validate:"min=0"`

	OmitMessage   bool `mapstructure:"omit-message"`
	MessageMax    int  `mapstructure:"message-max" validate:"min=0"`
	DecodeMessage bool `mapstructure:"decode-message"`
	HexMax        int  `mapstructure:"hex-max" validate:"min=0"`

	Color     string `mapstructure:"color" validate:"oneof=auto always never"`
	LogLevel  string `mapstructure:"log-level" validate:"oneof=trace debug info warn error off"`
	LogFormat string `mapstructure:"log-format" validate:"oneof=console json"`

	ConfigFile  string `mapstructure:"config"`
	ShowVersion bool   `mapstructure:"version"`
}

// A UsageError means the command line could not be parsed.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// NewFlagSet returns the command line flags, writing usage and parse errors
// to output.
func NewFlagSet(name string, output io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.SortFlags = false

	fs.String("env", defaultEnv, "XMTP environment: "+strings.Join(Environments(), ", "))
	fs.String("base-url", "", "override the environment base URL (e.g. https://production.xmtp.network)")
	fs.Bool("raw", false, "print raw NDJSON lines without parsing")
	fs.Bool("pretty", false, "pretty-print JSON output")
	fs.String("topic-contains", "", "only emit envelopes whose contentTopic contains this string")
	fs.String("topic-prefix", "", "only emit envelopes whose contentTopic starts with this prefix")
	fs.Int("max-messages", 0, "stop after N messages (0 = unlimited)")
	fs.Bool("omit-message", false, "exclude the base64 message field from output")
	fs.Int("message-max", 0, "truncate the base64 message to N chars (0 = no truncation)")
	fs.Bool("decode-message", false, "decode message bytes and include hex + length fields")
	fs.Int("hex-max", defaultHexMax, "max decoded bytes to include in hex (0 = no truncation)")
	fs.String("color", defaultColor, "colorize JSON output: auto, always or never")
	fs.String("log-level", defaultLogLevel, "diagnostic log level: trace, debug, info, warn, error or off")
	fs.String("log-format", defaultLogFormat, "diagnostic log format: console or json")
	fs.String("config", "", "config file (YAML, TOML or JSON)")
	fs.Bool("version", false, "print version information")

	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: %s [flags]\n\n", name)
		fmt.Fprintf(output, "Stream and dump the XMTP global envelope feed (subscribe-all).\n\n")
		fmt.Fprintf(output, "Flags:\n%s", fs.FlagUsages())
	}
	return fs
}

// Load parses args and layers the environment and config file under them.
// Parse failures are returned as a *UsageError, and pflag.ErrHelp is
// returned as is when help was requested.
func Load(name string, args []string, output io.Writer) (*Config, error) {
	fs := NewFlagSet(name, output)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		fmt.Fprintln(output, err)
		fs.Usage()
		return nil, &UsageError{Err: err}
	}
	if fs.NArg() > 0 {
		err := &UsageError{Err: fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))}
		fmt.Fprintln(output, err)
		fs.Usage()
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	if configPath := v.GetString("config"); configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SubscribeBaseURL returns the node base URL: BaseURL if set, else the URL
// of Env.
func (c *Config) SubscribeBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	url, _ := BaseURLFor(c.Env)
	return url
}
