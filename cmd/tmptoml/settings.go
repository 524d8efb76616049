package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TMPTOML"

// settings is the resolved CLI configuration. Precedence, highest first:
// flags, TMPTOML_* environment variables, the --settings file, defaults.
type settings struct {
	Format      string
	Lenient     bool
	LogLevel    slog.Level
	Output      string
	Watch       bool
	Interactive bool
	DumpVars    bool
	Set         []string
	HTTPTimeout time.Duration
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String("settings", "", "settings file (YAML or TOML) providing defaults for these flags")
	flags.String("format", "auto", "config format: auto, toml, yaml or json")
	flags.Bool("lenient", false, "render undefined template variables as empty instead of failing")
	flags.StringP("log-level", "l", "warn", "log level (debug, info, warn, error)")
	flags.StringP("output", "o", "", "write the rendered text to this file instead of stdout")
	flags.BoolP("watch", "w", false, "re-render whenever the config or template changes")
	flags.BoolP("interactive", "i", false, "prompt for missing group ids")
	flags.Bool("dump-vars", false, "print the flattened variables as TOML instead of rendering")
	flags.StringArray("set", nil, "override a variable (KEY=VALUE, repeatable)")
	flags.Duration("http-timeout", 30*time.Second, "timeout for configs fetched from http(s) URLs")
}

func loadSettings(flags *pflag.FlagSet) (settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return settings{}, fmt.Errorf("bind flags: %w", err)
	}

	if file := v.GetString("settings"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return settings{}, fmt.Errorf("read settings %s: %w", file, err)
		}
	}

	set, err := overridePairs(flags, v)
	if err != nil {
		return settings{}, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		return settings{}, fmt.Errorf("log level: %w", err)
	}

	return settings{
		Format:      v.GetString("format"),
		Lenient:     v.GetBool("lenient"),
		LogLevel:    level,
		Output:      v.GetString("output"),
		Watch:       v.GetBool("watch"),
		Interactive: v.GetBool("interactive"),
		DumpVars:    v.GetBool("dump-vars"),
		Set:         set,
		HTTPTimeout: v.GetDuration("http-timeout"),
	}, nil
}

// overridePairs reads --set without viper's whitespace splitting. Flags keep
// each occurrence verbatim; an environment value is a comma separated list
// using CSV quoting, the same syntax pflag accepts for slice flags.
func overridePairs(flags *pflag.FlagSet, v *viper.Viper) ([]string, error) {
	if flags.Changed("set") {
		return flags.GetStringArray("set")
	}
	raw, ok := v.Get("set").(string)
	if !ok {
		return v.GetStringSlice("set"), nil
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	pairs, err := csv.NewReader(strings.NewReader(raw)).Read()
	if err != nil {
		return nil, fmt.Errorf("set: %w", err)
	}
	return pairs, nil
}
