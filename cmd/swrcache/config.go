package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xhit/go-str2duration/v2"
)

const envPrefix = "SWRCACHE"

// Settings is the resolved CLI configuration.
// Precedence: flags, then SWRCACHE_* env, then the config file, then defaults.
type Settings struct {
	Redis       string // empty => in-process memory store
	Namespace   string
	Expires     time.Duration
	SoftExpires time.Duration
	LogLevel    string
}

func bindFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "config file (yaml, json or toml)")
	f.String("redis", "", "redis address host:port; empty uses an in-process store")
	f.String("namespace", "swrcache", "key namespace")
	f.String("expires", "30m", "hard TTL, e.g. 30m, 1h30m, 1d")
	f.String("soft-expires", "0s", "stale window before hard expiry; 0 disables revalidation")
	f.String("log-level", "info", "debug, info, warn or error")
}

func loadSettings(cmd *cobra.Command) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return Settings{}, err
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	s := Settings{
		Redis:     v.GetString("redis"),
		Namespace: v.GetString("namespace"),
		LogLevel:  v.GetString("log-level"),
	}
	var err error
	if s.Expires, err = parseDuration("expires", v.GetString("expires")); err != nil {
		return Settings{}, err
	}
	if s.SoftExpires, err = parseDuration("soft-expires", v.GetString("soft-expires")); err != nil {
		return Settings{}, err
	}
	if s.Expires <= 0 {
		return Settings{}, errors.New("expires must be positive")
	}
	if s.SoftExpires < 0 || s.SoftExpires >= s.Expires {
		return Settings{}, fmt.Errorf("soft-expires (%s) must be in [0, expires=%s)", s.SoftExpires, s.Expires)
	}
	return s, nil
}

// parseDuration accepts Go durations plus days and weeks ("1d12h", "2w").
func parseDuration(name, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return d, nil
}
