// Package config provides configuration management for driftline using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// Configuration lives in .driftline.yml, overridable per-key through the
// DRIFTLINE_ environment prefix and cobra flags. It covers the feed
// location and poll pacing, the host server, render behavior, and the
// three surface identifiers.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Feed     FeedConfig     `yaml:"feed"`
	Server   ServerConfig   `yaml:"server"`
	Render   RenderConfig   `yaml:"render"`
	Surfaces SurfacesConfig `yaml:"surfaces"`
	LogLevel string         `yaml:"log_level"`
}

type FeedConfig struct {
	URL            string `yaml:"url"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RenderConfig struct {
	ViewTransitions bool   `yaml:"view_transitions"`
	DefaultRoute    string `yaml:"default_route"`
}

type SurfacesConfig struct {
	Mount string `yaml:"mount"`
	Nav   string `yaml:"nav"`
	Title string `yaml:"title"`
}

// PollInterval returns the poll pacing as a duration.
func (f FeedConfig) PollInterval() time.Duration {
	return time.Duration(f.PollIntervalMs) * time.Millisecond
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Workarounds for viper's handling of nested keys set via env or flags.
	if viper.IsSet("feed.url") && config.Feed.URL == "" {
		config.Feed.URL = viper.GetString("feed.url")
	}
	if viper.IsSet("feed.poll_interval_ms") {
		config.Feed.PollIntervalMs = viper.GetInt("feed.poll_interval_ms")
	}
	if viper.IsSet("render.view_transitions") {
		config.Render.ViewTransitions = viper.GetBool("render.view_transitions")
	}
	if viper.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = viper.GetStringSlice("server.allowed_origins")
	}

	applyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Feed.PollIntervalMs <= 0 {
		config.Feed.PollIntervalMs = 7500
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if !viper.IsSet("render.view_transitions") {
		config.Render.ViewTransitions = true
	}
	if config.Render.DefaultRoute == "" {
		config.Render.DefaultRoute = "home"
	}
	if config.Surfaces.Mount == "" {
		config.Surfaces.Mount = "app"
	}
	if config.Surfaces.Nav == "" {
		config.Surfaces.Nav = "site-nav"
	}
	if config.Surfaces.Title == "" {
		config.Surfaces.Title = "doc-title"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// Validate validates configuration values for correctness.
func Validate(config *Config) error {
	if err := validateFeedConfig(&config.Feed); err != nil {
		return fmt.Errorf("feed config: %w", err)
	}
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateSurfacesConfig(&config.Surfaces); err != nil {
		return fmt.Errorf("surfaces config: %w", err)
	}
	return nil
}

func validateFeedConfig(config *FeedConfig) error {
	if config.URL == "" {
		return fmt.Errorf("url is required")
	}
	if strings.Contains(config.URL, "://") && !strings.HasPrefix(config.URL, "file://") {
		u, err := url.Parse(config.URL)
		if err != nil {
			return fmt.Errorf("url %q: %w", config.URL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("url scheme %q not supported", u.Scheme)
		}
	}
	if config.PollIntervalMs < 250 {
		return fmt.Errorf("poll_interval_ms %d is below the 250ms floor", config.PollIntervalMs)
	}
	return nil
}

func validateServerConfig(config *ServerConfig) error {
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}
	if config.Host != "" {
		dangerous := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, ch := range dangerous {
			if strings.Contains(config.Host, ch) {
				return fmt.Errorf("host contains dangerous character: %s", ch)
			}
		}
	}
	return nil
}

func validateSurfacesConfig(config *SurfacesConfig) error {
	for name, id := range map[string]string{
		"mount": config.Mount,
		"nav":   config.Nav,
		"title": config.Title,
	} {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%s surface id is empty", name)
		}
		if strings.ContainsAny(id, " <>\"'") {
			return fmt.Errorf("%s surface id %q contains invalid characters", name, id)
		}
	}
	return nil
}
