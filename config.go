// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package crtfx

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/crtfx/geom"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the file form of a Control's settings.
type Config struct {
	// FPS is the source capture rate.
	FPS float64 `toml:"fps" yaml:"fps"`

	// ShaderPath points at a WGSL file replacing the built-in shader.
	// A leading ~ is expanded.
	ShaderPath string `toml:"shader" yaml:"shader"`

	Stretch geom.Stretch `toml:"stretch" yaml:"stretch"`

	// Skin names a built-in preset. Appearance, when present, overrides it.
	Skin       string      `toml:"skin" yaml:"skin"`
	Appearance *Appearance `toml:"appearance" yaml:"appearance"`

	// LogLevel is one of debug, info, warn or error. Empty disables logging.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// Width and Height size the viewport of headless hosts.
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

// LoadConfig reads a .toml, .yaml or .yml file.
func LoadConfig(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("crtfx: config path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("crtfx: read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	default:
		return nil, fmt.Errorf("crtfx: unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("crtfx: decode %s: %w", filepath.Base(path), err)
	}
	if cfg.ShaderPath != "" && !filepath.IsAbs(cfg.ShaderPath) && !strings.HasPrefix(cfg.ShaderPath, "~") {
		cfg.ShaderPath = filepath.Join(filepath.Dir(path), cfg.ShaderPath)
	}
	return &cfg, nil
}

// Options converts the config into Control options, reading the shader
// file if one is named.
func (cfg *Config) Options() ([]Option, error) {
	var opts []Option
	if cfg.FPS > 0 {
		opts = append(opts, WithFPS(cfg.FPS))
	}
	opts = append(opts, WithStretch(cfg.Stretch))
	if cfg.ShaderPath != "" {
		src, err := ReadShader(cfg.ShaderPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithShaderSource(src))
	}
	return opts, nil
}

// ResolveAppearance returns the configured appearance: the explicit one,
// else the named skin, else the Simple preset.
func (cfg *Config) ResolveAppearance() (Appearance, error) {
	if cfg.Appearance != nil {
		return *cfg.Appearance, nil
	}
	name := cfg.Skin
	if name == "" {
		name = "Simple"
	}
	a, ok := Skin(name)
	if !ok {
		return Appearance{}, fmt.Errorf("crtfx: unknown skin %q (have %s)", name, strings.Join(SkinNames(), ", "))
	}
	return a, nil
}

// Logger builds a text logger for LogLevel, or nil when logging is off.
func (cfg *Config) Logger() (*slog.Logger, error) {
	if cfg.LogLevel == "" {
		return nil, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("crtfx: log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// ReadShader loads WGSL source from path, expanding a leading ~.
func ReadShader(path string) (string, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("crtfx: shader path: %w", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("crtfx: read shader: %w", err)
	}
	return string(b), nil
}
