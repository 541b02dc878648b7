// Package config reads the chatprompt configuration file
// (~/.config/chatprompt/config.yaml).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samcharles93/chatprompt/pkg/chatprompt"
)

// Config represents the configuration file. Pointer fields distinguish
// "not set" from zero values.
type Config struct {
	DefaultTemplate     string `yaml:"default_template"`
	AddGenerationPrompt *bool  `yaml:"add_generation_prompt"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`

	Templates []TemplateConfig `yaml:"templates"`

	dir string
}

// TemplateConfig declares a custom template. Exactly one of Source,
// SourceFile or TokenizerConfig provides the template text. Relative paths
// are resolved against the config file's directory.
type TemplateConfig struct {
	Name            string            `yaml:"name"`
	Source          string            `yaml:"source"`
	SourceFile      string            `yaml:"source_file"`
	TokenizerConfig string            `yaml:"tokenizer_config"`
	Tokens          map[string]string `yaml:"tokens"`
}

// Path returns the default config location, or "" when the user config
// directory is unknown.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chatprompt", "config.yaml")
}

// Load reads the config file at path. A missing file (or empty path) yields
// a zero Config; a file that exists but does not parse is an error.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes a YAML config document. Relative template paths in the
// result resolve against the working directory.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Definitions loads every configured template into a chatprompt.Definition.
func (c Config) Definitions() ([]chatprompt.Definition, error) {
	defs := make([]chatprompt.Definition, 0, len(c.Templates))
	for i, tc := range c.Templates {
		def, err := c.definition(tc)
		if err != nil {
			name := tc.Name
			if strings.TrimSpace(name) == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (c Config) definition(tc TemplateConfig) (chatprompt.Definition, error) {
	set := 0
	for _, s := range []string{tc.Source, tc.SourceFile, tc.TokenizerConfig} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return chatprompt.Definition{}, fmt.Errorf("exactly one of source, source_file or tokenizer_config is required")
	}

	def := chatprompt.Definition{Name: tc.Name, Source: tc.Source}
	switch {
	case tc.SourceFile != "":
		raw, err := os.ReadFile(c.resolve(tc.SourceFile))
		if err != nil {
			return chatprompt.Definition{}, err
		}
		def.Source = string(raw)
	case tc.TokenizerConfig != "":
		hf, err := LoadTokenizerConfig(c.resolve(tc.TokenizerConfig))
		if err != nil {
			return chatprompt.Definition{}, err
		}
		def.Source = hf.ChatTemplate
		def.Tokens = hf.Tokens()
	}

	if len(tc.Tokens) > 0 && def.Tokens == nil {
		def.Tokens = make(map[string]string, len(tc.Tokens))
	}
	for k, v := range tc.Tokens {
		def.Tokens[k] = v
	}
	return def, nil
}

func (c Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}
