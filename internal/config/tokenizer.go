package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// TokenizerConfig is the subset of a Hugging Face tokenizer_config.json that
// a chat template needs.
type TokenizerConfig struct {
	ChatTemplate string
	BOS          string
	EOS          string
}

type hfTokenizerConfig struct {
	BOS          hfToken         `json:"bos_token"`
	EOS          hfToken         `json:"eos_token"`
	ChatTemplate json.RawMessage `json:"chat_template"`
}

// hfToken accepts both "<s>" and {"content": "<s>", ...}.
type hfToken string

func (t *hfToken) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != nil {
			*t = hfToken(*s)
		}
		return nil
	}
	var obj struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("token must be a string or an object with content")
	}
	*t = hfToken(obj.Content)
	return nil
}

// LoadTokenizerConfig reads a tokenizer_config.json file.
func LoadTokenizerConfig(path string) (TokenizerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TokenizerConfig{}, err
	}
	cfg, err := ParseTokenizerConfig(data)
	if err != nil {
		return TokenizerConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseTokenizerConfig decodes tokenizer_config.json bytes. chat_template may
// be a string or a list of {name, template} entries, in which case the entry
// named "default" is used.
func ParseTokenizerConfig(data []byte) (TokenizerConfig, error) {
	var raw hfTokenizerConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return TokenizerConfig{}, fmt.Errorf("parse tokenizer config: %w", err)
	}
	tmpl, err := chatTemplate(raw.ChatTemplate)
	if err != nil {
		return TokenizerConfig{}, err
	}
	return TokenizerConfig{
		ChatTemplate: tmpl,
		BOS:          string(raw.BOS),
		EOS:          string(raw.EOS),
	}, nil
}

func chatTemplate(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("tokenizer config has no chat_template")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var named []struct {
		Name     string `json:"name"`
		Template string `json:"template"`
	}
	if err := json.Unmarshal(raw, &named); err != nil {
		return "", fmt.Errorf("chat_template must be a string or a list of named templates")
	}
	for _, n := range named {
		if n.Name == "default" {
			return n.Template, nil
		}
	}
	return "", fmt.Errorf("chat_template list has no %q entry", "default")
}

// Tokens returns the special tokens a template can reference. Empty tokens
// are omitted.
func (c TokenizerConfig) Tokens() map[string]string {
	tokens := make(map[string]string, 2)
	if c.BOS != "" {
		tokens["bos_token"] = c.BOS
	}
	if c.EOS != "" {
		tokens["eos_token"] = c.EOS
	}
	return tokens
}
