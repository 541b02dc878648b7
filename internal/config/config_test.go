package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samcharles93/chatprompt/pkg/chatprompt"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadMissingFileIsZero(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Config{}, cfg, cmp.AllowUnexported(Config{})); diff != "" {
		t.Fatalf("expected zero config (-want +got):\n%s", diff)
	}

	cfg, err = Load("")
	if err != nil || cfg.DefaultTemplate != "" {
		t.Fatalf("expected zero config for empty path, got %+v, %v", cfg, err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "templates: [name: x\n")
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("error should name the file: %q", err.Error())
	}
}

func TestLoadFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `default_template: mistral
add_generation_prompt: false
log_level: debug
log_format: json
server_address: 127.0.0.1:9000
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultTemplate != "mistral" || cfg.LogLevel != "debug" || cfg.LogFormat != "json" || cfg.ServerAddress != "127.0.0.1:9000" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.AddGenerationPrompt == nil || *cfg.AddGenerationPrompt {
		t.Fatalf("expected add_generation_prompt=false to be set")
	}
}

func TestDefinitions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "zephyr.jinja"), "{% for m in messages %}<|{{ m.role }}|>\n{{ m.content }}{{ eos_token }}\n{% endfor %}")
	writeFile(t, filepath.Join(dir, "tokenizer_config.json"), `{
		"bos_token": {"content": "<s>", "lstrip": false},
		"eos_token": "</s>",
		"chat_template": "{{ bos_token }}{% for m in messages %}{{ m.content }}{% endfor %}"
	}`)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `templates:
  - name: inline
    source: "{{ greeting }}"
    tokens:
      greeting: hi
  - name: zephyr
    source_file: zephyr.jinja
    tokens:
      eos_token: "</s>"
  - name: hf
    tokenizer_config: tokenizer_config.json
    tokens:
      eos_token: "<|end|>"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defs, err := cfg.Definitions()
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	want := []chatprompt.Definition{
		{Name: "inline", Source: "{{ greeting }}", Tokens: map[string]string{"greeting": "hi"}},
		{
			Name:   "zephyr",
			Source: "{% for m in messages %}<|{{ m.role }}|>\n{{ m.content }}{{ eos_token }}\n{% endfor %}",
			Tokens: map[string]string{"eos_token": "</s>"},
		},
		{
			Name:   "hf",
			Source: "{{ bos_token }}{% for m in messages %}{{ m.content }}{% endfor %}",
			Tokens: map[string]string{"bos_token": "<s>", "eos_token": "<|end|>"},
		},
	}
	if diff := cmp.Diff(want, defs); diff != "" {
		t.Fatalf("definitions mismatch (-want +got):\n%s", diff)
	}

	e, err := chatprompt.NewEngine(defs...)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	got, err := e.Render("zephyr", []chatprompt.Message{{Role: "user", Content: "Q"}}, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<|user|>\nQ</s>\n" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestDefinitionsErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		tmpl    TemplateConfig
		wantMsg string
	}{
		{name: "no source", tmpl: TemplateConfig{Name: "a"}, wantMsg: "template a: exactly one of"},
		{name: "two sources", tmpl: TemplateConfig{Name: "b", Source: "x", SourceFile: "y"}, wantMsg: "template b: exactly one of"},
		{name: "missing file", tmpl: TemplateConfig{Name: "c", SourceFile: filepath.Join(t.TempDir(), "nope.jinja")}, wantMsg: "template c:"},
		{name: "unnamed", tmpl: TemplateConfig{}, wantMsg: "template #0:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Config{Templates: []TemplateConfig{tc.tmpl}}.Definitions()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("unexpected error: got %q want substring %q", err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestParseTokenizerConfig(t *testing.T) {
	t.Parallel()

	cfg, err := ParseTokenizerConfig([]byte(`{
		"add_bos_token": true,
		"bos_token": null,
		"eos_token": {"content": "<|im_end|>", "special": true},
		"chat_template": [
			{"name": "tool_use", "template": "tools"},
			{"name": "default", "template": "plain"}
		]
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.ChatTemplate != "plain" || cfg.BOS != "" || cfg.EOS != "<|im_end|>" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if diff := cmp.Diff(map[string]string{"eos_token": "<|im_end|>"}, cfg.Tokens()); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTokenizerConfigErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw     string
		wantMsg string
	}{
		{raw: `{"bos_token":"<s>"}`, wantMsg: "no chat_template"},
		{raw: `{"chat_template":42}`, wantMsg: "must be a string or a list"},
		{raw: `{"chat_template":[{"name":"tool_use","template":""}]}`, wantMsg: `no "default" entry`},
		{raw: `{"eos_token":7,"chat_template":"x"}`, wantMsg: "token must be a string"},
		{raw: `{"chat_template":`, wantMsg: "parse tokenizer config"},
	}
	for _, tc := range cases {
		_, err := ParseTokenizerConfig([]byte(tc.raw))
		if err == nil {
			t.Fatalf("expected error for %s", tc.raw)
		}
		if !strings.Contains(err.Error(), tc.wantMsg) {
			t.Fatalf("unexpected error for %s: got %q want substring %q", tc.raw, err.Error(), tc.wantMsg)
		}
	}
}
