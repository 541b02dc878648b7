package conversation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samcharles93/chatprompt/pkg/chatprompt"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	want := []chatprompt.Message{
		{Role: "system", Content: "Be brief."},
		{Role: "user", Content: "line one\nline two"},
	}

	cases := []struct {
		name   string
		raw    string
		format Format
	}{
		{
			name:   "json array",
			raw:    `[{"role":"system","content":"Be brief."},{"role":"user","content":"line one\nline two"}]`,
			format: FormatJSON,
		},
		{
			name:   "json object",
			raw:    `{"model":"x","messages":[{"role":"system","content":"Be brief."},{"role":"user","content":"line one\nline two","name":"ignored"}]}`,
			format: FormatJSON,
		},
		{
			name: "yaml array",
			raw: `- role: system
  content: Be brief.
- role: user
  content: |-
    line one
    line two
`,
			format: FormatYAML,
		},
		{
			name: "yaml object",
			raw: `messages:
  - {role: system, content: "Be brief."}
  - {role: user, content: "line one\nline two"}
`,
			format: FormatYAML,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode([]byte(tc.raw), tc.format)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("messages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeEmptyConversation(t *testing.T) {
	t.Parallel()

	got, err := Decode([]byte(`{"messages": []}`), FormatJSON)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no messages, got %v", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		raw     string
		format  Format
		wantMsg string
	}{
		{name: "invalid json", raw: `[{"role":`, format: FormatJSON, wantMsg: "parse messages json"},
		{name: "invalid yaml", raw: "- role: [unclosed", format: FormatYAML, wantMsg: "parse messages yaml"},
		{name: "scalar document", raw: `"hello"`, format: FormatJSON, wantMsg: "must be array or object"},
		{name: "empty yaml", raw: "", format: FormatYAML, wantMsg: "document is empty"},
		{name: "object without messages", raw: `{"input":[]}`, format: FormatJSON, wantMsg: `missing "messages" field`},
		{name: "messages not array", raw: `{"messages":{}}`, format: FormatJSON, wantMsg: "messages field must be an array"},
		{name: "item not object", raw: `["hi"]`, format: FormatJSON, wantMsg: "message 0: expected object"},
		{name: "missing role", raw: `[{"role":"user","content":"a"},{"content":"b"}]`, format: FormatJSON, wantMsg: "message 1: role must be a non-empty string"},
		{name: "empty role", raw: `[{"role":"","content":"b"}]`, format: FormatJSON, wantMsg: "message 0: role must be a non-empty string"},
		{name: "content not string", raw: `[{"role":"user","content":[{"type":"text","text":"x"}]}]`, format: FormatJSON, wantMsg: "message 0: content must be a string"},
		{name: "content missing", raw: "- role: user\n", format: FormatYAML, wantMsg: "message 0: content must be a string"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(tc.raw), tc.format)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("unexpected error: got %q want substring %q", err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "chat.json")
	yamlPath := filepath.Join(dir, "chat.YML")
	if err := os.WriteFile(jsonPath, []byte(`[{"role":"user","content":"hi"}]`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := os.WriteFile(yamlPath, []byte("- role: user\n  content: hi\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	for _, path := range []string{jsonPath, yamlPath} {
		got, err := LoadFile(path)
		if err != nil {
			t.Fatalf("load %s: %v", path, err)
		}
		if len(got) != 1 || got[0] != (chatprompt.Message{Role: "user", Content: "hi"}) {
			t.Fatalf("unexpected messages from %s: %v", path, got)
		}
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestRead(t *testing.T) {
	t.Parallel()

	got, err := Read(strings.NewReader(`{"messages":[{"role":"assistant","content":""}]}`), FormatJSON)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].Role != "assistant" || got[0].Content != "" {
		t.Fatalf("unexpected messages: %v", got)
	}
}

func TestFormatFor(t *testing.T) {
	t.Parallel()

	cases := map[string]Format{
		"a.json":  FormatJSON,
		"a.yaml":  FormatYAML,
		"a.YAML":  FormatYAML,
		"a.yml":   FormatYAML,
		"a":       FormatJSON,
		"-":       FormatJSON,
		"dir.x/a": FormatJSON,
	}
	for path, want := range cases {
		if got := FormatFor(path); got != want {
			t.Fatalf("FormatFor(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestLoadStdin(t *testing.T) {
	t.Parallel()

	stdin := strings.NewReader(`[{"role":"user","content":"from stdin"}]`)
	got, err := Load("-", stdin)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Content != "from stdin" {
		t.Fatalf("unexpected messages: %v", got)
	}
}
