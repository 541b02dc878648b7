package chatprompt

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

const plainTemplate = `{% for m in messages %}{{ m.role + ': ' + m.content + '\n' }}{% endfor %}` +
	`{% if add_generation_prompt %}{{ prefix }}assistant: {% endif %}`

func TestEngineCustomTemplate(t *testing.T) {
	t.Parallel()

	e, err := NewEngine(Definition{
		Name:   "plain",
		Source: plainTemplate,
		Tokens: map[string]string{"prefix": "> "},
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := e.Render("plain", msgs("user", "hi", "assistant", "hello"), true)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "user: hi\nassistant: hello\n> assistant: "
	if got != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", got, want)
	}

	names := fmt.Sprint(e.Templates())
	if names != "[chatml llama2 mistral plain]" {
		t.Fatalf("unexpected templates: %s", names)
	}
}

func TestEngineRegisterErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		def     Definition
		wantErr error
	}{
		{
			name:    "duplicate of built-in",
			def:     Definition{Name: "chatml", Source: "x"},
			wantErr: ErrDuplicateTemplate,
		},
		{
			name:    "syntax error",
			def:     Definition{Name: "broken", Source: "{% if add_generation_prompt %}"},
			wantErr: ErrTemplateSyntax,
		},
		{
			name:    "token shadows messages",
			def:     Definition{Name: "shadow", Source: "x", Tokens: map[string]string{"messages": "nope"}},
			wantErr: ErrInvalidDefinition,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e, err := NewEngine(tc.def)
			if err == nil {
				t.Fatalf("expected error, got engine with %v", e.Templates())
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			var ae *ApplyError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *ApplyError, got %T", err)
			}
			if ae.Op != OpRegister || ae.Template != tc.def.Name {
				t.Fatalf("unexpected error origin: op=%s template=%s", ae.Op, ae.Template)
			}
		})
	}
}

func TestEngineRenderError(t *testing.T) {
	t.Parallel()

	e, err := NewEngine(Definition{
		Name:   "strict",
		Source: "{{ messages[0]['content'] }}",
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	out, err := e.Render("strict", nil, false)
	if out != "" {
		t.Fatalf("expected no partial output, got %q", out)
	}
	if !errors.Is(err, ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
	var ae *ApplyError
	if !errors.As(err, &ae) || ae.Op != OpRender || ae.Template != "strict" {
		t.Fatalf("unexpected error: %#v", err)
	}
	if !strings.Contains(err.Error(), "apply strict template: render:") {
		t.Fatalf("error does not name the failing template: %q", err.Error())
	}
}

func TestEngineRenderNotFound(t *testing.T) {
	t.Parallel()

	e, err := NewEngine()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	_, err = e.Render("zephyr", msgs("user", "x"), true)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestEnginesAreIsolated(t *testing.T) {
	t.Parallel()

	a, err := NewEngine(Definition{Name: "custom", Source: "A"})
	if err != nil {
		t.Fatalf("engine a: %v", err)
	}
	b, err := NewEngine(Definition{Name: "custom", Source: "B"})
	if err != nil {
		t.Fatalf("engine b: %v", err)
	}
	outA, _ := a.Render("custom", nil, false)
	outB, _ := b.Render("custom", nil, false)
	if outA != "A" || outB != "B" {
		t.Fatalf("engines share state: a=%q b=%q", outA, outB)
	}
}
