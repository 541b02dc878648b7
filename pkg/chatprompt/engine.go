package chatprompt

import (
	"fmt"
	"maps"

	"github.com/samcharles93/chatprompt/internal/tplparser"
)

// Definition is a named template plus the string tokens it references
// (for example bos_token and eos_token).
type Definition struct {
	Name   string
	Source string
	Tokens map[string]string
}

// Engine renders conversations with a fixed set of parsed templates.
// It is immutable after NewEngine and safe for concurrent use.
type Engine struct {
	registry *tplparser.Registry
	tokens   map[string]map[string]string
}

// NewEngine parses the built-in variants followed by custom. A custom
// definition may not reuse a name that is already registered.
func NewEngine(custom ...Definition) (*Engine, error) {
	e := &Engine{
		registry: tplparser.NewRegistry(),
		tokens:   make(map[string]map[string]string),
	}
	for _, v := range Variants() {
		if err := e.add(v.Definition()); err != nil {
			return nil, err
		}
	}
	for _, def := range custom {
		if err := e.add(def); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) add(def Definition) error {
	for name := range def.Tokens {
		if name == varMessages || name == varAddGenerationPrompt {
			return &ApplyError{
				Template: def.Name,
				Op:       OpRegister,
				Err:      fmt.Errorf("%w: token %q shadows a render variable", ErrInvalidDefinition, name),
			}
		}
	}
	if err := e.registry.Register(def.Name, def.Source); err != nil {
		return &ApplyError{Template: def.Name, Op: OpRegister, Err: err}
	}
	e.tokens[def.Name] = maps.Clone(def.Tokens)
	return nil
}

// Templates returns the names of all templates the engine can render.
func (e *Engine) Templates() []string {
	return e.registry.Names()
}

// Render formats msgs with the template registered under name.
func (e *Engine) Render(name string, msgs []Message, addGenerationPrompt bool) (string, error) {
	tmpl, err := e.registry.Resolve(name)
	if err != nil {
		return "", &ApplyError{Template: name, Op: OpResolve, Err: err}
	}
	out, err := tmpl.Execute(e.context(name, msgs, addGenerationPrompt))
	if err != nil {
		return "", &ApplyError{Template: name, Op: OpRender, Err: err}
	}
	return out, nil
}

const (
	varMessages            = "messages"
	varAddGenerationPrompt = "add_generation_prompt"
)

// context builds the per-call variables. Messages are copied into template
// values so a render never aliases caller memory.
func (e *Engine) context(name string, msgs []Message, addGenerationPrompt bool) tplparser.Context {
	ctx := make(tplparser.Context, len(e.tokens[name])+2)
	for k, v := range e.tokens[name] {
		ctx[k] = v
	}
	values := make([]any, len(msgs))
	for i, m := range msgs {
		values[i] = map[string]any{
			"role":    m.Role,
			"content": m.Content,
		}
	}
	ctx[varMessages] = values
	ctx[varAddGenerationPrompt] = addGenerationPrompt
	return ctx
}
