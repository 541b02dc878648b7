// Package chatprompt renders a chat conversation into the single prompt
// string a model expects.
//
// Each supported prompt format is a Jinja-style chat template interpreted by
// one shared evaluator. Rendering is pure: the same template, messages and
// generation-prompt flag always produce the same bytes.
package chatprompt

import "sync"

// Message is one conversational turn. Role is compared verbatim by templates.
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

var defaultEngine = sync.OnceValues(func() (*Engine, error) {
	return NewEngine()
})

// Apply renders msgs with a built-in variant. When addGenerationPrompt is set,
// variants that support it append the opening of an assistant turn.
func Apply(v Variant, msgs []Message, addGenerationPrompt bool) (string, error) {
	e, err := defaultEngine()
	if err != nil {
		return "", err
	}
	return e.Render(v.String(), msgs, addGenerationPrompt)
}
