package chatprompt

import (
	"fmt"
	"maps"
	"strings"
)

// Variant selects one of the built-in chat templates.
type Variant int

const (
	// ChatML wraps every turn in <|im_start|>role ... <|im_end|>.
	ChatML Variant = iota
	// MistralInstruct brackets user turns in [INST] ... [/INST].
	MistralInstruct
	// Llama2Chat is MistralInstruct with a leading system message folded
	// into the first turn as a <<SYS>> header.
	Llama2Chat
)

const (
	bosToken = "<s>"
	eosToken = "</s>"
)

const chatMLTemplate = `{% for message in messages %}` +
	`{{'<|im_start|>' + message['role'] + '\n' + message['content'] + '<|im_end|>' + '\n'}}` +
	`{% endfor %}` +
	`{% if add_generation_prompt %}{{ '<|im_start|>assistant\n' }}{% endif %}`

const mistralInstructTemplate = `{{ bos_token }}` +
	`{% for message in messages %}` +
	`{% if message['role'] == 'user' %}{{ '[INST] ' + message['content'] + ' [/INST]' }}` +
	`{% elif message['role'] == 'assistant' %}{{ message['content'] + eos_token }}` +
	`{% endif %}` +
	`{% endfor %}`

const llama2SystemHeader = `{{ '<<SYS>>\n' + messages[0]['content'] + '\n<</SYS>>\n\n' }}`

const llama2ChatTemplate = `{% if messages and messages[0]['role'] == 'system' %}` +
	`{% for message in messages[1:] %}` +
	`{% if message['role'] == 'user' %}` +
	`{{ bos_token + '[INST] ' }}{% if loop.index0 == 0 %}` + llama2SystemHeader + `{% endif %}` +
	`{{ message['content'] + ' [/INST]' }}` +
	`{% elif message['role'] == 'assistant' %}` +
	`{{ ' ' }}{% if loop.index0 == 0 %}` + llama2SystemHeader + `{% endif %}` +
	`{{ message['content'] + ' ' + eos_token }}` +
	`{% endif %}` +
	`{% endfor %}` +
	`{% else %}` +
	`{% for message in messages %}` +
	`{% if message['role'] == 'user' %}{{ bos_token + '[INST] ' + message['content'] + ' [/INST]' }}` +
	`{% elif message['role'] == 'assistant' %}{{ ' ' + message['content'] + ' ' + eos_token }}` +
	`{% endif %}` +
	`{% endfor %}` +
	`{% endif %}`

var variants = [...]struct {
	name    string
	aliases []string
	source  string
	tokens  map[string]string
}{
	ChatML: {
		name:    "chatml",
		aliases: []string{"chat-ml"},
		source:  chatMLTemplate,
	},
	MistralInstruct: {
		name:    "mistral",
		aliases: []string{"mistral-instruct"},
		source:  mistralInstructTemplate,
		tokens:  map[string]string{"bos_token": bosToken, "eos_token": eosToken},
	},
	Llama2Chat: {
		name:    "llama2",
		aliases: []string{"llama-2", "llama2-chat"},
		source:  llama2ChatTemplate,
		tokens:  map[string]string{"bos_token": bosToken, "eos_token": eosToken},
	},
}

func (v Variant) valid() bool {
	return v >= 0 && int(v) < len(variants)
}

func (v Variant) String() string {
	if !v.valid() {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variants[v].name
}

// Definition returns the template source and tokens of a built-in variant.
// The returned token map is a copy.
func (v Variant) Definition() Definition {
	if !v.valid() {
		return Definition{Name: v.String()}
	}
	def := variants[v]
	return Definition{Name: def.name, Source: def.source, Tokens: maps.Clone(def.tokens)}
}

// Variants lists the built-in variants in declaration order.
func Variants() []Variant {
	out := make([]Variant, len(variants))
	for i := range variants {
		out[i] = Variant(i)
	}
	return out
}

// ParseVariant maps a name or alias (case-insensitive) to a Variant.
func ParseVariant(name string) (Variant, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, def := range variants {
		if key == def.name {
			return Variant(i), nil
		}
		for _, alias := range def.aliases {
			if key == alias {
				return Variant(i), nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unknown variant %q", ErrTemplateNotFound, name)
}
