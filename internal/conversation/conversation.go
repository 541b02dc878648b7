// Package conversation loads chat messages from JSON or YAML documents.
package conversation

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/chatprompt/pkg/chatprompt"
)

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFor picks the document format from a file extension. Anything that
// is not .yaml/.yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads a conversation from path, or from stdin when path is "-".
// Stdin is decoded as JSON.
func Load(path string, stdin io.Reader) ([]chatprompt.Message, error) {
	if path == "-" {
		return Read(stdin, FormatJSON)
	}
	return LoadFile(path)
}

// LoadFile reads a conversation file. The document is either a messages
// array or an object with a "messages" field.
func LoadFile(path string) ([]chatprompt.Message, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	msgs, err := Decode(raw, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return msgs, nil
}

// Read decodes a conversation from r.
func Read(r io.Reader, format Format) ([]chatprompt.Message, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(raw, format)
}

// Decode parses raw as a conversation document.
func Decode(raw []byte, format Format) ([]chatprompt.Message, error) {
	var payload any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("parse messages yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("parse messages json: %w", err)
		}
	}

	switch v := payload.(type) {
	case []any:
		return FromValues(v)
	case map[string]any:
		msgs, ok := v["messages"]
		if !ok {
			return nil, fmt.Errorf("messages %s object missing \"messages\" field", format)
		}
		list, ok := msgs.([]any)
		if !ok {
			return nil, fmt.Errorf("messages field must be an array")
		}
		return FromValues(list)
	case nil:
		return nil, fmt.Errorf("messages %s document is empty", format)
	default:
		return nil, fmt.Errorf("messages %s must be array or object", format)
	}
}

// FromValues converts decoded JSON/YAML values into messages. Every item must
// carry a non-empty string role and a string content.
func FromValues(items []any) ([]chatprompt.Message, error) {
	msgs := make([]chatprompt.Message, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("message %d: expected object", i)
		}
		role, ok := m["role"].(string)
		if !ok || role == "" {
			return nil, fmt.Errorf("message %d: role must be a non-empty string", i)
		}
		content, ok := m["content"].(string)
		if !ok {
			return nil, fmt.Errorf("message %d: content must be a string", i)
		}
		msgs = append(msgs, chatprompt.Message{Role: role, Content: content})
	}
	return msgs, nil
}
