package tplparser

import (
	"errors"
	"fmt"
)

var (
	ErrTemplateNotFound  = errors.New("template not found")
	ErrDuplicateTemplate = errors.New("template already registered")
	ErrInvalidName       = errors.New("invalid template name")
	ErrTemplateSyntax    = errors.New("template syntax error")
	ErrRender            = errors.New("template render error")
)

// SyntaxError reports template source that does not parse.
type SyntaxError struct {
	Template string
	Line     int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: syntax error: %s", e.Template, e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrTemplateSyntax
}

// RenderError reports a failure while executing a parsed template.
type RenderError struct {
	Template string
	Line     int
	Msg      string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Template, e.Line, e.Msg)
}

func (e *RenderError) Unwrap() error {
	return ErrRender
}
