package chatprompt

import (
	"errors"
	"fmt"

	"github.com/samcharles93/chatprompt/internal/tplparser"
)

var (
	ErrTemplateNotFound  = tplparser.ErrTemplateNotFound
	ErrDuplicateTemplate = tplparser.ErrDuplicateTemplate
	ErrTemplateSyntax    = tplparser.ErrTemplateSyntax
	ErrRender            = tplparser.ErrRender
	ErrInvalidDefinition = errors.New("invalid template definition")
)

// Op names the stage that failed.
type Op string

const (
	OpRegister Op = "register"
	OpResolve  Op = "resolve"
	OpRender   Op = "render"
)

// ApplyError is returned by every failing Engine and Apply call. Err keeps
// the underlying cause, so errors.Is works against the sentinels above.
type ApplyError struct {
	Template string
	Op       Op
	Err      error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply %s template: %s: %v", e.Template, e.Op, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
