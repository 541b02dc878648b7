package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/chatprompt/pkg/chatprompt"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

func writeError(c *echo.Context, status int, errType, msg, code string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType, Code: code},
	})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "")
}

func writeNotFound(c *echo.Context, msg, code string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, code)
}

// writeRenderError maps an engine failure onto the HTTP error envelope.
func writeRenderError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return writeBadRequest(c, err.Error())
	case errors.Is(err, chatprompt.ErrTemplateNotFound):
		return writeNotFound(c, err.Error(), "template_not_found")
	case errors.Is(err, chatprompt.ErrRender):
		return writeError(c, http.StatusUnprocessableEntity, "render_error", err.Error(), "render_failed")
	case errors.Is(err, chatprompt.ErrTemplateSyntax):
		return writeError(c, http.StatusUnprocessableEntity, "render_error", err.Error(), "template_syntax")
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}
}
