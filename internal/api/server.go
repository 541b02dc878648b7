// Package api serves prompt rendering over HTTP.
package api

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/chatprompt/internal/conversation"
	"github.com/samcharles93/chatprompt/internal/logger"
	"github.com/samcharles93/chatprompt/pkg/chatprompt"
)

type Server struct {
	engine          *chatprompt.Engine
	defaultTemplate string
	log             logger.Logger
	clock           func() time.Time
}

// NewServer serves templates from engine. defaultTemplate is used when a
// request does not name one; it may be empty.
func NewServer(engine *chatprompt.Engine, defaultTemplate string, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		engine:          engine,
		defaultTemplate: defaultTemplate,
		log:             log.With("component", "api"),
		clock:           time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/prompts", s.handleCreatePrompt)
	e.GET("/v1/templates", s.handleListTemplates)
	e.GET("/v1/templates/:name", s.handleGetTemplate)
}

func (s *Server) handleCreatePrompt(c *echo.Context) error {
	req, err := decodeJSON[PromptRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, fmt.Sprintf("invalid JSON body: %v", err))
	}
	name := strings.TrimSpace(req.Template)
	if name == "" {
		name = s.defaultTemplate
	}
	if name == "" {
		return writeBadRequest(c, "template is required")
	}
	msgs, err := decodeMessages(req.Messages)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	prompt, err := s.engine.Render(name, msgs, req.AddGenerationPrompt)
	if err != nil {
		s.log.Warn("render failed", "template", name, "error", err)
		return writeRenderError(c, err)
	}
	s.log.Debug("rendered prompt", "template", name, "messages", len(msgs), "bytes", len(prompt))

	return c.JSON(http.StatusOK, PromptResponse{
		ID:       "prompt_" + uuid.NewString(),
		Object:   "prompt",
		Created:  s.clock().Unix(),
		Template: name,
		Prompt:   prompt,
	})
}

func (s *Server) handleListTemplates(c *echo.Context) error {
	names := s.engine.Templates()
	data := make([]TemplateObject, 0, len(names))
	for _, name := range names {
		data = append(data, templateObject(name))
	}
	return c.JSON(http.StatusOK, ListResponse[TemplateObject]{Object: "list", Data: data})
}

func (s *Server) handleGetTemplate(c *echo.Context) error {
	name := c.Param("name")
	if !slices.Contains(s.engine.Templates(), name) {
		return writeNotFound(c, fmt.Sprintf("template %q not found", name), "template_not_found")
	}
	return c.JSON(http.StatusOK, templateObject(name))
}

func templateObject(name string) TemplateObject {
	v, err := chatprompt.ParseVariant(name)
	return TemplateObject{
		ID:      name,
		Object:  "template",
		Builtin: err == nil && v.String() == name,
	}
}

// decodeMessages requires a JSON array; an empty array is a valid
// conversation.
func decodeMessages(raw json.RawMessage) ([]chatprompt.Message, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, newInvalidRequest("messages is required")
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, newInvalidRequest("messages must be an array")
	}
	msgs, err := conversation.FromValues(items)
	if err != nil {
		return nil, newInvalidRequest(err.Error())
	}
	return msgs, nil
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
