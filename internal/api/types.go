package api

import "github.com/goccy/go-json"

type PromptRequest struct {
	Template            string          `json:"template"`
	Messages            json.RawMessage `json:"messages"`
	AddGenerationPrompt bool            `json:"add_generation_prompt"`
}

type PromptResponse struct {
	ID       string `json:"id"`
	Object   string `json:"object"`
	Created  int64  `json:"created"`
	Template string `json:"template"`
	Prompt   string `json:"prompt"`
}

type TemplateObject struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Builtin bool   `json:"builtin"`
}

type ListResponse[T any] struct {
	Object string `json:"object"`
	Data   []T    `json:"data"`
}
