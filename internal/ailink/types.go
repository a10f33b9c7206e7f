package ailink

import "encoding/json"

// GenerateRequest is the high-level request for a structured generation prompt.
//
// Variables are substituted into the prompt templates. The response is expected
// to be JSON and is validated against the prompt's response schema when one is
// declared.
type GenerateRequest struct {
	Role       string
	PromptSlug string
	Variables  map[string]string
	Model      string
	TimeoutSec int
	IncludeRaw bool
}

// GenerateResponse captures the raw JSON response from generation prompts.
type GenerateResponse struct {
	Raw json.RawMessage `json:"raw"`
}

// CompleteRequest is the high-level request for a plain-text prompt.
//
// Unlike GenerateRequest, the response is returned verbatim with no JSON
// decoding or schema validation. Used for prompts whose output is free text,
// such as topic translation.
type CompleteRequest struct {
	Role       string
	PromptSlug string
	Variables  map[string]string
	Model      string
	TimeoutSec int
}

// CompleteResponse holds the text returned by a plain-text prompt.
type CompleteResponse struct {
	Text string `json:"text"`
}

// RequestError captures an ailink failure without breaking the caller.
type RequestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
