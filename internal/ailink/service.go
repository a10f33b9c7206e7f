package ailink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adforge/adforge/internal/ailink/content"
	"github.com/adforge/adforge/internal/ailink/driver"
	"github.com/adforge/adforge/internal/ailink/prompt"
	"github.com/fulmenhq/gofulmen/schema"
)

const (
	defaultTimeout = 60 * time.Second
	maxTimeout     = 5 * time.Minute
)

// Service coordinates prompt loading, provider selection, and driver execution.
type Service struct {
	Providers *Registry
	Registry  prompt.Registry
	Catalog   *schema.Catalog
}

// Generate runs a generation prompt with arbitrary variables and returns the
// raw JSON response.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if s == nil || s.Providers == nil {
		return nil, errors.New("ailink provider registry not configured")
	}
	if s.Registry == nil {
		return nil, errors.New("ailink prompt registry not configured")
	}

	slug := strings.TrimSpace(req.PromptSlug)
	if slug == "" {
		return nil, errors.New("prompt slug is required")
	}

	promptDef, err := s.Registry.Get(slug)
	if err != nil {
		return nil, err
	}

	if err := checkRequiredVariables(promptDef, req.Variables); err != nil {
		return nil, err
	}

	systemPrompt, userPrompt, err := renderPromptWithVars(promptDef, req.Variables)
	if err != nil {
		return nil, err
	}

	resolved, err := s.Providers.Resolve(resolveRole(req.Role, slug), promptDef, req.Model)
	if err != nil {
		return nil, err
	}

	driverReq := &driver.Request{
		Model:          resolved.Model,
		Messages:       buildMessages(systemPrompt, userPrompt),
		ResponseFormat: responseFormatForProvider(resolved, promptDef),
		PromptSlug:     promptDef.Config.Slug,
	}
	if driverReq.ResponseFormat.Type == "json_schema" && driverReq.ResponseFormat.JSONSchema != nil {
		if expanded := openAISchemaForPrompt(promptDef, s.Catalog); expanded != nil {
			driverReq.ResponseFormat.JSONSchema.Schema = expanded
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeoutFor(req.TimeoutSec))
	defer cancel()

	resp, err := resolved.Driver.Complete(ctx, driverReq)
	if err != nil && isOpenAIUnsupportedSchemaError(err) {
		// Some models reject strict json_schema response formats. Retry once with
		// plain json_object and rely on post-hoc schema validation.
		fallbackToJSONObject(driverReq)
		resp, err = resolved.Driver.Complete(ctx, driverReq)
	}
	if err != nil {
		return nil, err
	}

	raw := extractContent(resp)
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty response content")
	}

	if err := s.validateResponse(promptDef, []byte(raw)); err != nil {
		return nil, &RawResponseError{Err: err, Raw: json.RawMessage(raw)}
	}

	response := &GenerateResponse{Raw: json.RawMessage(raw)}
	if isRawCaptureEnabled(s.Providers.cfg, req.IncludeRaw) {
		response.Raw = truncateJSONRaw(response.Raw, rawLimit(s.Providers.cfg))
	}

	return response, nil
}

// Complete runs a plain-text prompt and returns the response text verbatim.
func (s *Service) Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error) {
	if s == nil || s.Providers == nil {
		return nil, errors.New("ailink provider registry not configured")
	}
	if s.Registry == nil {
		return nil, errors.New("ailink prompt registry not configured")
	}

	slug := strings.TrimSpace(req.PromptSlug)
	if slug == "" {
		return nil, errors.New("prompt slug is required")
	}

	promptDef, err := s.Registry.Get(slug)
	if err != nil {
		return nil, err
	}

	if err := checkRequiredVariables(promptDef, req.Variables); err != nil {
		return nil, err
	}

	systemPrompt, userPrompt, err := renderPromptWithVars(promptDef, req.Variables)
	if err != nil {
		return nil, err
	}

	resolved, err := s.Providers.Resolve(resolveRole(req.Role, slug), promptDef, req.Model)
	if err != nil {
		return nil, err
	}

	driverReq := &driver.Request{
		Model:      resolved.Model,
		Messages:   buildMessages(systemPrompt, userPrompt),
		PromptSlug: promptDef.Config.Slug,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeoutFor(req.TimeoutSec))
	defer cancel()

	resp, err := resolved.Driver.Complete(ctx, driverReq)
	if err != nil {
		return nil, err
	}

	text := extractContent(resp)
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty response content")
	}

	return &CompleteResponse{Text: text}, nil
}

func (s *Service) timeoutFor(timeoutSec int) time.Duration {
	duration := s.Providers.cfg.DefaultTimeout
	if duration <= 0 {
		duration = defaultTimeout
	}
	if timeoutSec > 0 {
		duration = time.Duration(timeoutSec) * time.Second
	}
	if duration > maxTimeout {
		duration = maxTimeout
	}
	return duration
}

func resolveRole(role, slug string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return slug
	}
	return role
}

func checkRequiredVariables(def *prompt.Prompt, vars map[string]string) error {
	if def == nil {
		return errors.New("prompt is required")
	}
	for _, required := range def.Config.Input.RequiredVariables {
		if val, ok := vars[required]; !ok || strings.TrimSpace(val) == "" {
			return fmt.Errorf("required variable %q not provided", required)
		}
	}
	return nil
}

func buildMessages(systemPrompt, userPrompt string) []content.Message {
	return []content.Message{
		{Role: "system", Content: []content.ContentBlock{{Type: content.ContentTypeText, Text: systemPrompt}}},
		{Role: "user", Content: []content.ContentBlock{{Type: content.ContentTypeText, Text: userPrompt}}},
	}
}

func applyVars(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// applyConditionals handles {{#if var}}content{{else}}fallback{{/if}} blocks.
// If the variable exists and is non-empty, the content is included; otherwise the fallback is used.
func applyConditionals(template string, vars map[string]string) string {
	result := template
	for {
		start := strings.Index(result, "{{#if")
		if start == -1 {
			break
		}
		tagEnd := strings.Index(result[start:], "}}")
		if tagEnd == -1 {
			break
		}
		tagEnd += start

		varName := strings.TrimSpace(result[start+len("{{#if") : tagEnd])
		blockStart := tagEnd + 2

		elseStart, elseEnd, endStart, endEnd := findConditionalBlock(result, blockStart)
		if endStart == -1 {
			break
		}

		ifContent := result[blockStart:endStart]
		elseContent := ""
		if elseStart != -1 {
			ifContent = result[blockStart:elseStart]
			elseContent = result[elseEnd:endStart]
		}

		value, exists := vars[varName]
		replacement := elseContent
		if exists && strings.TrimSpace(value) != "" {
			replacement = ifContent
		}

		result = result[:start] + replacement + result[endEnd:]
	}
	return result
}

func findConditionalBlock(input string, start int) (int, int, int, int) {
	depth := 0
	elseStart := -1
	elseEnd := -1

	pos := start
	for {
		openIdx := strings.Index(input[pos:], "{{")
		if openIdx == -1 {
			return -1, -1, -1, -1
		}
		openIdx += pos

		closeIdx := strings.Index(input[openIdx:], "}}")
		if closeIdx == -1 {
			return -1, -1, -1, -1
		}
		closeIdx += openIdx

		tag := strings.TrimSpace(input[openIdx+2 : closeIdx])
		switch {
		case tag == "#if" || strings.HasPrefix(tag, "#if "):
			depth++
		case tag == "/if":
			if depth == 0 {
				return elseStart, elseEnd, openIdx, closeIdx + 2
			}
			depth--
		case tag == "else" && depth == 0 && elseStart == -1:
			elseStart = openIdx
			elseEnd = closeIdx + 2
		}

		pos = closeIdx + 2
	}
}

// renderPromptWithVars renders a prompt template with variables and conditionals.
func renderPromptWithVars(def *prompt.Prompt, vars map[string]string) (string, string, error) {
	if def == nil {
		return "", "", errors.New("prompt is required")
	}

	// Apply conditionals first, then variable substitution
	system := applyConditionals(def.Config.SystemTemplate, vars)
	system = applyVars(system, vars)

	user := def.Config.UserTemplate
	if user == "" {
		user = "{{input}}"
	}
	user = applyConditionals(user, vars)
	user = applyVars(user, vars)

	if strings.TrimSpace(system) == "" {
		return "", "", errors.New("system prompt is required")
	}
	return system, user, nil
}

func extractContent(resp *driver.Response) string {
	if resp == nil {
		return ""
	}
	if len(resp.Content) == 0 {
		return ""
	}
	parts := make([]string, 0, len(resp.Content))
	for _, block := range resp.Content {
		parts = append(parts, block.Text)
	}
	return strings.Join(parts, "\n")
}

func (s *Service) validateResponse(def *prompt.Prompt, payload []byte) error {
	if def == nil {
		return nil
	}
	if len(def.Config.ResponseSchema) == 0 {
		return nil
	}
	if ref, ok := def.Config.ResponseSchema["$ref"].(string); ok && ref != "" {
		catalog := s.Catalog
		if catalog == nil {
			return errors.New("schema catalog not configured")
		}
		diagnostics, err := catalog.ValidateDataByID(ref, payload)
		if err != nil {
			return err
		}
		if len(diagnostics) > 0 {
			return fmt.Errorf("response schema validation failed: %s", diagnostics[0].Message)
		}
		return nil
	}

	schemaBytes, err := json.Marshal(def.Config.ResponseSchema)
	if err != nil {
		return fmt.Errorf("encode response schema: %w", err)
	}
	validator, err := schema.NewValidator(schemaBytes)
	if err != nil {
		return fmt.Errorf("compile response schema: %w", err)
	}
	diagnostics, err := validator.ValidateJSON(payload)
	if err != nil {
		return err
	}
	if len(diagnostics) > 0 {
		return fmt.Errorf("response schema validation failed: %s", diagnostics[0].Message)
	}
	return nil
}
