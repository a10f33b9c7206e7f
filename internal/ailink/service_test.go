package ailink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adforge/adforge/internal/ailink/content"
	"github.com/adforge/adforge/internal/ailink/driver"
	"github.com/adforge/adforge/internal/ailink/prompt"
)

type recordingDriver struct {
	name string
	text string
	req  *driver.Request
}

func (d *recordingDriver) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	d.req = req
	text := d.text
	if text == "" {
		text = `{"ok":true}`
	}
	return &driver.Response{Content: []content.ContentBlock{{Type: content.ContentTypeText, Text: text}}}, nil
}

func (d *recordingDriver) Name() string { return d.name }

func (d *recordingDriver) Capabilities() driver.Capabilities { return driver.Capabilities{} }

type stubPromptRegistry struct {
	prompt *prompt.Prompt
}

func (s stubPromptRegistry) Get(slug string) (*prompt.Prompt, error) { return s.prompt, nil }
func (s stubPromptRegistry) List() []*prompt.Prompt                  { return []*prompt.Prompt{s.prompt} }

func newTestService(drv *recordingDriver, promptDef *prompt.Prompt) *Service {
	providers := &Registry{cfg: Config{}}
	providers.cfg.DefaultProvider = "p"
	providers.cfg.Providers = map[string]ProviderInstanceConfig{
		"p": {
			Enabled:     true,
			AIProvider:  drv.name,
			Models:      map[string]string{"default": "m"},
			Credentials: []CredentialConfig{{APIKey: "k"}},
		},
	}
	// Registry caches drivers by providerID:credKey. With no credential label and default priority,
	// selectCredential() uses "p0".
	providers.drivers = map[string]driver.Driver{"p:p0": drv}

	return &Service{Providers: providers, Registry: stubPromptRegistry{prompt: promptDef}}
}

func TestServiceGenerateRendersVariables(t *testing.T) {
	drv := &recordingDriver{name: "openai", text: `{"creatives":[]}`}
	promptDef := &prompt.Prompt{Config: prompt.Config{
		Slug:           "creative-generation",
		SystemTemplate: "You write ads for {{game_background}}.",
		UserTemplate:   "{{#if user_idea}}Idea: {{user_idea}}{{else}}No idea provided.{{/if}}",
		Input:          prompt.InputSpec{RequiredVariables: []string{"game_background"}},
	}}
	svc := newTestService(drv, promptDef)

	resp, err := svc.Generate(context.Background(), GenerateRequest{
		PromptSlug: "creative-generation",
		Variables:  map[string]string{"game_background": "match-3 puzzle", "user_idea": "beach season"},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.JSONEq(t, `{"creatives":[]}`, string(resp.Raw))

	require.NotNil(t, drv.req)
	require.Len(t, drv.req.Messages, 2)
	require.Equal(t, "You write ads for match-3 puzzle.", drv.req.Messages[0].Content[0].Text)
	require.Equal(t, "Idea: beach season", drv.req.Messages[1].Content[0].Text)
	require.Equal(t, "m", drv.req.Model)
	require.NotNil(t, drv.req.ResponseFormat)
	require.Equal(t, "json_object", drv.req.ResponseFormat.Type)
}

func TestServiceGenerateConditionalElseBranch(t *testing.T) {
	drv := &recordingDriver{name: "openai", text: `{"creatives":[]}`}
	promptDef := &prompt.Prompt{Config: prompt.Config{
		Slug:           "creative-generation",
		SystemTemplate: "sys",
		UserTemplate:   "{{#if user_idea}}Idea: {{user_idea}}{{else}}No idea provided.{{/if}}",
	}}
	svc := newTestService(drv, promptDef)

	_, err := svc.Generate(context.Background(), GenerateRequest{
		PromptSlug: "creative-generation",
		Variables:  map[string]string{},
	})
	require.NoError(t, err)
	require.Equal(t, "No idea provided.", drv.req.Messages[1].Content[0].Text)
}

func TestServiceGenerateRequiresVariables(t *testing.T) {
	drv := &recordingDriver{name: "openai"}
	promptDef := &prompt.Prompt{Config: prompt.Config{
		Slug:           "creative-generation",
		SystemTemplate: "sys",
		Input:          prompt.InputSpec{RequiredVariables: []string{"game_background"}},
	}}
	svc := newTestService(drv, promptDef)

	_, err := svc.Generate(context.Background(), GenerateRequest{PromptSlug: "creative-generation"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "game_background")
}

func TestServiceGenerateUsesStrictSchemaForOpenAI(t *testing.T) {
	drv := &recordingDriver{name: "openai", text: `{"creatives":[]}`}
	promptDef := &prompt.Prompt{Config: prompt.Config{
		Slug:           "creative-generation",
		SystemTemplate: "sys",
		ResponseSchema: map[string]any{"type": "object"},
	}}
	svc := newTestService(drv, promptDef)

	_, err := svc.Generate(context.Background(), GenerateRequest{PromptSlug: "creative-generation"})
	require.NoError(t, err)
	require.NotNil(t, drv.req.ResponseFormat)
	require.Equal(t, "json_schema", drv.req.ResponseFormat.Type)
	require.Equal(t, "creative_generation", drv.req.ResponseFormat.JSONSchema.Name)
}

func TestServiceGenerateRejectsInvalidResponse(t *testing.T) {
	drv := &recordingDriver{name: "openai", text: `{"creatives":"not-an-array"}`}
	promptDef := &prompt.Prompt{Config: prompt.Config{
		Slug:           "creative-generation",
		SystemTemplate: "sys",
		ResponseSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"creatives": map[string]any{"type": "array"}},
		},
	}}
	svc := newTestService(drv, promptDef)

	_, err := svc.Generate(context.Background(), GenerateRequest{PromptSlug: "creative-generation"})
	require.Error(t, err)

	var rawErr *RawResponseError
	require.ErrorAs(t, err, &rawErr)
	require.NotEmpty(t, rawErr.Raw)
}

func TestServiceCompleteReturnsPlainText(t *testing.T) {
	drv := &recordingDriver{name: "openai", text: "1. 沙滩派对\n2. 夏日冲浪"}
	promptDef := &prompt.Prompt{Config: prompt.Config{
		Slug:           "topic-translation",
		SystemTemplate: "Translate the topics.",
		UserTemplate:   "{{topics}}",
	}}
	svc := newTestService(drv, promptDef)

	resp, err := svc.Complete(context.Background(), CompleteRequest{
		PromptSlug: "topic-translation",
		Variables:  map[string]string{"topics": "1. beach party\n2. summer surf"},
	})
	require.NoError(t, err)
	require.Contains(t, resp.Text, "沙滩派对")
	require.Nil(t, drv.req.ResponseFormat)
}
