package gemini_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/parlance/pkg/adapters/gemini"
	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: string(genai.RoleModel)}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func request() model.Request {
	return model.Request{
		Model:       "llama3-70b-8192",
		Temperature: 0.5,
		MaxTokens:   5000,
		JSONMode:    true,
		Messages: []model.Message{
			{Role: domain.RoleSystem, Content: "persona"},
			{Role: domain.RoleUser, Content: "Hello"},
			{Role: domain.RoleAssistant, Content: "Hi there"},
			{Role: domain.RoleSystem, Content: "Action result: 4"},
		},
	}
}

func TestConvert(t *testing.T) {
	contents, cfg := gemini.Convert(request())

	require.NotNil(t, cfg.SystemInstruction)
	require.Len(t, cfg.SystemInstruction.Parts, 1)
	assert.Equal(t, "persona", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.Equal(t, int32(5000), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.5, *cfg.Temperature, 1e-6)

	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, string(genai.RoleUser), contents[2].Role)
	assert.Equal(t, "Action result: 4", contents[2].Parts[0].Text)
}

func TestConvert_OnlySystemMessages(t *testing.T) {
	req := request()
	req.Messages = []model.Message{
		{Role: domain.RoleSystem, Content: "persona"},
		{Role: domain.RoleSystem, Content: "Greet the user."},
	}
	contents, cfg := gemini.Convert(req)

	require.NotNil(t, cfg.SystemInstruction)
	require.Len(t, cfg.SystemInstruction.Parts, 1)
	assert.Equal(t, "persona", cfg.SystemInstruction.Parts[0].Text)
	require.Len(t, contents, 1)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, "Greet the user.", contents[0].Parts[0].Text)

	req.Messages = req.Messages[:1]
	contents, cfg = gemini.Convert(req)
	assert.Nil(t, cfg.SystemInstruction)
	require.Len(t, contents, 1)
	assert.Equal(t, "persona", contents[0].Parts[0].Text)
}

func TestClient_CompleteWithoutUserInput(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("{}")}
	req := request()
	req.Messages = req.Messages[:1]

	_, err := gemini.NewFromGenerator(gen).Complete(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, gen.contents, 1)
	assert.NotEmpty(t, gen.contents[0].Parts)
}

func TestConvert_PlainText(t *testing.T) {
	req := request()
	req.JSONMode = false
	req.MaxTokens = 0
	_, cfg := gemini.Convert(req)
	assert.Empty(t, cfg.ResponseMIMEType)
	assert.Zero(t, cfg.MaxOutputTokens)
}

func TestClient_Complete(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(`{"message":`, `"hi"}`)}
	c := gemini.NewFromGenerator(gen)

	out, err := c.Complete(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, `{"message":"hi"}`, out)
	assert.Equal(t, gemini.DefaultModel, gen.model, "non-gemini models fall back")
}

func TestClient_ModelSelection(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("{}")}

	req := request()
	req.Model = "gemini-2.0-pro"
	_, err := gemini.NewFromGenerator(gen).Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-pro", gen.model)

	_, err = gemini.NewFromGenerator(gen, gemini.WithModel("forced")).Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "forced", gen.model)

	req.Model = "gpt-4o"
	_, err = gemini.NewFromGenerator(gen, gemini.WithDefaultModel("gemini-x")).Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "gemini-x", gen.model)
}

func TestClient_Errors(t *testing.T) {
	_, err := gemini.NewFromGenerator(&fakeGenerator{err: errors.New("quota")}).Complete(context.Background(), request())
	assert.ErrorContains(t, err, "quota")

	_, err = gemini.NewFromGenerator(&fakeGenerator{resp: &genai.GenerateContentResponse{}}).Complete(context.Background(), request())
	assert.ErrorIs(t, err, gemini.ErrEmptyResponse)

	_, err = gemini.NewFromGenerator(&fakeGenerator{}).Complete(context.Background(), request())
	assert.ErrorIs(t, err, gemini.ErrEmptyResponse)
}
