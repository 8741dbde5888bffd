package langchain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/generation"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
)

type recordingLLM struct {
	messages []llms.MessageContent
	err      error
}

func (r *recordingLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	r.messages = messages
	if r.err != nil {
		return nil, r.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "ok", StopReason: "end_turn"}}}, nil
}

func (r *recordingLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, r, prompt, options...)
}

func TestInvoke_FakeModel(t *testing.T) {
	p := New(fake.NewFakeLLM([]string{"Bonjour", "Salut"}), nil, zap.NewNop())

	for _, want := range []string{"Bonjour", "Salut"} {
		out, err := p.Invoke(context.Background(), generation.Request{
			Capability: generation.CapabilityText,
			Model:      "claude-3-5-sonnet",
			Prompt:     "Say hello in French",
		})
		require.NoError(t, err)
		assert.Equal(t, want, out.Text)
	}
}

func TestInvoke_BuildsMessages(t *testing.T) {
	llm := &recordingLLM{}
	p := New(llm, nil, zap.NewNop())

	_, err := p.Invoke(context.Background(), generation.Request{
		Capability: generation.CapabilityVision,
		System:     "Be brief.",
		Prompt:     "Describe this image in detail.",
		Images:     []valueobjects.Media{{URL: "data:image/png;base64,iVBORw0KGgo=", MediaType: "image/png"}},
	})
	require.NoError(t, err)

	require.Len(t, llm.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, llm.messages[0].Role)
	human := llm.messages[1]
	assert.Equal(t, llms.ChatMessageTypeHuman, human.Role)
	require.Len(t, human.Parts, 2)
	assert.Equal(t, llms.TextPart("Describe this image in detail."), human.Parts[0])
	bin, ok := human.Parts[1].(llms.BinaryContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", bin.MIMEType)
}

func TestInvoke_Errors(t *testing.T) {
	p := New(&recordingLLM{err: errors.New("overloaded")}, nil, zap.NewNop())

	_, err := p.Invoke(context.Background(), generation.Request{Capability: generation.CapabilityText, Prompt: "x"})
	assert.ErrorContains(t, err, "overloaded")

	_, err = p.Invoke(context.Background(), generation.Request{Capability: generation.CapabilityImage, Prompt: "x"})
	assert.ErrorContains(t, err, "do not serve image")
}

func TestNewAnthropic_RequiresKey(t *testing.T) {
	_, err := NewAnthropic("", "claude-3-5-sonnet-latest", "", zap.NewNop())
	assert.Error(t, err)
}
