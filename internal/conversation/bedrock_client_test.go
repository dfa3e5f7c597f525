package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConverseAPI struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (s *stubConverseAPI) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	s.input = params
	return s.out, s.err
}

func converseText(parts ...string) *bedrockruntime.ConverseOutput {
	content := make([]brtypes.ContentBlock, 0, len(parts))
	for _, p := range parts {
		content = append(content, &brtypes.ContentBlockMemberText{Value: p})
	}
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: content,
		}},
		StopReason: brtypes.StopReasonEndTurn,
		Usage:      &brtypes.TokenUsage{InputTokens: aws.Int32(12), OutputTokens: aws.Int32(5), TotalTokens: aws.Int32(17)},
	}
}

func TestBedrockLLMClientComplete(t *testing.T) {
	api := &stubConverseAPI{out: converseText("Sure, ", "what day works? ")}
	client := NewBedrockLLMClient(api, "anthropic.claude-3-haiku")

	resp, err := client.Complete(context.Background(), LLMRequest{
		System: []string{AssistantSystemPrompt},
		Messages: []ChatMessage{
			{Role: ChatRoleSystem, Content: "Keep it short."},
			{Role: ChatRoleUser, Content: "hello"},
		},
		Temperature: -1,
	})

	require.NoError(t, err)
	assert.Equal(t, "Sure, what day works?", resp.Text)
	assert.Equal(t, string(brtypes.StopReasonEndTurn), resp.StopReason)
	assert.Equal(t, TokenUsage{InputTokens: 12, OutputTokens: 5, TotalTokens: 17}, resp.Usage)

	require.NotNil(t, api.input)
	assert.Equal(t, "anthropic.claude-3-haiku", aws.ToString(api.input.ModelId))
	assert.Len(t, api.input.System, 2)
	require.Len(t, api.input.Messages, 1)
	assert.Equal(t, brtypes.ConversationRoleUser, api.input.Messages[0].Role)
	assert.Nil(t, api.input.InferenceConfig)
}

func TestBedrockLLMClientErrors(t *testing.T) {
	user := []ChatMessage{{Role: ChatRoleUser, Content: "hello"}}
	providerErr := errors.New("throttled")

	tests := []struct {
		name    string
		api     *stubConverseAPI
		modelID string
		req     LLMRequest
	}{
		{"missing model", &stubConverseAPI{out: converseText("hi")}, "", LLMRequest{Messages: user}},
		{"no messages", &stubConverseAPI{out: converseText("hi")}, "m", LLMRequest{}},
		{"unknown role", &stubConverseAPI{out: converseText("hi")}, "m", LLMRequest{Messages: []ChatMessage{{Role: "tool", Content: "x"}}}},
		{"provider error", &stubConverseAPI{err: providerErr}, "m", LLMRequest{Messages: user}},
		{"no text", &stubConverseAPI{out: converseText("  ")}, "m", LLMRequest{Messages: user}},
		{"nil output", &stubConverseAPI{}, "m", LLMRequest{Messages: user}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBedrockLLMClient(tt.api, tt.modelID).Complete(context.Background(), tt.req)
			assert.Error(t, err)
		})
	}
}

func TestBedrockInference(t *testing.T) {
	assert.Nil(t, bedrockInference(LLMRequest{Temperature: -1}))

	cfg := bedrockInference(LLMRequest{MaxTokens: 200, Temperature: 0, TopP: 0.9})
	require.NotNil(t, cfg)
	assert.Equal(t, int32(200), aws.ToInt32(cfg.MaxTokens))
	assert.Equal(t, float32(0), aws.ToFloat32(cfg.Temperature))
	assert.Equal(t, float32(0.9), aws.ToFloat32(cfg.TopP))
}
