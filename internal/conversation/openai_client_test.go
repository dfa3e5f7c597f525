package conversation

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatClient struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (s *stubChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.req = req
	return s.resp, s.err
}

func TestOpenAILLMClientComplete(t *testing.T) {
	stub := &stubChatClient{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: " What time works for you? "},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: openai.Usage{PromptTokens: 40, CompletionTokens: 8, TotalTokens: 48},
	}}
	client := NewOpenAILLMClient(stub, "")

	resp, err := client.Complete(context.Background(), LLMRequest{
		System:      []string{AssistantSystemPrompt, "  "},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: "hello"}},
		Temperature: -1,
	})

	require.NoError(t, err)
	assert.Equal(t, "What time works for you?", resp.Text)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, TokenUsage{InputTokens: 40, OutputTokens: 8, TotalTokens: 48}, resp.Usage)

	assert.Equal(t, openai.GPT3Dot5Turbo, stub.req.Model)
	assert.Zero(t, stub.req.Temperature)
	require.Len(t, stub.req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, stub.req.Messages[0].Role)
	assert.Equal(t, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: "hello"}, stub.req.Messages[1])
}

func TestOpenAILLMClientRequestModelOverrides(t *testing.T) {
	stub := &stubChatClient{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "hi"}}},
	}}
	client := NewOpenAILLMClient(stub, "gpt-4o-mini")

	_, err := client.Complete(context.Background(), LLMRequest{
		Model:       "gpt-4o",
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: "hello"}},
		Temperature: 0.2,
		MaxTokens:   120,
	})

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", stub.req.Model)
	assert.InDelta(t, 0.2, stub.req.Temperature, 0.0001)
	assert.Equal(t, 120, stub.req.MaxTokens)
}

func TestOpenAILLMClientErrors(t *testing.T) {
	providerErr := errors.New("rate limited")
	client := NewOpenAILLMClient(&stubChatClient{err: providerErr}, "")
	_, err := client.Complete(context.Background(), LLMRequest{Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hi"}}})
	assert.ErrorIs(t, err, providerErr)

	client = NewOpenAILLMClient(&stubChatClient{}, "")
	_, err = client.Complete(context.Background(), LLMRequest{Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hi"}}})
	assert.ErrorContains(t, err, "no choices")
}

func TestNewOpenAILLMClientFromKeyRequiresKey(t *testing.T) {
	_, err := NewOpenAILLMClientFromKey(" ", "")
	assert.Error(t, err)

	client, err := NewOpenAILLMClientFromKey("sk-test", "")
	require.NoError(t, err)
	assert.NotNil(t, client)
}
