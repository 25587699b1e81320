package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// geminiClient calls the Google generative-language API through the genai SDK.
type geminiClient struct {
	cfg    Config
	client *genai.Client
	logger *zap.Logger
}

func newGeminiClient(ctx context.Context, cfg Config, logger *zap.Logger) (*geminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiClient{cfg: cfg, client: client, logger: logger}, nil
}

func (c *geminiClient) ChatCompletion(parentCtx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	if req == nil {
		return nil, fmt.Errorf("llmclient: request is nil")
	}
	if req.Model == "" {
		req.Model = c.cfg.Model
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("llmclient: invalid request: %w", err)
	}

	ctx, cancel := withTimeout(parentCtx, c.cfg.UpstreamTimeout)
	defer cancel()

	model := c.client.GenerativeModel(req.Model)
	model.SetTemperature(req.Temperature)
	if req.TopP > 0 {
		model.SetTopP(req.TopP)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if len(req.Stop) > 0 {
		model.StopSequences = req.Stop
	}

	system, parts := splitMessages(req.Messages)
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: system}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("llmclient: invalid request: no user content")
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		c.logger.Error("llm request failed",
			zap.String("model", req.Model),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, fmt.Errorf("llmclient: %w", err)
	}

	out := toChatResponse(req.Model, resp)
	if len(out.Choices) == 0 {
		c.logger.Error("llm provider returned no candidates",
			zap.String("model", req.Model),
		)
		return nil, errors.New("llmclient: provider returned no candidates")
	}

	c.logger.Info("llm request completed",
		zap.String("model", out.Model),
		zap.Int("prompt_tokens", out.Usage.PromptTokens),
		zap.Int("completion_tokens", out.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return out, nil
}

// Close releases the underlying connection.
func (c *geminiClient) Close() error {
	return c.client.Close()
}

// splitMessages separates system instructions from the conversation parts.
func splitMessages(msgs []ChatMessage) (system []genai.Part, parts []genai.Part) {
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		if m.Role == RoleSystem {
			system = append(system, genai.Text(m.Content))
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	return system, parts
}

func toChatResponse(model string, resp *genai.GenerateContentResponse) *ChatResponse {
	out := &ChatResponse{
		Created: time.Now(),
		Model:   model,
		Usage:   &Usage{},
	}
	if resp == nil {
		return out
	}

	for i, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var text strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
		out.Choices = append(out.Choices, ChatChoice{
			Index:        i,
			Message:      ChatMessage{Role: RoleAssistant, Content: text.String()},
			FinishReason: strings.ToLower(cand.FinishReason.String()),
		})
	}

	if u := resp.UsageMetadata; u != nil {
		out.Usage.PromptTokens = int(u.PromptTokenCount)
		out.Usage.CompletionTokens = int(u.CandidatesTokenCount)
		out.Usage.TotalTokens = int(u.TotalTokenCount)
	}
	return out
}
