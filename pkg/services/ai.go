package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAIBaseURL = "https://api.openai.com/v1"
	defaultAIModel   = "gpt-4o-mini"
	defaultAITimeout = 120 * time.Second
)

// GenerationRequest is a single text-generation call.
type GenerationRequest struct {
	Prompt      string
	System      string
	Model       string // Overrides the service default when set
	MaxTokens   int
	Temperature float64
}

// GenerationResult is the completed model response.
type GenerationResult struct {
	Text         string
	Model        string
	FinishReason string
	TokensUsed   int
}

// AIService generates text through a chat-completions style API.
type AIService interface {
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}

// ErrAINotConfigured is returned when no API key was provided for the run.
var ErrAINotConfigured = errors.New("ai service not configured: missing API key")

type aiService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

// NewAIService creates an AI service against an OpenAI-compatible endpoint.
func NewAIService(baseURL, apiKey, model string, logger *slog.Logger) AIService {
	if baseURL == "" {
		baseURL = defaultAIBaseURL
	}

	if model == "" {
		model = defaultAIModel
	}

	return &aiService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: defaultAITimeout},
		logger:  logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (s *aiService) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	if s.apiKey == "" {
		return nil, ErrAINotConfigured
	}

	model := req.Model
	if model == "" {
		model = s.model
	}

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}

	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	payload, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read generation response: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}

	if completion.Error != nil {
		return nil, fmt.Errorf("generation failed: %s (%s)", completion.Error.Message, completion.Error.Type)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("generation failed with status %d", resp.StatusCode)
	}

	if len(completion.Choices) == 0 {
		return nil, errors.New("generation returned no choices")
	}

	choice := completion.Choices[0]

	s.logger.DebugContext(ctx, "AI generation completed",
		"model", completion.Model,
		"finish_reason", choice.FinishReason,
		"tokens", completion.Usage.TotalTokens)

	return &GenerationResult{
		Text:         choice.Message.Content,
		Model:        completion.Model,
		FinishReason: choice.FinishReason,
		TokensUsed:   completion.Usage.TotalTokens,
	}, nil
}
