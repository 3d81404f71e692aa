package llm

import (
	"bytes"
	stdcontext "context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aatumaykin/hive/internal/logger"
)

const (
	// OpenAIEndpoint is the default base URL for OpenAI-compatible chat completions
	OpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	// OpenAIRequestTimeout is the default timeout for API requests
	OpenAIRequestTimeout = 60 * time.Second
)

// OpenAIConfig contains configuration for an OpenAI-compatible provider.
// Setting Endpoint allows pointing the client at any chat-completions
// compatible API (OpenAI, Groq, a local gateway).
type OpenAIConfig struct {
	APIKey         string `json:"api_key"`         // API key for authentication
	Model          string `json:"model"`           // Default model to use
	Endpoint       string `json:"endpoint"`        // Chat completions endpoint URL
	TimeoutSeconds int    `json:"timeout_seconds"` // Timeout for HTTP requests in seconds
}

// OpenAIProvider implements the Provider interface for OpenAI-compatible APIs.
type OpenAIProvider struct {
	client *http.Client
	config OpenAIConfig
	apiURL string
	logger *logger.Logger
}

// oaRequest represents the request body for the chat completions API.
type oaRequest struct {
	Messages    []oaMessage `json:"messages"`
	Model       string      `json:"model"`
	Temperature float64     `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

// oaMessage represents a message in API format.
type oaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// oaResponse represents the response body from the chat completions API.
type oaResponse struct {
	ID      string      `json:"id"`
	Object  string      `json:"object"`
	Created int64       `json:"created"`
	Model   string      `json:"model"`
	Choices []oaChoice  `json:"choices"`
	Usage   oaUsage     `json:"usage"`
	Error   *oaAPIError `json:"error,omitempty"`
}

// oaChoice represents a choice in the response.
type oaChoice struct {
	Index        int       `json:"index"`
	Message      oaMessage `json:"message"`
	FinishReason string    `json:"finish_reason,omitempty"`
}

// oaUsage represents token usage information.
type oaUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// oaAPIError represents an error response from the API.
type oaAPIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// NewOpenAIProvider creates a new OpenAIProvider instance.
func NewOpenAIProvider(cfg OpenAIConfig, log *logger.Logger) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = OpenAIRequestTimeout
	}

	apiURL := cfg.Endpoint
	if apiURL == "" {
		apiURL = OpenAIEndpoint
	}

	return &OpenAIProvider{
		client: &http.Client{
			Timeout: timeout,
		},
		config: cfg,
		apiURL: apiURL,
		logger: log,
	}
}

// httpError represents an HTTP error from the API.
type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP error: status=%d, body=%s", e.StatusCode, e.Body)
}

// Chat implements the Provider interface.
func (p *OpenAIProvider) Chat(ctx stdcontext.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		req.Model = p.config.Model
	}

	reqBody, err := json.Marshal(p.mapChatRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := p.doRequest(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	return p.mapChatResponse(resp), nil
}

// GetDefaultModel returns the configured default model.
func (p *OpenAIProvider) GetDefaultModel() string {
	return p.config.Model
}

// doRequest executes a single HTTP request to the API.
func (p *OpenAIProvider) doRequest(ctx stdcontext.Context, reqBody []byte) (*oaResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.config.APIKey))

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.ErrorCtx(ctx, "failed to execute completion request", err)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		p.logger.ErrorCtx(ctx, "failed to read response body", err)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		p.logger.ErrorCtx(ctx, "completion API returned error status", nil,
			logger.Field{Key: "status_code", Value: httpResp.StatusCode},
			logger.Field{Key: "response_body", Value: string(respBody)})
		return nil, &httpError{
			StatusCode: httpResp.StatusCode,
			Body:       string(respBody),
		}
	}

	var oaResp oaResponse
	if err := json.Unmarshal(respBody, &oaResp); err != nil {
		p.logger.ErrorCtx(ctx, "failed to unmarshal completion response", err,
			logger.Field{Key: "response_body", Value: string(respBody)})
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if oaResp.Error != nil {
		p.logger.ErrorCtx(ctx, "completion API returned error", nil,
			logger.Field{Key: "error_type", Value: oaResp.Error.Type},
			logger.Field{Key: "error_code", Value: oaResp.Error.Code},
			logger.Field{Key: "error_message", Value: oaResp.Error.Message})
		return nil, fmt.Errorf("API error: %s (code: %s): %s",
			oaResp.Error.Type, oaResp.Error.Code, oaResp.Error.Message)
	}

	return &oaResp, nil
}

// mapChatRequest maps an internal ChatRequest to API format.
func (p *OpenAIProvider) mapChatRequest(req ChatRequest) oaRequest {
	messages := make([]oaMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = oaMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	return oaRequest{
		Messages:    messages,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
}

// mapChatResponse maps an API response to internal ChatResponse format.
func (p *OpenAIProvider) mapChatResponse(resp *oaResponse) *ChatResponse {
	if len(resp.Choices) == 0 {
		return &ChatResponse{
			Content:      "",
			FinishReason: FinishReasonError,
			Model:        resp.Model,
		}
	}

	choice := resp.Choices[0]

	finishReason := FinishReason(choice.FinishReason)
	switch finishReason {
	case FinishReasonStop, FinishReasonLength:
	default:
		finishReason = FinishReasonStop
	}

	return &ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: finishReason,
		Model:        resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
}
