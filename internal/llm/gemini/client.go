package gemini

import (
	"context"
	"time"

	"google.golang.org/genai"

	"prepwise/interview/internal/llm"
)

// Client represents a Gemini LLM client

type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

// GenerateContent runs one prompt through the configured model and
// returns the raw text output.
func (c *Client) GenerateContent(ctx context.Context, prompt string, requestID string) (*llm.GenerationResult, error) {
	startTime := time.Now()
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.config.Model,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to generate content",
			Err:      err,
		}
	}

	// Extract the response text
	if result == nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	content, err := result.Text()
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to extract response text",
			Err:      err,
		}
	}
	if content == "" {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	processingTime := time.Since(startTime).Milliseconds()

	return &llm.GenerationResult{
		Content: content,
		Metadata: llm.Metadata{
			ProcessingTimeMs: int(processingTime),
			Provider:         "gemini",
			Model:            c.config.Model,
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return "gemini"
}
