package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is the model-service seam used by the pipeline. Services inject it
// so tests can supply doubles and no process-wide client handle exists.
type Client interface {
	// Generate sends a text prompt and returns the model's text response.
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)

	// GenerateVision sends raw file bytes as inline image data together with
	// an instruction and returns the model's text response.
	GenerateVision(ctx context.Context, instruction string, mimeType string, data []byte) (string, error)
}

var (
	ErrGenerationFailed = errors.New("failed to generate content")
	ErrAPIKeyMissing    = errors.New("GEMINI_API_KEY not set")
)

const (
	generationAPI  = "https://generativelanguage.googleapis.com/v1beta/models/gemini-3-pro-preview:generateContent"
	visionAPI      = "https://generativelanguage.googleapis.com/v1beta/models/gemini-3-pro-preview:generateContent"
	maxRetries     = 3
	initialBackoff = time.Second
	requestTimeout = 120 * time.Second
)

// GeminiClient calls the Gemini generation API directly via HTTP
type GeminiClient struct {
	apiKey     string
	httpClient *http.Client
}

// NewGeminiClient validates connectivity with the genai SDK and returns an
// HTTP-backed client for generation calls.
func NewGeminiClient(ctx context.Context) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	// Initialize the SDK client once at startup to validate configuration
	if _, err := genai.NewClient(ctx, option.WithAPIKey(apiKey)); err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	return &GeminiClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

// Generate sends a text prompt with retry and exponential backoff
func (c *GeminiClient) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	parts := []map[string]interface{}{
		{"text": prompt},
	}
	return c.callWithRetry(ctx, generationAPI, parts, temperature)
}

// GenerateVision sends inline file data plus a transcription instruction.
// Vision calls are not retried beyond the standard budget; callers treat a
// short response as a failure rather than retrying indefinitely.
func (c *GeminiClient) GenerateVision(ctx context.Context, instruction string, mimeType string, data []byte) (string, error) {
	parts := []map[string]interface{}{
		{
			"inline_data": map[string]interface{}{
				"mime_type": mimeType,
				"data":      base64.StdEncoding.EncodeToString(data),
			},
		},
		{"text": instruction},
	}
	return c.callWithRetry(ctx, visionAPI, parts, 0.0)
}

func (c *GeminiClient) callWithRetry(ctx context.Context, url string, parts []map[string]interface{}, temperature float64) (string, error) {
	var content string
	var err error

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		content, err = c.call(ctx, url, parts, temperature)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", err
			}
			if attempt == maxRetries-1 {
				return "", fmt.Errorf("failed to generate content after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if content != "" {
			return content, nil
		}
	}

	return "", ErrGenerationFailed
}

func (c *GeminiClient) call(ctx context.Context, url string, parts []map[string]interface{}, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", ErrAPIKeyMissing
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"temperature": temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("Gemini API error: Status %d, Body: %s", resp.StatusCode, truncateForLog(bodyBytes, 500))
		return "", fmt.Errorf("API error: %d", resp.StatusCode)
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}

	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		log.Printf("Failed to decode response. Body: %s", truncateForLog(bodyBytes, 500))
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("API error: %s (code: %d)", apiResp.Error.Message, apiResp.Error.Code)
	}

	if apiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("API blocked prompt: %s", apiResp.PromptFeedback.BlockReason)
	}

	if len(apiResp.Candidates) == 0 {
		return "", fmt.Errorf("API returned no candidates")
	}

	var responseText strings.Builder
	for i, candidate := range apiResp.Candidates {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			log.Printf("Warning: Candidate %d finished with reason: %s", i, candidate.FinishReason)
		}

		if len(candidate.Content.Parts) == 0 {
			return "", fmt.Errorf("API candidate has no parts (finish reason: %s)", candidate.FinishReason)
		}

		for _, part := range candidate.Content.Parts {
			if part.Text == "" {
				continue
			}
			responseText.WriteString(part.Text)
		}
	}

	result := responseText.String()
	if result == "" {
		return "", fmt.Errorf("API returned empty content")
	}

	return result, nil
}

func truncateForLog(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
