package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "plaquerisk/internal/errors"
)

// Config holds narrative LLM adapter configuration
type Config struct {
	APIKey      string        // Gemini API key; empty disables the client
	Model       string        // e.g., "gemini-3-flash-preview"
	BaseURL     string        // Optional override (default: https://generativelanguage.googleapis.com/v1beta)
	Temperature float64       // lower = more deterministic
	Timeout     time.Duration // Request timeout
}

// JSONClient generates a JSON object from a prompt.
type JSONClient interface {
	GenerateJSON(ctx context.Context, prompt string) (map[string]interface{}, error)
}

// newJSONClient creates a Gemini client based on config
func newJSONClient(config Config) (JSONClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing Gemini API key")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-3-flash-preview"
	}

	return &GeminiClient{
		APIKey:      config.APIKey,
		BaseURL:     baseURL,
		Model:       model,
		Timeout:     config.Timeout,
		Temperature: config.Temperature,
	}, nil
}

// MockJSONClient is a mock LLM client for testing
type MockJSONClient struct {
	Response map[string]interface{} // Set this for testing
	Error    error                  // Set this to simulate errors
}

func (m *MockJSONClient) GenerateJSON(ctx context.Context, prompt string) (map[string]interface{}, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	if m.Response != nil {
		return m.Response, nil
	}
	return map[string]interface{}{
		"headline":         "Moderate estimated adverse-outcome risk (42%).",
		"clinical_summary": "The model estimates a 42.0% probability of adverse cardiovascular outcomes.",
	}, nil
}

// GeminiClient implements JSONClient against the generateContent API
type GeminiClient struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
}

func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (map[string]interface{}, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	type generationConfig struct {
		Temperature      float64 `json:"temperature"`
		ResponseMimeType string  `json:"responseMimeType"`
	}
	type reqBody struct {
		Contents         []content        `json:"contents"`
		GenerationConfig generationConfig `json:"generationConfig"`
	}

	body := reqBody{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      c.Temperature,
			ResponseMimeType: "application/json",
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.ExternalServiceError("gemini", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ExternalServiceError("gemini",
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 200)))
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("gemini response did not include candidates")
	}

	var chunks []string
	for _, p := range parsed.Candidates[0].Content.Parts {
		if p.Text != "" {
			chunks = append(chunks, p.Text)
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("gemini response did not include text output")
	}

	return extractJSONObject(strings.Join(chunks, "\n"))
}

// extractJSONObject pulls the outermost JSON object out of raw model text.
func extractJSONObject(raw string) (map[string]interface{}, error) {
	cleaned := strings.TrimSpace(raw)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &obj); err != nil {
		return nil, fmt.Errorf("invalid JSON object in response: %w", err)
	}
	return obj, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
