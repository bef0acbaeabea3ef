package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// GeminiConfig holds configuration for the Gemini API backend
type GeminiConfig struct {
	BaseConfig
	APIKey         string `json:"api_key"`
	Model          string `json:"model"`
	Endpoint       string `json:"endpoint"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Load loads the Gemini configuration
func (c *GeminiConfig) Load() error {
	if err := c.LoadConfig(c.ConfigPath, "gemini", c); err != nil {
		return err
	}

	// Fall back to environment variables if not set
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Model == "" {
		c.Model = os.Getenv("GEMINI_MODEL")
	}
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}
	if c.Endpoint == "" {
		c.Endpoint = defaultGeminiEndpoint
	}
	if c.TimeoutSeconds == 0 {
		if secs, err := strconv.Atoi(os.Getenv("GEMINI_TIMEOUT_SECONDS")); err == nil {
			c.TimeoutSeconds = secs
		}
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 60
	}

	return nil
}

// GeminiModel implements the Model interface against the Generative Language
// API, authenticated with a single API key.
type GeminiModel struct {
	config GeminiConfig
	client *http.Client
}

// GeminiModelFactory implements ModelFactory for Gemini API models
type GeminiModelFactory struct {
	config GeminiConfig
}

// NewGeminiModelFactory creates a new Gemini model factory
func NewGeminiModelFactory(config GeminiConfig) *GeminiModelFactory {
	return &GeminiModelFactory{config: config}
}

// CreateModel creates a new Gemini model instance
func (f *GeminiModelFactory) CreateModel() (Model, error) {
	return &GeminiModel{
		config: f.config,
	}, nil
}

// Load initializes the Gemini model. The credential itself is checked per
// request so a misconfigured deployment reports errors instead of crashing.
func (m *GeminiModel) Load(ctx context.Context) error {
	m.client = &http.Client{
		Timeout: time.Duration(m.config.TimeoutSeconds) * time.Second,
	}
	return nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Complete sends the analysis prompt plus the inline image to the Gemini API
// and returns the raw completion text.
func (m *GeminiModel) Complete(ctx context.Context, imageB64, mimeType string) (string, error) {
	if m.config.APIKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrMissingCredentials)
	}
	if m.client == nil {
		return "", fmt.Errorf("model not loaded")
	}
	if mimeType == "" {
		mimeType = DefaultMimeType
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{Text: analysisPrompt},
					{InlineData: &geminiInlineData{MimeType: mimeType, Data: imageB64}},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	// The key travels in a header, not the URL: transport errors quote the
	// full request URL and those messages end up in client-facing bodies.
	url := fmt.Sprintf("%s/models/%s:generateContent", m.config.Endpoint, m.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", m.config.APIKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var result geminiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("%w: undecodable response body: %v", ErrUpstream, err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no completion generated", ErrUpstream)
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}
