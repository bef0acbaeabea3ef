package ml

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexConfig holds configuration for the Vertex AI backend
type VertexConfig struct {
	BaseConfig
	ProjectID       string `json:"project_id"`
	Location        string `json:"location"`
	CredentialsFile string `json:"credentials_file"`
	Model           string `json:"model"`
}

// Load loads the Vertex configuration
func (c *VertexConfig) Load() error {
	if err := c.LoadConfig(c.ConfigPath, "vertex", c); err != nil {
		return err
	}

	// Fall back to environment variables if not set
	if c.ProjectID == "" {
		c.ProjectID = os.Getenv("GOOGLE_PROJECT_ID")
	}
	if c.Location == "" {
		c.Location = os.Getenv("GOOGLE_LOCATION")
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	}
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}

	return nil
}

// VertexModel implements the Model interface for Google's Vertex AI
type VertexModel struct {
	config VertexConfig
	client *genai.Client
	model  *genai.GenerativeModel
}

// VertexModelFactory implements ModelFactory for Vertex AI models
type VertexModelFactory struct {
	config VertexConfig
}

// NewVertexModelFactory creates a new Vertex model factory
func NewVertexModelFactory(config VertexConfig) *VertexModelFactory {
	return &VertexModelFactory{config: config}
}

// CreateModel creates a new Vertex model instance
func (f *VertexModelFactory) CreateModel() (Model, error) {
	return &VertexModel{
		config: f.config,
	}, nil
}

// Load initializes the Vertex client
func (m *VertexModel) Load(ctx context.Context) error {
	if m.config.ProjectID == "" {
		return fmt.Errorf("%w: GOOGLE_PROJECT_ID is not set", ErrMissingCredentials)
	}

	opts := []option.ClientOption{}
	if m.config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(m.config.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, m.config.ProjectID, m.config.Location, opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	m.client = client
	m.model = client.GenerativeModel(m.config.Model)
	return nil
}

// Complete sends the analysis prompt plus the image to Vertex AI and returns
// the raw completion text. The payload arrives base64-encoded because that is
// the transport shape; the SDK wants the decoded bytes back.
func (m *VertexModel) Complete(ctx context.Context, imageB64, mimeType string) (string, error) {
	if m.model == nil {
		return "", fmt.Errorf("model not loaded")
	}
	if mimeType == "" {
		mimeType = DefaultMimeType
	}

	imageData, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil {
		return "", fmt.Errorf("invalid base64 image payload: %w", err)
	}

	img := genai.ImageData(strings.TrimPrefix(mimeType, "image/"), imageData)
	resp, err := m.model.GenerateContent(ctx, genai.Text(analysisPrompt), img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no completion generated", ErrUpstream)
	}
	candidate := resp.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no content in completion", ErrUpstream)
	}

	if text, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(text), nil
	}
	return fmt.Sprintf("%v", candidate.Content.Parts[0]), nil
}
