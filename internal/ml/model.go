package ml

import (
	"context"
	"fmt"
)

// Model is an inference backend that can describe an image. Complete sends
// the fixed analysis prompt plus one inline image and returns the model's
// raw text response, unparsed.
type Model interface {
	// Load initializes the model with its configuration
	Load(ctx context.Context) error
	// Complete takes a base64-encoded image and its MIME type and returns
	// the raw completion text.
	Complete(ctx context.Context, imageB64, mimeType string) (string, error)
}

// ModelFactory creates a new model instance based on configuration
type ModelFactory interface {
	// CreateModel creates a new model instance
	CreateModel() (Model, error)
}

// NewModel creates a new model instance based on the model type
func NewModel(modelType, configPath string) (Model, error) {
	var factory ModelFactory

	switch modelType {
	case "gemini", "":
		config := GeminiConfig{
			BaseConfig: BaseConfig{
				ConfigPath: configPath,
			},
		}
		if err := config.Load(); err != nil {
			return nil, fmt.Errorf("failed to load Gemini config: %w", err)
		}
		factory = NewGeminiModelFactory(config)
	case "vertex":
		config := VertexConfig{
			BaseConfig: BaseConfig{
				ConfigPath: configPath,
			},
		}
		if err := config.Load(); err != nil {
			return nil, fmt.Errorf("failed to load Vertex config: %w", err)
		}
		factory = NewVertexModelFactory(config)
	default:
		return nil, fmt.Errorf("unsupported model type: %s", modelType)
	}
	return factory.CreateModel()
}
