package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "")
	require.Error(t, err)
}

func TestNewClientDefaultsModel(t *testing.T) {
	c, err := NewClient(context.Background(), "test-key", " ")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.model)
}

func TestGenerationConfigRequestsJSON(t *testing.T) {
	cfg := generationConfig()
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, float32(0), *cfg.Temperature)
}
