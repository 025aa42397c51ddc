package promptsource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_SubstitutesVars(t *testing.T) {
	s := NewStatic(map[string]string{
		"greeting": "Hello, {name}!",
	})
	out, err := s.Get(context.Background(), "greeting", map[string]string{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada!", out)
}

func TestStatic_MissingVarLeftInPlace(t *testing.T) {
	s := NewStatic(map[string]string{"greeting": "Hello, {name}!"})
	out, err := s.Get(context.Background(), "greeting", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello, {name}!", out)
}

func TestStatic_ResolvesReference(t *testing.T) {
	s := NewStatic(map[string]string{
		"header": "=== Section ===",
		"body":   "@header\nwelcome, {name}",
	})
	out, err := s.Get(context.Background(), "body", map[string]string{"name": "Bo"})
	require.NoError(t, err)
	assert.Equal(t, "=== Section ===\nwelcome, Bo", out)
}

func TestStatic_CircularReferenceHitsDepthCap(t *testing.T) {
	s := NewStatic(map[string]string{
		"a": "@b",
		"b": "@a",
	})
	_, err := s.Get(context.Background(), "a", nil)
	require.Error(t, err)
}

func TestStatic_MissingPath(t *testing.T) {
	s := NewStatic(map[string]string{})
	_, err := s.Get(context.Background(), "nope", nil)
	require.Error(t, err)
}
