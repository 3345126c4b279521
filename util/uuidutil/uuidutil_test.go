package uuidutil

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDRandomGenerator(t *testing.T) {
	generator := UUIDRandomGenerator{}

	first, err := generator.Generate()
	require.NoError(t, err)
	second, err := generator.Generate()
	require.NoError(t, err)

	parsed, err := uuid.FromString(first)
	require.NoError(t, err)
	assert.Equal(t, byte(uuid.V4), parsed.Version())
	assert.NotEqual(t, first, second)
}
