package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoolQuery(t *testing.T) {
	b, err := ParseBoolQuery("")
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = ParseBoolQuery("true")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, *b)

	b, err = ParseBoolQuery("0")
	require.NoError(t, err)
	assert.False(t, *b)

	_, err = ParseBoolQuery("maybe")
	assert.Error(t, err)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 20, ParseIntDefault("", 20))
	assert.Equal(t, 3, ParseIntDefault("3", 20))
	assert.Equal(t, 20, ParseIntDefault("three", 20))
	assert.Equal(t, -1, ParseIntDefault("-1", 20))
}
