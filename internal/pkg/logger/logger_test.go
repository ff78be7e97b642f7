package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevelopmentLogger(t *testing.T) {
	log, err := New("dev")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(-1), "development logger should enable debug level")
}

func TestNewProductionLogger(t *testing.T) {
	log, err := New("production")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(-1), "production logger should not enable debug level")
}
