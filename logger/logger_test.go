package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init(false))
	assert.NotNil(t, L())

	require.NoError(t, Init(true))
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel), "debug mode should enable DebugLevel")
}

func TestContextHelpers(t *testing.T) {
	require.NoError(t, Init(false))
	assert.NotNil(t, WithRoomContext("lobby-1"))
	assert.NotNil(t, WithGameContext("game-1", "player-1"))
	assert.NotNil(t, WithGameContext("game-1", ""))
}
