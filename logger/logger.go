// Package logger configures the process-wide structured logger.
//
// All server components log through zap. Helpers attach the standard
// game/room/player fields so log lines from one match can be correlated.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// Init builds the global logger. Debug mode switches to the development
// encoder with DebugLevel enabled.
func Init(debug bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		l, err = cfg.Build()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	log = l
	return nil
}

// L returns the global logger.
func L() *zap.Logger {
	return log
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
	_ = log.Sync()
}

// WithRoomContext returns a logger tagged with the room id.
func WithRoomContext(roomID string) *zap.Logger {
	return log.With(zap.String("room_id", roomID))
}

// WithGameContext returns a logger tagged with game and player ids.
// An empty playerID is omitted.
func WithGameContext(gameID, playerID string) *zap.Logger {
	if playerID == "" {
		return log.With(zap.String("game_id", gameID))
	}
	return log.With(zap.String("game_id", gameID), zap.String("player_id", playerID))
}
