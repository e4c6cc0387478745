// Package logger wraps the process-wide zap logger so callers don't import
// zap directly. Log is a no-op until Initialize is called, which keeps tests
// quiet without extra setup.
package logger

import (
	"time"

	"go.uber.org/zap"
)

var Log = zap.NewNop()

func Initialize() error {
	l, err := zap.NewProduction()
	if err != nil {
		return err
	}
	Log = l
	return nil
}

func Error(err error) zap.Field { return zap.Error(err) }

func String(key, value string) zap.Field { return zap.String(key, value) }

func Int(key string, value int) zap.Field { return zap.Int(key, value) }

func Float64(key string, value float64) zap.Field { return zap.Float64(key, value) }

func Duration(key string, value time.Duration) zap.Field { return zap.Duration(key, value) }
