package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFromContext(t *testing.T) {
	t.Parallel()
	if FromContext(context.Background()) == nil {
		t.Fatalf("the default logger must be returned for an empty context")
	}
	logger := zap.NewNop().Sugar()
	ctx := WithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Errorf("logger from context got: %p, expected: %p", got, logger)
	}
}

func TestLevelToZapLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		level    string
		expected zapcore.Level
	}{
		{name: "debug", level: "debug", expected: zapcore.DebugLevel},
		{name: "warning", level: " WARNING ", expected: zapcore.WarnLevel},
		{name: "error", level: "ERROR", expected: zapcore.ErrorLevel},
		{name: "empty", level: "", expected: zapcore.InfoLevel},
		{name: "unknown", level: "verbose", expected: zapcore.InfoLevel},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := levelToZapLevel(test.level); got != test.expected {
				t.Errorf("level got: %v, expected: %v", got, test.expected)
			}
		})
	}
}
