// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/foxbridge/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// syncBuffer is a goroutine-safe WriteSyncer for capturing logger output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) Sync() error { return nil }

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

var _ zapcore.WriteSyncer = (*syncBuffer)(nil)

// captureStream swaps *target for a pipe for the duration of a test.
func captureStream(t *testing.T, target **os.File) (*bytes.Buffer, func()) {
	t.Helper()
	original := *target
	r, w, err := os.Pipe()
	require.NoError(t, err)

	*target = w
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	return &buf, func() {
		w.Close()
		<-done
		*target = original
	}
}

// -- Test Cases --

func TestInitialize(t *testing.T) {
	t.Run("should initialize console logger with colors", func(t *testing.T) {
		ResetForTest()
		out := &syncBuffer{}

		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
			Colors:      config.ColorConfig{Info: "green"},
		}, out)
		GetLogger().Info("This is a test message.")
		Sync()

		output := out.String()
		assert.Contains(t, output, "INFO")
		assert.Contains(t, output, "This is a test message.")
		assert.Contains(t, output, "TestService.")
		assert.Contains(t, output, colorGreen, "Info level should be colorized green")
		assert.Contains(t, output, colorReset)
	})

	t.Run("should initialize json logger", func(t *testing.T) {
		ResetForTest()
		out := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "JSONTest"}, out)
		GetLogger().Warn("This is a JSON message.", zap.String("key", "value"))
		Sync()

		var logEntry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out.String()), &logEntry), "Log output should be valid JSON")

		assert.Equal(t, "WARN", logEntry["level"])
		assert.Equal(t, "JSONTest", logEntry["logger"])
		assert.Equal(t, "This is a JSON message.", logEntry["msg"])
		assert.Equal(t, "value", logEntry["key"])
	})

	t.Run("should respect the configured level", func(t *testing.T) {
		ResetForTest()
		out := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, out)
		GetLogger().Info("dropped")
		GetLogger().Warn("kept")
		Sync()

		assert.NotContains(t, out.String(), "dropped")
		assert.Contains(t, out.String(), "kept")
	})

	t.Run("should write to a log file if configured", func(t *testing.T) {
		ResetForTest()
		logFile := filepath.Join(t.TempDir(), "foxbridge.log")

		Initialize(config.LoggerConfig{
			Level:   "debug",
			Format:  "json",
			LogFile: logFile,
			MaxSize: 1,
		}, &syncBuffer{})
		GetLogger().Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "This should go to the file.")
	})

	t.Run("should only initialize once", func(t *testing.T) {
		ResetForTest()
		out := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "info", ServiceName: "First"}, out)
		logger1 := GetLogger()

		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second"}, out)
		logger2 := GetLogger()

		assert.Same(t, logger1, logger2)
		logger2.Info("test")
		Sync()

		assert.True(t, strings.Contains(out.String(), "First"))
		assert.False(t, strings.Contains(out.String(), "Second"))
	})
}

func TestInitializeLoggerKeepsStdoutClean(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	stdout, restoreStdout := captureStream(t, &os.Stdout)
	stderr, restoreStderr := captureStream(t, &os.Stderr)

	InitializeLogger(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "streams"})
	GetLogger().Info("diagnostic line")
	Sync()

	restoreStdout()
	restoreStderr()

	assert.Empty(t, stdout.String(), "stdout is reserved for the result envelope")
	assert.Contains(t, stderr.String(), "diagnostic line")
}

func TestGetLogger(t *testing.T) {
	t.Run("should return a fallback logger if not initialized", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
	})

	t.Run("should return the global logger after initialization", func(t *testing.T) {
		ResetForTest()
		Initialize(config.LoggerConfig{Level: "info", ServiceName: "GlobalTest"}, &syncBuffer{})
		assert.Same(t, globalLogger.Load(), GetLogger())
	})
}
