package bridge

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/foxbridge/api/schemas"
)

const helperModeEnv = "FOXBRIDGE_HELPER_MODE"

// TestHelperProcess stands in for the foxbridge binary.
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv(helperModeEnv)
	if mode == "" {
		return
	}
	task := os.Args[len(os.Args)-1]
	switch mode {
	case "echo":
		var d Descriptor
		if err := json.Unmarshal([]byte(task), &d); err != nil {
			fmt.Fprint(os.Stdout, `{"success":false,"error":"Invalid JSON"}`)
			os.Exit(1)
		}
		out, _ := json.Marshal(schemas.Succeed(map[string]interface{}{
			"action":  d.Action,
			"params":  d.Parameters,
			"task_id": os.Getenv(TaskIDEnv),
		}))
		fmt.Fprintln(os.Stdout, string(out))
	case "fail":
		fmt.Fprintln(os.Stderr, "browser crashed")
		os.Exit(3)
	case "garbage":
		fmt.Fprint(os.Stdout, "this is not an envelope")
	}
	os.Exit(0)
}

func helperRunner(t *testing.T, mode string) *Runner {
	t.Helper()
	t.Setenv(helperModeEnv, mode)
	return &Runner{
		Binary: os.Args[0],
		Args:   []string{"-test.run=TestHelperProcess", "--"},
		Logger: zaptest.NewLogger(t),
	}
}

func TestRun_MergesBaseConfig(t *testing.T) {
	r := helperRunner(t, "echo")
	r.BaseConfig = map[string]interface{}{"headless": true, "os": "linux"}

	env := r.Run(context.Background(), Descriptor{
		Action:     schemas.ActionNavigate,
		Parameters: map[string]interface{}{"url": "https://example.com", "os": "windows"},
	})
	require.True(t, env.Success, env.Error)
	assert.Equal(t, "navigate", env.Result["action"])
	assert.Equal(t, map[string]interface{}{
		"headless": true,
		"os":       "windows",
		"url":      "https://example.com",
	}, env.Result["params"])
	assert.NotEmpty(t, env.Result["task_id"])
}

func TestRun_NonZeroExit(t *testing.T) {
	env := helperRunner(t, "fail").Run(context.Background(), Descriptor{Action: schemas.ActionClearCookies})
	assert.False(t, env.Success)
	assert.Equal(t, "foxbridge exited with code 3: browser crashed", env.Error)
}

func TestRun_UnparsableOutput(t *testing.T) {
	env := helperRunner(t, "garbage").Run(context.Background(), Descriptor{Action: schemas.ActionClearCookies})
	assert.False(t, env.Success)
	assert.True(t, strings.HasPrefix(env.Error, "Failed to parse foxbridge output: "), env.Error)
}

func TestRun_SpawnFailure(t *testing.T) {
	r := &Runner{Binary: "/nonexistent/foxbridge"}
	env := r.Run(context.Background(), Descriptor{Action: schemas.ActionClearCookies})
	assert.False(t, env.Success)
	assert.True(t, strings.HasPrefix(env.Error, "Failed to spawn foxbridge: "), env.Error)
}

func TestMerge(t *testing.T) {
	r := &Runner{BaseConfig: map[string]interface{}{"a": 1, "b": 2}}
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 3, "c": 4}, r.merge(map[string]interface{}{"b": 3, "c": 4}))
	assert.Equal(t, map[string]interface{}{}, (&Runner{}).merge(nil))
}
