// internal/humanoid/mocks_test.go
package humanoid

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/xkilldash9x/foxbridge/internal/config"
	"go.uber.org/zap/zaptest"
)

// mockExecutor records everything the humanoid sends. Overrides replace the
// default behavior of a single method; they must not touch Humanoid state.
type mockExecutor struct {
	mu             sync.Mutex
	events         []MouseEventData
	sentKeys       []string
	sleepDurations []time.Duration
	geometries     map[string]*ElementGeometry

	MockDispatchMouseEvent func(ctx context.Context, data MouseEventData) error
	MockSendKeys           func(ctx context.Context, keys string) error
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{geometries: make(map[string]*ElementGeometry)}
}

func (m *mockExecutor) Sleep(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	m.sleepDurations = append(m.sleepDurations, d)
	m.mu.Unlock()
	return ctx.Err()
}

func (m *mockExecutor) DispatchMouseEvent(ctx context.Context, data MouseEventData) error {
	// Record first so cleanup events sent after a failure are still visible.
	m.mu.Lock()
	m.events = append(m.events, data)
	m.mu.Unlock()
	if m.MockDispatchMouseEvent != nil {
		return m.MockDispatchMouseEvent(ctx, data)
	}
	return ctx.Err()
}

func (m *mockExecutor) SendKeys(ctx context.Context, keys string) error {
	if m.MockSendKeys != nil {
		if err := m.MockSendKeys(ctx, keys); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentKeys = append(m.sentKeys, keys)
	return ctx.Err()
}

func (m *mockExecutor) GetElementGeometry(_ context.Context, selector string) (*ElementGeometry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	geo, ok := m.geometries[selector]
	if !ok {
		return nil, fmt.Errorf("no element matches %q", selector)
	}
	return geo, nil
}

func (m *mockExecutor) recorded() []MouseEventData {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MouseEventData, len(m.events))
	copy(out, m.events)
	return out
}

// testConfig returns the default model with pacing fast enough for unit tests.
func testConfig() config.HumanoidConfig {
	cfg := config.DefaultHumanoidConfig()
	cfg.EventsPerSecond = 1e6
	return cfg
}

func newTestHumanoid(t *testing.T, exec Executor, opts ...Option) *Humanoid {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewSource(42)))}, opts...)
	return New(testConfig(), zaptest.NewLogger(t), exec, opts...)
}

// within reports whether p lies inside geo's axis-aligned bounds.
func within(geo *ElementGeometry, x, y float64) bool {
	v := geo.Vertices
	return x >= v[0] && x <= v[4] && y >= v[1] && y <= v[5]
}
