package launcher

import (
	"context"
	"sync"
)

// MockLauncher records launch specs for tests. FailInstances lists instance
// names whose launch should report failure.
type MockLauncher struct {
	err           error
	FailInstances map[string]error

	mu       sync.Mutex
	launched []LaunchSpec
}

func NewMockLauncher() *MockLauncher {
	return &MockLauncher{FailInstances: make(map[string]error)}
}

func (l *MockLauncher) SetError(err error) {
	l.err = err
}

func (l *MockLauncher) Launched() []LaunchSpec {
	l.mu.Lock()
	defer l.mu.Unlock()
	launched := make([]LaunchSpec, len(l.launched))
	copy(launched, l.launched)
	return launched
}

func (l *MockLauncher) Launch(_ context.Context, spec LaunchSpec) (*LaunchResult, error) {
	l.mu.Lock()
	l.launched = append(l.launched, spec)
	l.mu.Unlock()

	if l.err != nil {
		return &LaunchResult{InstanceName: spec.InstanceName, ExitCode: 1}, l.err
	}

	if err, ok := l.FailInstances[spec.InstanceName]; ok {
		return &LaunchResult{InstanceName: spec.InstanceName, ExitCode: 1}, err
	}

	return &LaunchResult{InstanceName: spec.InstanceName}, nil
}
