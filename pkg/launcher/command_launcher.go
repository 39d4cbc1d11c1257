package launcher

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/input-output-hk/catalyst-forge-libs/executor"
	"github.com/pkg/errors"
)

const DefaultLaunchTimeout = 2 * time.Minute

// CommandLauncher starts worker instances by running a cloud provider CLI
// (gcloud, aws). Each launch runs with a bounded timeout so a wedged CLI call
// reports failure instead of hanging the batch.
type CommandLauncher struct {
	timeout time.Duration
}

func NewCommandLauncher(timeout time.Duration) *CommandLauncher {
	if timeout <= 0 {
		timeout = DefaultLaunchTimeout
	}

	return &CommandLauncher{timeout: timeout}
}

func (l *CommandLauncher) Launch(ctx context.Context, spec LaunchSpec) (*LaunchResult, error) {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = l.timeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := executor.New(spec.Program, spec.Args...).Execute(ctx, executor.SilentMode())

	launchResult := &LaunchResult{InstanceName: spec.InstanceName}
	if result != nil {
		launchResult.Stdout = result.Stdout
		launchResult.Stderr = result.Stderr
		launchResult.ExitCode = result.ExitCode
	}

	if err != nil {
		log.Errorf("Launch of instance %s failed: %s", spec.InstanceName, err)
		return launchResult, errors.Wrapf(err, "launch %s", spec.InstanceName)
	}

	return launchResult, nil
}
