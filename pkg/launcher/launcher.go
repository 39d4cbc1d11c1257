// Package launcher is the boundary that starts worker compute instances. A
// Launcher executes the instance-creation command it is handed and reports
// whether the launch (not the transfer) succeeded. It knows nothing about
// transfers, resources, or providers.
package launcher

import (
	"context"
	"time"
)

type LaunchSpec struct {
	// InstanceName is only used for diagnostics; the command carries it too.
	InstanceName string
	Program      string
	Args         []string
	Timeout      time.Duration
}

type LaunchResult struct {
	InstanceName string
	Stdout       string
	Stderr       string
	ExitCode     int
}

type Launcher interface {
	Launch(ctx context.Context, spec LaunchSpec) (*LaunchResult, error)
}
