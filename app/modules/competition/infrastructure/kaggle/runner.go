package kaggle

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// CommandRunner abstracts the kaggle CLI subprocess so tests can stand in a
// fake. Run returns captured stdout; a non-zero exit is an error.
type CommandRunner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner runs the real kaggle binary.
type ExecRunner struct {
	Binary  string
	Timeout time.Duration
}

var _ CommandRunner = (*ExecRunner)(nil)

// NewExecRunner creates a runner for the given binary with a default
// per-invocation timeout.
func NewExecRunner(binary string) *ExecRunner {
	return &ExecRunner{Binary: binary, Timeout: 60 * time.Second}
}

func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("kaggle %v: %w (stderr: %s)", args, err, stderr.String())
	}
	return stdout.Bytes(), nil
}
