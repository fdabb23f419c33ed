package checker

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Placeholders substituted in a command template.
const (
	InputPlaceholder  = "{input}"
	OutputPlaceholder = "{output}"
)

// DefaultTimeout bounds a single checker invocation.
const DefaultTimeout = 10 * time.Second

// defaultWaitDelay bounds how long Wait keeps draining pipes after the
// process was killed, in case a grandchild still holds them open.
const defaultWaitDelay = 2 * time.Second

// DefaultCommand is the Mermaid CLI renderer invoked through npx.
func DefaultCommand() []string {
	return []string{"npx", "mmdc", "-i", InputPlaceholder, "-o", OutputPlaceholder}
}

// CommandChecker runs an external executable as the checker.
type CommandChecker struct {
	// Command is the argv template. {input} and {output} are replaced with the
	// scratch paths; without placeholders both paths are appended.
	Command []string

	// Dir is the working directory of the process (empty = current directory).
	Dir string

	// Timeout is the hard wall-clock limit per invocation (0 = no limit).
	Timeout time.Duration

	// WaitDelay overrides the pipe drain delay after a kill (0 = default).
	WaitDelay time.Duration
}

// NewCommandChecker creates a CommandChecker with the given template and timeout.
// An empty template selects DefaultCommand.
func NewCommandChecker(command []string, timeout time.Duration) *CommandChecker {
	if len(command) == 0 {
		command = DefaultCommand()
	}
	return &CommandChecker{
		Command: command,
		Timeout: timeout,
	}
}

// BuildArgs expands the command template for the given paths.
// Returns the executable name and its arguments.
func (c *CommandChecker) BuildArgs(inputPath, outputPath string) (string, []string) {
	if len(c.Command) == 0 {
		return "", nil
	}

	replacer := strings.NewReplacer(InputPlaceholder, inputPath, OutputPlaceholder, outputPath)
	hasPlaceholder := false

	argv := make([]string, 0, len(c.Command)+2)
	for _, arg := range c.Command {
		if strings.Contains(arg, InputPlaceholder) || strings.Contains(arg, OutputPlaceholder) {
			hasPlaceholder = true
		}
		argv = append(argv, replacer.Replace(arg))
	}
	if !hasPlaceholder {
		argv = append(argv, inputPath, outputPath)
	}

	return argv[0], argv[1:]
}

// String returns the command template joined with spaces.
func (c *CommandChecker) String() string {
	return strings.Join(c.Command, " ")
}

// Check runs the command with stdout and stderr captured separately.
func (c *CommandChecker) Check(ctx context.Context, inputPath, outputPath string) Result {
	start := time.Now()

	name, args := c.BuildArgs(inputPath, outputPath)
	if name == "" {
		return Result{ExitCode: -1, Err: ErrNoCommand}
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = c.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = defaultWaitDelay
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		return result
	}

	// The checker finished but a grandchild kept the pipes open past WaitDelay
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		return result
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.ExitCode = -1
		result.TimedOut = true
		result.Err = &TimeoutError{Timeout: effectiveTimeout(ctx, c.Timeout, start)}
		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode == -1 {
			// Killed by a signal outside our deadline
			result.Err = err
		}
		return result
	}

	result.ExitCode = -1
	result.Err = err
	return result
}

// effectiveTimeout reports the limit that actually applied: our own timeout,
// or the caller's deadline when that was the tighter bound.
func effectiveTimeout(ctx context.Context, own time.Duration, start time.Time) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return own
	}
	parent := deadline.Sub(start).Round(time.Millisecond)
	if own == 0 || parent < own {
		return parent
	}
	return own
}
