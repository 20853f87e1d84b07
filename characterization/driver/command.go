package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/example/faultchar/characterization/domain"
)

// EnvPrefix prefixes the environment variables CommandExecutor sets.
const EnvPrefix = "FAULTCHAR_"

// waitDelay bounds how long a killed command may keep its output open.
const waitDelay = 2 * time.Second

// CommandExecutor implements Executor by running a shell command once per
// test input. The combination is passed through the environment:
//
//	FAULTCHAR_COMBINATION  comma separated value indices, e.g. "1,0,2"
//	FAULTCHAR_P<i>         value index of parameter i
//	FAULTCHAR_<NAME>       value name of the parameter called NAME, when names are known
//
// Exit status 0 is a pass, any other exit status a failure. Timeouts,
// cancellation and commands that cannot be started are execution errors.
type CommandExecutor struct {
	// Command is the shell command to run.
	Command string

	// Shell is the shell to use for executing commands.
	// Defaults to "/bin/sh".
	Shell string

	// ShellArg is the argument to pass to the shell before the command.
	// Defaults to "-c".
	ShellArg string

	// WorkDir is the working directory of the command. Empty means the
	// current directory.
	WorkDir string

	// Environment contains additional environment variables.
	Environment map[string]string

	// ParameterNames and ValueNames optionally map indices to names.
	ParameterNames []string
	ValueNames     [][]string
}

// NewCommandExecutor creates a CommandExecutor for the given command.
func NewCommandExecutor(command string) *CommandExecutor {
	return &CommandExecutor{
		Command:  command,
		Shell:    "/bin/sh",
		ShellArg: "-c",
	}
}

// WithNames sets parameter and value names exported to the command.
func (e *CommandExecutor) WithNames(parameters []string, values [][]string) *CommandExecutor {
	e.ParameterNames = parameters
	e.ValueNames = values
	return e
}

// WithWorkDir sets the working directory.
func (e *CommandExecutor) WithWorkDir(dir string) *CommandExecutor {
	e.WorkDir = dir
	return e
}

// Execute implements Executor.
func (e *CommandExecutor) Execute(ctx context.Context, c domain.Combination) (domain.TestResult, error) {
	if e.Command == "" {
		return domain.TestResult{}, fmt.Errorf("%w: no command configured", domain.ErrInvalidConfig)
	}
	shell := e.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	shellArg := e.ShellArg
	if shellArg == "" {
		shellArg = "-c"
	}

	cmd := exec.CommandContext(ctx, shell, shellArg, e.Command)
	cmd.Dir = e.WorkDir
	cmd.WaitDelay = waitDelay
	cmd.Env = append(os.Environ(), e.environment(c)...)

	output, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return domain.TestResult{}, fmt.Errorf("command cancelled or timed out: %w", ctx.Err())
	}
	if err == nil {
		return domain.Passed(), nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return domain.TestResult{}, fmt.Errorf("starting command: %w", err)
	}
	return domain.Failed(&CommandError{ExitCode: exitErr.ExitCode(), Output: string(output)}), nil
}

func (e *CommandExecutor) environment(c domain.Combination) []string {
	values := c.Values()
	env := make([]string, 0, len(values)+len(e.Environment)+1)
	for k, v := range e.Environment {
		env = append(env, k+"="+v)
	}

	indices := make([]string, len(values))
	for i, v := range values {
		indices[i] = strconv.Itoa(v)
		env = append(env, fmt.Sprintf("%sP%d=%d", EnvPrefix, i, v))
		if i < len(e.ParameterNames) && i < len(e.ValueNames) && v >= 0 && v < len(e.ValueNames[i]) {
			env = append(env, EnvPrefix+envName(e.ParameterNames[i])+"="+e.ValueNames[i][v])
		}
	}
	env = append(env, EnvPrefix+"COMBINATION="+strings.Join(indices, ","))
	return env
}

// envName turns a parameter name into an environment variable suffix.
func envName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
}

// CommandError is the failure cause of a command exiting non-zero.
type CommandError struct {
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("exit status %d", e.ExitCode)
}
