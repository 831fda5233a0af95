// Package process implements the subprocess-execution collaborator exposed
// to recipes: run a command, stream its output through the logger tagged
// with the target's name, and return the captured bytes for recipes that
// want to inspect a tool's stdout.
package process

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/google/shlex"

	"github.com/xake-build/xake/src/cli/logging"
)

var log = logging.Log

// A Runner executes subprocesses on behalf of recipes.
type Runner struct{}

// New constructs a Runner.
func New() *Runner { return &Runner{} }

// Run executes cmdLine (split with a shell lexer if args is empty) in dir
// with env appended to the current process's environment, streaming
// combined stdout/stderr to the logger at Info level prefixed with label.
// It returns the captured stdout and stderr separately alongside any error
// (a non-zero exit is reported as an error, same as exec.Cmd.Run).
func (r *Runner) Run(ctx context.Context, label, cmdLine string, args []string, dir string, env []string) (stdout, stderr []byte, err error) {
	exe, argv, err := resolveCommand(cmdLine, args)
	if err != nil {
		return nil, nil, err
	}
	cmd := exec.CommandContext(ctx, exe, argv...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var outBuf, errBuf bytes.Buffer
	outPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	errPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}

	done := make(chan struct{}, 2)
	go streamTo(label, outPipe, &outBuf, done)
	go streamTo(label, errPipe, &errBuf, done)
	<-done
	<-done

	err = cmd.Wait()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

func resolveCommand(cmdLine string, args []string) (string, []string, error) {
	if len(args) > 0 {
		return cmdLine, args, nil
	}
	parts, err := shlex.Split(cmdLine)
	if err != nil || len(parts) == 0 {
		return "", nil, err
	}
	return parts[0], parts[1:], nil
}

func streamTo(label string, r io.Reader, buf *bytes.Buffer, done chan<- struct{}) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteByte('\n')
		log.Info("[%s] %s", label, line)
	}
	done <- struct{}{}
}
