// Package execution runs external command line tools, alone or as a
// three-stage pipeline, and records every invocation.
package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/me/seqqc/pkg/model"
)

// ExternalCmdWarning is printed before every external command.
const ExternalCmdWarning = "Running external command line application(s). " +
	"This may print messages to stdout and/or stderr.\n" +
	"The command(s) being run are below. These commands " +
	"cannot be manually re-run as they will depend on " +
	"temporary files that no longer exist."

// Recorder persists invocation records.
type Recorder interface {
	RecordInvocation(ctx context.Context, inv *model.Invocation) error
}

// Runner executes external commands as local processes.
type Runner struct {
	logger       *slog.Logger
	stdout       io.Writer
	stderr       io.Writer
	stageTimeout time.Duration
	recorder     Recorder
	action       string
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets where the banner and the tools' stdout and stderr go.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithStageTimeout bounds every process. Zero leaves processes unbounded.
func WithStageTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.stageTimeout = d
	}
}

// WithRecorder stores an audit record for every invocation.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// NewRunner creates a Runner writing to os.Stdout and os.Stderr.
func NewRunner(logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger: logger.With("component", "runner"),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ForAction returns a copy of r whose records are tagged with action.
func (r *Runner) ForAction(action string) *Runner {
	c := *r
	c.action = action
	c.logger = r.logger.With("action", action)
	return &c
}

// Run executes argv and waits for it. A non-zero exit is returned as
// *ExternalToolFailure.
func (r *Runner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return ErrEmptyCommand
	}

	inv := r.begin([][]string{argv}, "")

	stageCtx, cancel := r.stageContext(ctx)
	defer cancel()

	cmd := exec.CommandContext(stageCtx, argv[0], argv[1:]...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	var err error
	if runErr := cmd.Run(); runErr != nil {
		err = toolFailure(argv[0], runErr, stageCtx)
	}

	r.finish(ctx, inv, err)
	return err
}

// RunPiped runs cmd1 | cmd2 | cmd3 > outPath. All three processes are
// started before any is waited on. When a stage fails the others are
// killed; the reported failure is the first stage in pipeline order that
// exited with a status, falling back to the first stage killed by a signal.
func (r *Runner) RunPiped(ctx context.Context, cmd1, cmd2, cmd3 []string, outPath string) error {
	stages := [][]string{cmd1, cmd2, cmd3}
	for _, argv := range stages {
		if len(argv) == 0 {
			return ErrEmptyCommand
		}
	}

	inv := r.begin(stages, outPath)
	err := r.runPipeline(ctx, stages, outPath)
	r.finish(ctx, inv, err)
	return err
}

func (r *Runner) runPipeline(ctx context.Context, stages [][]string, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pipeline output: %w", err)
	}
	defer out.Close()

	pipeCtx, cancelAll := context.WithCancel(ctx)
	defer cancelAll()

	stderr := shareWriter(r.stderr)
	cmds := make([]*exec.Cmd, len(stages))
	stageCtxs := make([]context.Context, len(stages))
	for i, argv := range stages {
		stageCtx, cancel := r.stageContext(pipeCtx)
		defer cancel()
		stageCtxs[i] = stageCtx
		cmds[i] = exec.CommandContext(stageCtx, argv[0], argv[1:]...)
		cmds[i].Stderr = stderr
	}

	// The parent's copies of the pipe ends are closed as soon as the
	// children hold them, so an early exit downstream reaches upstream
	// as a broken pipe instead of a blocked write.
	var parentEnds []*os.File
	closeParentEnds := func() {
		for _, f := range parentEnds {
			f.Close()
		}
		parentEnds = nil
	}
	for i := 0; i < len(cmds)-1; i++ {
		pr, pw, err := os.Pipe()
		if err != nil {
			closeParentEnds()
			return fmt.Errorf("create pipe: %w", err)
		}
		cmds[i].Stdout = pw
		cmds[i+1].Stdin = pr
		parentEnds = append(parentEnds, pr, pw)
	}
	cmds[len(cmds)-1].Stdout = out

	started := 0
	var startErr error
	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			startErr = toolFailure(stages[i][0], err, stageCtxs[i])
			break
		}
		started++
	}
	closeParentEnds()

	if startErr != nil {
		cancelAll()
		for _, cmd := range cmds[:started] {
			cmd.Wait()
		}
		return startErr
	}

	type waitResult struct {
		idx int
		err error
	}
	results := make(chan waitResult, len(cmds))
	for i, cmd := range cmds {
		go func(i int, cmd *exec.Cmd) {
			results <- waitResult{idx: i, err: cmd.Wait()}
		}(i, cmd)
	}

	failures := make([]*ExternalToolFailure, len(cmds))
	for range cmds {
		res := <-results
		if res.err == nil {
			continue
		}
		failures[res.idx] = toolFailure(stages[res.idx][0], res.err, stageCtxs[res.idx])
		r.logger.Debug("pipeline stage failed", "stage", res.idx+1, "tool", stages[res.idx][0], "error", res.err)
		cancelAll()
	}

	return firstFailure(failures)
}

// firstFailure picks the stage to blame: the first that exited with a
// status, else the first that timed out, else the first failure at all.
func firstFailure(failures []*ExternalToolFailure) error {
	for _, f := range failures {
		if f != nil && f.exited() {
			return f
		}
	}
	for _, f := range failures {
		if f != nil && errors.Is(f.Err, context.DeadlineExceeded) {
			return f
		}
	}
	for _, f := range failures {
		if f != nil {
			return f
		}
	}
	return nil
}

// lockedWriter serializes writes from several exec copy goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// shareWriter returns w unchanged when it is a file, which exec hands to
// the children directly. Any other writer is wrapped so pipeline stages
// can write to it concurrently.
func shareWriter(w io.Writer) io.Writer {
	if _, ok := w.(*os.File); ok || w == nil {
		return w
	}
	return &lockedWriter{w: w}
}

func (r *Runner) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.stageTimeout > 0 {
		return context.WithTimeout(ctx, r.stageTimeout)
	}
	return context.WithCancel(ctx)
}

// toolFailure converts an exec error into an *ExternalToolFailure.
func toolFailure(tool string, err error, stageCtx context.Context) *ExternalToolFailure {
	f := &ExternalToolFailure{Tool: tool, ExitCode: -1, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		f.ExitCode = exitErr.ExitCode()
	}
	if f.ExitCode < 0 && stageCtx.Err() != nil {
		f.Err = fmt.Errorf("%w: %v", stageCtx.Err(), err)
	}
	return f
}

// begin prints the banner and the command line, then opens an audit record.
func (r *Runner) begin(stages [][]string, outPath string) *model.Invocation {
	inv := &model.Invocation{
		ID:         "inv_" + uuid.New().String(),
		Action:     r.action,
		Argv:       stages,
		OutputPath: outPath,
		StartedAt:  time.Now().UTC(),
	}

	line := inv.CommandLine()
	fmt.Fprintln(r.stdout, ExternalCmdWarning)
	fmt.Fprintf(r.stdout, "\nCommand: %s\n\n", line)
	r.logger.Info("running external command", "invocation_id", inv.ID, "command", line)
	return inv
}

func (r *Runner) finish(ctx context.Context, inv *model.Invocation, err error) {
	inv.FinishedAt = time.Now().UTC()
	if err != nil {
		inv.Error = err.Error()
		inv.ExitCode = -1
		var f *ExternalToolFailure
		if errors.As(err, &f) {
			inv.ExitCode = f.ExitCode
		}
		r.logger.Error("external command failed", "invocation_id", inv.ID, "exit_code", inv.ExitCode, "duration", inv.Duration().String())
	} else {
		r.logger.Debug("external command finished", "invocation_id", inv.ID, "duration", inv.Duration().String())
	}

	if r.recorder == nil {
		return
	}
	// Record even when the caller's context was cancelled.
	if recErr := r.recorder.RecordInvocation(context.WithoutCancel(ctx), inv); recErr != nil {
		r.logger.Warn("record invocation", "invocation_id", inv.ID, "error", recErr)
	}
}
