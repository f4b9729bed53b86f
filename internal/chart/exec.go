package chart

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ads-report/internal/model"
)

// DefaultTimeout bounds a single renderer invocation when none is configured.
const DefaultTimeout = 60 * time.Second

// MaxCapturedOutput is the most renderer output kept per invocation. Anything
// beyond it is read and discarded so the process never blocks on a full pipe.
const MaxCapturedOutput = 64 << 10

// ExecRenderer runs an external chart script once per chart. Arguments are
// passed as an argv list; no shell is involved.
type ExecRenderer struct {
	interpreter string
	script      string
	timeout     time.Duration
}

// NewExecRenderer creates an ExecRenderer. With an empty interpreter the
// script is executed directly.
func NewExecRenderer(interpreter, script string, timeout time.Duration) *ExecRenderer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRenderer{interpreter: interpreter, script: script, timeout: timeout}
}

// CheckPrerequisites verifies the interpreter is on PATH and the script exists.
// A directly executed script must carry an executable bit.
func (r *ExecRenderer) CheckPrerequisites() error {
	if r.interpreter != "" {
		if _, err := exec.LookPath(r.interpreter); err != nil {
			return model.NewConfigurationError("renderer interpreter "+r.interpreter, err)
		}
	}

	info, err := os.Stat(r.script)
	if err != nil {
		return model.NewConfigurationError("renderer script "+r.script, err)
	}
	if info.IsDir() {
		return model.NewConfigurationError("renderer script "+r.script, eris.New("is a directory"))
	}
	if r.interpreter == "" && info.Mode().Perm()&0o111 == 0 {
		return model.NewConfigurationError("renderer script "+r.script, eris.New("not executable"))
	}
	return nil
}

// Render invokes the script for req and returns its combined stdout/stderr.
// The output is captured whatever the exit status.
func (r *ExecRenderer) Render(ctx context.Context, req Request) (Artifact, error) {
	args, err := BuildArgs(req)
	if err != nil {
		return Artifact{}, &ChartError{Kind: req.Kind, Err: err}
	}

	script, err := SafePath(r.script)
	if err != nil {
		return Artifact{}, &ChartError{Kind: req.Kind, Err: err}
	}

	name := script
	argv := args
	if r.interpreter != "" {
		name = r.interpreter
		argv = append([]string{script}, args...)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, argv...)
	cmd.WaitDelay = time.Second

	out := &cappedBuffer{limit: MaxCapturedOutput}
	cmd.Stdout = out
	cmd.Stderr = out

	err = cmd.Run()
	artifact := Artifact{Path: args[1], Output: out.String()}
	if err == nil {
		return artifact, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = eris.Errorf("chart: renderer timed out after %s", r.timeout)
	} else {
		err = eris.Wrap(err, "chart: renderer failed")
	}
	return artifact, &ChartError{Kind: req.Kind, Output: artifact.Output, Err: err}
}

// cappedBuffer keeps the first limit bytes written to it and counts the rest.
// exec serializes writes when Stdout and Stderr are the same writer.
type cappedBuffer struct {
	buf     bytes.Buffer
	limit   int
	dropped int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	switch {
	case room <= 0:
		b.dropped += len(p)
	case len(p) > room:
		b.buf.Write(p[:room])
		b.dropped += len(p) - room
	default:
		b.buf.Write(p)
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	if b.dropped == 0 {
		return b.buf.String()
	}
	return b.buf.String() + "\n[" + strconv.Itoa(b.dropped) + " more bytes discarded]"
}
