package shifter

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/liuscraft/tunefill/internal/sampleset"
)

// maxOutputTail bounds how much tool output is quoted in an error.
const maxOutputTail = 512

// Rubberband runs the rubberband command line tool once per shift.
type Rubberband struct {
	path      string
	extraArgs []string
	timeout   time.Duration
}

// NewRubberband resolves path on $PATH. timeout 0 means no limit.
func NewRubberband(path string, extraArgs []string, timeout time.Duration) (*Rubberband, error) {
	if strings.TrimSpace(path) == "" {
		path = "rubberband"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("rubberband binary %q: %w", path, err)
	}
	return &Rubberband{
		path:      resolved,
		extraArgs: append([]string(nil), extraArgs...),
		timeout:   timeout,
	}, nil
}

func (r *Rubberband) Name() string {
	return "rubberband"
}

// Args returns the argument list for one invocation:
//
//	[extra args...] <src> -T <factor> -f <factor> <dst>
func (r *Rubberband) Args(src, dst string, factor float64) []string {
	f := sampleset.FormatFactor(factor)
	args := make([]string, 0, len(r.extraArgs)+6)
	args = append(args, r.extraArgs...)
	return append(args, src, "-T", f, "-f", f, dst)
}

func (r *Rubberband) Shift(ctx context.Context, src, dst string, factor float64) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.path, r.Args(src, dst, factor)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := tail(out); msg != "" {
			return fmt.Errorf("rubberband %s: %w: %s", dst, err, msg)
		}
		return fmt.Errorf("rubberband %s: %w", dst, err)
	}
	return checkOutput(dst)
}

func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxOutputTail {
		s = "..." + s[len(s)-maxOutputTail:]
	}
	return s
}
