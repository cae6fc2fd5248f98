package filler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type shiftCall struct {
	src    string
	dst    string
	factor float64
}

// fakeShifter 模拟 Shifter：把源文件内容复制到目标文件
type fakeShifter struct {
	mu    sync.Mutex
	calls []shiftCall
	fail  func(src, dst string) error
}

func (s *fakeShifter) Name() string { return "fake" }

func (s *fakeShifter) Shift(ctx context.Context, src, dst string, factor float64) error {
	s.mu.Lock()
	s.calls = append(s.calls, shiftCall{src: src, dst: dst, factor: factor})
	fail := s.fail
	s.mu.Unlock()

	if fail != nil {
		if err := fail(src, dst); err != nil {
			// leave a half-written file behind like a crashing tool would
			_ = os.WriteFile(dst, []byte("partial"), 0o644)
			return err
		}
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func (s *fakeShifter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeShifter) getCalls() []shiftCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]shiftCall(nil), s.calls...)
}

// fakeProgress 记录进度事件
type fakeProgress struct {
	mu    sync.Mutex
	total int
	done  []string
}

func (p *fakeProgress) Start(sets int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = sets
}

func (p *fakeProgress) Done(r *SetResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = append(p.done, r.Name)
}

// makeSet creates root/name and writes one file per pitch whose content is
// the pitch number, so copies can be traced back to their source.
func makeSet(t *testing.T, root, name string, files ...string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for _, f := range files {
		content := f[:len(f)-len(filepath.Ext(f))]
		if err := os.WriteFile(filepath.Join(dir, f), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
	return dir
}
