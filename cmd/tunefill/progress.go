package main

import (
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/liuscraft/tunefill/internal/filler"
)

// barProgress draws one bar that advances per finished sample set.
type barProgress struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func newBarProgress(w io.Writer) *barProgress {
	return &barProgress{p: mpb.New(mpb.WithOutput(w), mpb.WithWidth(64))}
}

func (b *barProgress) Start(sets int) {
	b.bar = b.p.AddBar(int64(sets),
		mpb.PrependDecorators(
			decor.Name("Sets: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.AverageETA(decor.ET_STYLE_GO),
		),
	)
}

func (b *barProgress) Done(*filler.SetResult) {
	if b.bar != nil {
		b.bar.Increment()
	}
}

// Wait flushes the bar. A run that stopped early leaves the bar incomplete,
// so it is aborted instead of waited for.
func (b *barProgress) Wait() {
	if b.bar != nil && !b.bar.Completed() {
		b.bar.Abort(false)
	}
	b.p.Wait()
}
