package utils

import (
	"io"
	"sync"

	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"

	"limeal.fr/mcengine/pkg/game/shared"
)

// ProgressBars renders install events as one bar per stage.
type ProgressBars struct {
	p *mpb.Progress

	mu   sync.Mutex
	bars map[shared.Stage]*stageBar
}

type stageBar struct {
	bar     *mpb.Bar
	percent int
}

func NewProgressBars(w io.Writer) *ProgressBars {
	return &ProgressBars{
		p:    mpb.New(mpb.WithOutput(w), mpb.WithWidth(60)),
		bars: make(map[shared.Stage]*stageBar),
	}
}

// Handle is a shared.ProgressCallback.
func (b *ProgressBars) Handle(ev shared.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ev.Stage == shared.StageDone {
		return
	}
	s, ok := b.bars[ev.Stage]
	if !ok {
		s = &stageBar{
			bar: b.p.AddBar(100,
				mpb.PrependDecorators(decor.Name(string(ev.Stage), decor.WC{W: 10, C: decor.DidentRight})),
				mpb.AppendDecorators(decor.Percentage()),
			),
		}
		b.bars[ev.Stage] = s
	}

	target := int(ev.Percent)
	if target > 100 {
		target = 100
	}
	if target > s.percent {
		s.bar.IncrBy(target - s.percent)
		s.percent = target
	}
}

// Wait completes every bar and flushes the output.
func (b *ProgressBars) Wait() {
	b.mu.Lock()
	for _, s := range b.bars {
		s.bar.SetTotal(100, true)
	}
	b.mu.Unlock()
	b.p.Wait()
}
