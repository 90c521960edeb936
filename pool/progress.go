package pool

import (
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Observer is told how far a batch has come. Start is called once before the first
// completion, Advance once per finished task and Finish after the last one.
// Observers never affect results or their order.
type Observer interface {
	Start(total int)
	Advance(n int)
	Finish()
}

// ObserverFunc adapts a callback receiving (done, total) to an Observer. The callback
// runs after every change and is never called concurrently.
func ObserverFunc(fn func(done, total int)) Observer {
	return &funcObserver{fn: fn}
}

type funcObserver struct {
	mu    sync.Mutex
	fn    func(done, total int)
	done  int
	total int
}

func (o *funcObserver) Start(total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done, o.total = 0, total
	o.fn(o.done, o.total)
}

func (o *funcObserver) Advance(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done += n
	o.fn(o.done, o.total)
}

func (o *funcObserver) Finish() {}

// progressBar renders completions with schollz/progressbar.
type progressBar struct {
	description string
	w           io.Writer
	bar         *progressbar.ProgressBar
}

// NewProgressBar returns an Observer drawing a terminal progress bar on w.
// A total of -1 renders an indeterminate spinner.
func NewProgressBar(description string, w io.Writer) Observer {
	if w == nil {
		w = os.Stderr
	}
	return &progressBar{description: description, w: w}
}

func (p *progressBar) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(p.description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (p *progressBar) Advance(n int) {
	if p.bar != nil {
		_ = p.bar.Add(n)
	}
}

func (p *progressBar) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

type nopObserver struct{}

func (nopObserver) Start(int)   {}
func (nopObserver) Advance(int) {}
func (nopObserver) Finish()     {}

func (cfg *mapConfig) batchObserver() Observer {
	switch {
	case cfg.observer != nil:
		return cfg.observer
	case cfg.progress:
		return NewProgressBar("processing", os.Stderr)
	default:
		return nopObserver{}
	}
}
