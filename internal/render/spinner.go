package render

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Spinner is the busy indicator shown while a fetch is in flight.
type Spinner struct {
	w    io.Writer
	desc string

	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done chan struct{}
}

func NewSpinner(w io.Writer, desc string) *Spinner {
	return &Spinner{w: w, desc: desc}
}

// Start begins spinning; it does nothing if already running.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		return
	}

	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.w),
		progressbar.OptionSetDescription(s.desc),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func(bar *progressbar.ProgressBar, stop, done chan struct{}) {
		defer close(done)
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-stop:
				_ = bar.Finish()
				return
			case <-t.C:
				_ = bar.Add(1)
			}
		}
	}(s.bar, s.stop, s.done)
}

// Stop clears the spinner line and waits for it to finish.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.bar = nil
}

func (s *Spinner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bar != nil
}
