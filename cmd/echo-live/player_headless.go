//go:build headless

package main

import (
	"io"
	"sync"
	"time"
)

// nullOutput pulls src at real-time pace and discards the audio.
type nullOutput struct {
	stop chan struct{}
	done chan struct{}
	mu   sync.Mutex
	err  error
}

func openOutput(sampleRate int, src io.Reader, latency time.Duration) (output, error) {
	o := &nullOutput{stop: make(chan struct{}), done: make(chan struct{})}
	frames := max(1, int(latency.Seconds()*float64(sampleRate)))
	buf := make([]byte, frames*2*4)

	go func() {
		defer close(o.done)
		ticker := time.NewTicker(latency)
		defer ticker.Stop()
		for {
			select {
			case <-o.stop:
				return
			case <-ticker.C:
				if _, err := io.ReadFull(src, buf); err != nil {
					o.mu.Lock()
					o.err = err
					o.mu.Unlock()
					return
				}
			}
		}
	}()
	return o, nil
}

func (o *nullOutput) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

func (o *nullOutput) Close() error {
	close(o.stop)
	<-o.done
	return nil
}
