package indexer

import (
	"context"
	"sync"
	"time"

	"codeberg.org/askdocs/server/internal/logger"
)

// runs FillEmbeddings on an interval so records ingested while serving get
// embedded. a single goroutine means fill passes never overlap.
type Filler struct {
	indexer         *Indexer
	maxContentChars int
	interval        time.Duration
	timeout         time.Duration
	stopCh          chan struct{}
	cancel          context.CancelFunc
	wg              sync.WaitGroup
}

func NewFiller(indexer *Indexer, maxContentChars int, interval time.Duration) *Filler {
	return &Filler{
		indexer:         indexer,
		maxContentChars: maxContentChars,
		interval:        interval,
		timeout:         10 * time.Minute,
		stopCh:          make(chan struct{}),
	}
}

// begins the background fill loop, starting with an immediate pass
func (f *Filler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel

	f.wg.Add(1)
	go f.run(ctx)
	logger.Info("embedding filler started", "interval", f.interval.String())
}

// stops the loop and cancels any pass in flight
func (f *Filler) Stop() {
	close(f.stopCh)
	f.cancel()
	f.wg.Wait()
	logger.Info("embedding filler stopped")
}

func (f *Filler) run(ctx context.Context) {
	defer f.wg.Done()

	f.fill(ctx)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.fill(ctx)
		case <-f.stopCh:
			return
		}
	}
}

func (f *Filler) fill(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, f.timeout)
	defer cancel()

	if _, err := f.indexer.FillEmbeddings(ctx, f.maxContentChars); err != nil {
		if isContextError(err) && parent.Err() != nil {
			return
		}
		logger.ErrorErr(err, "embedding fill failed")
	}
}
