package export

import "context"

// progressBuffer is the number of progress updates queued before the
// export waits for the consumer
var progressBuffer = 64

// Job is an export running on its own goroutine
type Job struct {
	cancel   context.CancelFunc
	progress chan Progress
	done     chan struct{}
	result   Result
	err      error
}

// Start runs Export in the background
func (x *Exporter) Start(ctx context.Context, opts Options) *Job {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job{
		cancel:   cancel,
		progress: make(chan Progress, progressBuffer),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(j.done)
		defer close(j.progress)
		defer cancel()
		j.result, j.err = x.Export(ctx, opts, func(p Progress) {
			select {
			case j.progress <- p:
			case <-ctx.Done():
			}
		})
	}()
	return j
}

// Progress delivers one update per source file and is closed when the
// export ends. Once the buffer is full the export waits for the reader.
// Updates are dropped only after cancellation.
func (j *Job) Progress() <-chan Progress {
	return j.progress
}

// Cancel asks the export to stop after the current file
func (j *Job) Cancel() {
	j.cancel()
}

// Done is closed when the export has finished
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the export finishes and returns its outcome. Updates
// not yet read from Progress are discarded, so read Progress to the end
// first when every update matters.
func (j *Job) Wait() (Result, error) {
	for range j.progress {
	}
	<-j.done
	return j.result, j.err
}
