package evdev

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Sink is where a Reader publishes events, in arrival order. It is owned by
// the caller (the daemon's Supervisor); the Reader never closes it.
type Sink chan<- Event

// backoff is the delay applied after a transient read failure
// (EAGAIN/EINTR) before retrying.
const backoff = 10 * time.Millisecond

// Reader owns one open device node and pumps its raw event stream onto a
// sink channel, forever, until its context is cancelled or the device is
// lost. It never mutates, filters, or reorders events.
type Reader struct {
	path string
	file *os.File
	log  zerolog.Logger

	droppedTotal int
}

// Open opens path read-only. It fails with DeviceUnavailable if the node is
// absent or permissions are insufficient. The device is not grabbed for
// exclusive access: other readers of the node keep receiving its events.
func Open(path string, log zerolog.Logger) (*Reader, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, &DeviceUnavailable{Path: path, Err: err}
	}
	return &Reader{path: path, file: f, log: log.With().Str("device", path).Logger()}, nil
}

// Close releases the device node.
func (r *Reader) Close() error {
	return r.file.Close()
}

// DroppedTotal returns how many events this Reader has dropped under
// backpressure since it was opened.
func (r *Reader) DroppedTotal() int {
	return r.droppedTotal
}

// Run reads batches of raw events and pushes each to sink in arrival order,
// until ctx is cancelled or the device disappears (returning DeviceLost).
// If sink backpressures, Run drops the *oldest* buffered event rather than
// block ingestion — gesture input favours latency over completeness.
func (r *Reader) Run(ctx context.Context, sink chan Event) error {
	buf := make([]byte, rawEventSize*64)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := r.file.Read(buf)
		if err != nil {
			if isRetryable(err) {
				time.Sleep(backoff)
				continue
			}
			return &DeviceLost{Path: r.path, Err: err}
		}
		if n < rawEventSize {
			// Partial record: the kernel never interleaves them across reads in
			// practice, but a ProtocolViolation-style discard keeps this robust.
			continue
		}

		now := time.Now()
		for off := 0; off+rawEventSize <= n; off += rawEventSize {
			ev := decode(buf[off:off+rawEventSize], now)
			r.publish(ctx, sink, ev)
		}
	}
}

// publish sends ev to sink, dropping the oldest queued event instead of
// blocking if the channel is full.
func (r *Reader) publish(ctx context.Context, sink chan Event, ev Event) {
	select {
	case sink <- ev:
		return
	default:
	}

	select {
	case <-sink:
		r.droppedTotal++
		r.log.Warn().Int("dropped_total", r.droppedTotal).Msg("sink full, dropped oldest event")
	default:
	}

	select {
	case sink <- ev:
	case <-ctx.Done():
	}
}
