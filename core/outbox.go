package core

import (
	"sync"

	"github.com/xaviermilgo/solana-akinator/pkg/interfaces"
)

// frame is an encoded envelope waiting for its write. retry marks frames
// that go back to the pending queue when the write fails.
type frame struct {
	data  []byte
	retry bool
}

// outbox feeds one transport from its own writer goroutine, so socket writes
// never run under the manager lock. When max > 0 and the outbox is full, the
// oldest frame is evicted.
type outbox struct {
	conn interfaces.Conn
	max  int

	mu     sync.Mutex
	frames []frame

	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newOutbox(conn interfaces.Conn, max int) *outbox {
	return &outbox{
		conn: conn,
		max:  max,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// push appends f and reports whether an older frame was evicted.
func (o *outbox) push(f frame) bool {
	o.mu.Lock()
	evicted := false
	if o.max > 0 && len(o.frames) >= o.max {
		o.frames[0] = frame{}
		o.frames = o.frames[1:]
		evicted = true
	}
	o.frames = append(o.frames, f)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return evicted
}

func (o *outbox) stop() {
	o.stopOnce.Do(func() { close(o.done) })
}

func (o *outbox) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.frames)
}

func (o *outbox) next() (frame, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	select {
	case <-o.done:
		return frame{}, false
	default:
	}
	if len(o.frames) == 0 {
		return frame{}, false
	}
	f := o.frames[0]
	o.frames[0] = frame{}
	o.frames = o.frames[1:]
	return f, true
}

func (o *outbox) takeAll() []frame {
	o.mu.Lock()
	defer o.mu.Unlock()
	frames := o.frames
	o.frames = nil
	return frames
}

// run writes frames in order until stop is called or a write fails. On
// failure, onError gets the failed frame followed by every unwritten one.
func (o *outbox) run(onError func(err error, unsent []frame)) {
	for {
		select {
		case <-o.done:
			return
		case <-o.wake:
		}

		for {
			f, ok := o.next()
			if !ok {
				break
			}
			if err := o.conn.WriteMessage(f.data, interfaces.MsgText); err != nil {
				onError(err, append([]frame{f}, o.takeAll()...))
				return
			}
		}
	}
}
