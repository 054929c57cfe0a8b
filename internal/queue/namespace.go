package queue

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/lanikai/framecast/internal/logging"
)

var log = logging.DefaultLogger.WithTag("queue")

// Namespace maps queue names to queues, like the system-wide message queue
// namespace. Names follow the same rule: a leading slash and no other
// slashes, e.g. "/frame_queue".
type Namespace struct {
	mu     sync.Mutex
	queues map[string]unlinker
}

type unlinker interface {
	unlink()
}

// DefaultNamespace is shared by the whole process.
var DefaultNamespace = NewNamespace()

func NewNamespace() *Namespace {
	return &Namespace{queues: make(map[string]unlinker)}
}

func validName(name string) bool {
	return len(name) > 1 && name[0] == '/' && !strings.Contains(name[1:], "/")
}

// Create makes a new queue under name. A stale queue left under the same name
// (e.g. by a stage that never shut down) is unlinked first.
func Create[T Sizer](ns *Namespace, name string, attr Attr) (*Queue[T], error) {
	if !validName(name) {
		return nil, errors.Wrap(ErrInvalidName, name)
	}
	if err := attr.validate(); err != nil {
		return nil, errors.Wrap(err, name)
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	if old, ok := ns.queues[name]; ok {
		log.Medium("Unlinking stale queue %s", name)
		old.unlink()
		delete(ns.queues, name)
	}

	q := newQueue[T](ns, name, attr)
	ns.queues[name] = q
	log.Low("Created queue %s depth=%d msgsize=%d", name, attr.Depth, attr.MaxMsgSize)
	return q, nil
}

// Open looks up an existing queue. The message type must match the one the
// queue was created with.
func Open[T Sizer](ns *Namespace, name string) (*Queue[T], error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	u, ok := ns.queues[name]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, name)
	}
	q, ok := u.(*Queue[T])
	if !ok {
		return nil, errors.Wrap(ErrTypeMismatch, name)
	}
	return q, nil
}

// Unlink removes name from the namespace. Handles already open on the queue
// keep working until closed. Unlinking a missing name returns ErrNotFound,
// which callers doing cleanup may ignore.
func (ns *Namespace) Unlink(name string) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	u, ok := ns.queues[name]
	if !ok {
		return errors.Wrap(ErrNotFound, name)
	}
	u.unlink()
	delete(ns.queues, name)
	return nil
}

// Names lists the queues currently linked.
func (ns *Namespace) Names() []string {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	names := make([]string, 0, len(ns.queues))
	for name := range ns.queues {
		names = append(names, name)
	}
	return names
}
