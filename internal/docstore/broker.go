package docstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/myrjola/fitweek/internal/errors"
)

// Snapshot is the state of a watched document. Exists is false when the document is missing or was deleted.
type Snapshot struct {
	Exists   bool
	Document Document
}

type subscriber struct {
	ch chan Snapshot
}

// deliver replaces an unread snapshot with s so that slow subscribers only see the latest state.
func (sub *subscriber) deliver(s Snapshot) {
	select {
	case sub.ch <- s:
		return
	default:
	}
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- s
}

type broker struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func newBroker() *broker {
	return &broker{
		mu:   sync.Mutex{},
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

func (b *broker) publish(doc Document) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[doc.Path] {
		sub.deliver(Snapshot{Exists: true, Document: doc})
	}
}

func (b *broker) publishDeleted(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[path] {
		sub.deliver(Snapshot{Exists: false, Document: Document{Path: path}}) //nolint:exhaustruct // only the path.
	}
}

// Subscribe delivers the current state of the document at path followed by its state after every write made
// through this store. The channel is closed once ctx is done.
func (s *Store) Subscribe(ctx context.Context, path string) (<-chan Snapshot, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	sub := &subscriber{ch: make(chan Snapshot, 1)}

	// Holding the lock while reading orders the initial snapshot before any write published afterwards.
	s.broker.mu.Lock()
	doc, err := s.Get(ctx, path)
	switch {
	case errors.Is(err, ErrNotFound):
		sub.ch <- Snapshot{Exists: false, Document: Document{Path: path}} //nolint:exhaustruct // only the path.
	case err != nil:
		s.broker.mu.Unlock()
		return nil, errors.Wrap(err, "initial snapshot", slog.String("path", path))
	default:
		sub.ch <- Snapshot{Exists: true, Document: doc}
	}
	if s.broker.subs[path] == nil {
		s.broker.subs[path] = make(map[*subscriber]struct{})
	}
	s.broker.subs[path][sub] = struct{}{}
	s.broker.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.broker.mu.Lock()
		defer s.broker.mu.Unlock()
		delete(s.broker.subs[path], sub)
		if len(s.broker.subs[path]) == 0 {
			delete(s.broker.subs, path)
		}
		close(sub.ch)
		s.logger.LogAttrs(context.WithoutCancel(ctx), slog.LevelDebug, "closed subscription", slog.String("path", path))
	}()

	return sub.ch, nil
}
