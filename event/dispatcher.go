// Package event provides the synchronous observer lists used by the triple
// and graph collections to announce additions and removals.
//
// Firing an event calls every registered handler inline, in registration
// order, before Fire returns. Handlers must not mutate the collection that
// fired the event while an enumeration of it is live further up the stack.
package event

import "sync"

// Token identifies a subscription. The zero Token is never issued.
type Token uint64

// Handler receives one event.
type Handler[T any] func(T)

type subscription[T any] struct {
	token   Token
	handler Handler[T]
}

// Dispatcher is an ordered list of handlers for events of type T.
// The zero value is ready to use.
type Dispatcher[T any] struct {
	mu   sync.Mutex
	next Token
	subs []subscription[T]
}

// Subscribe registers h and returns the token that removes it.
// A nil handler is ignored and yields the zero Token.
func (d *Dispatcher[T]) Subscribe(h Handler[T]) Token {
	if h == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.subs = append(d.subs, subscription[T]{token: d.next, handler: h})
	return d.next
}

// Unsubscribe removes the handler registered under tok and reports whether
// one was found.
func (d *Dispatcher[T]) Unsubscribe(tok Token) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, sub := range d.subs {
		if sub.token == tok {
			d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Fire calls every handler with ev. Handlers subscribed or removed while Fire
// runs take effect from the next call.
func (d *Dispatcher[T]) Fire(ev T) {
	d.mu.Lock()
	if len(d.subs) == 0 {
		d.mu.Unlock()
		return
	}
	subs := make([]subscription[T], len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	for _, sub := range subs {
		sub.handler(ev)
	}
}

// Len returns the number of registered handlers.
func (d *Dispatcher[T]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// Reset removes every handler.
func (d *Dispatcher[T]) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = nil
}
