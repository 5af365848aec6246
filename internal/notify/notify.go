// Package notify provides a small subscription registry used for change
// notifications.
package notify

import (
	"sort"
	"sync"
)

// Token identifies a subscription. The zero Token is never issued.
type Token uint64

// Registry fans a value out to subscribed handlers. It is safe for
// concurrent use. Handlers run synchronously on the notifying goroutine, in
// subscription order.
type Registry[T any] struct {
	mu       sync.Mutex
	next     Token
	handlers map[Token]func(T)
}

// Subscribe registers handler and returns its token.
func (r *Registry[T]) Subscribe(handler func(T)) Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handlers == nil {
		r.handlers = make(map[Token]func(T))
	}
	r.next++
	r.handlers[r.next] = handler
	return r.next
}

// Unsubscribe removes a subscription. Unknown tokens are ignored.
func (r *Registry[T]) Unsubscribe(token Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, token)
}

// Len returns the number of live subscriptions.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}

// Notify calls every handler with v. Handlers may unsubscribe themselves.
func (r *Registry[T]) Notify(v T) {
	r.mu.Lock()
	tokens := make([]Token, 0, len(r.handlers))
	for token := range r.handlers {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	handlers := make([]func(T), 0, len(tokens))
	for _, token := range tokens {
		handlers = append(handlers, r.handlers[token])
	}
	r.mu.Unlock()

	for _, h := range handlers {
		h(v)
	}
}
