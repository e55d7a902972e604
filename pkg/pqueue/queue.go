package pqueue

import (
	"sort"
)

func WithOrderAsc() Option {
	return func(o *options) {
		o.order = orderAsc
	}
}

func WithOrderDesc() Option {
	return func(o *options) {
		o.order = orderDesc
	}
}

// WithCap bounds the queue, items pushed past the cap are dropped from the tail.
func WithCap(size uint) Option {
	return func(o *options) {
		o.cap = int(size)
	}
}

type Option func(*options)

type options struct {
	order order
	cap   int
}

type order uint8

const (
	orderAsc order = iota
	orderDesc
)

type item[T any] struct {
	value T
	prior float64
}

func New[T any](opts ...Option) *Queue[T] {
	o := options{order: orderAsc, cap: -1}
	for _, opt := range opts {
		opt(&o)
	}
	return &Queue[T]{order: o.order, cap: o.cap}
}

// Queue keeps items ordered by priority. Ordering is stable: items with equal
// priority stay in push order.
type Queue[T any] struct {
	order order
	cap   int
	items []item[T]
}

func (q *Queue[T]) PopAll() []T {
	pulled := make([]T, len(q.items))
	for i := range q.items {
		pulled[i] = q.items[i].value
	}
	q.items = q.items[:0]
	return pulled
}

func (q *Queue[T]) Head() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	x := q.items[0]
	q.items = q.items[1:]
	return x.value, true
}

func (q *Queue[T]) Push(val T, priority float64) {
	if q.cap == 0 {
		return
	}
	// the new item goes after every item it does not beat, which keeps push order on ties
	idx := sort.Search(len(q.items), func(i int) bool {
		return q.before(priority, q.items[i].prior)
	})
	if q.cap > 0 && idx >= q.cap {
		return
	}
	q.items = append(q.items, item[T]{})
	copy(q.items[idx+1:], q.items[idx:])
	q.items[idx] = item[T]{value: val, prior: priority}
	if q.cap > 0 && len(q.items) > q.cap {
		q.items = q.items[:q.cap]
	}
}

func (q *Queue[T]) Cap() int { return q.cap }

func (q *Queue[T]) Len() int { return len(q.items) }

func (q *Queue[T]) Seek(idx int) (T, float64) {
	it := q.items[idx]
	return it.value, it.prior
}

func (q *Queue[T]) before(a, b float64) bool {
	if q.order == orderAsc {
		return a < b
	}
	return a > b
}
