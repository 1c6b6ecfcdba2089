package link

import (
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	uuid "github.com/satori/go.uuid"
)

// Anything the registry can sweep.  *Link, *TCPLink and *UnixLink all
// qualify.
type Servicer interface {
	Id() uuid.UUID
	Service() (Result, error)
	Terminated() bool
}

// A Registry tracks the live links an owner is responsible for, in a
// stable id order.  It is bookkeeping only: it never polls, waits, or
// registers readiness interest.  The owner's event loop decides when
// to sweep.
type Registry struct {
	lock  sync.Mutex
	links *treemap.Map // id string -> Servicer
}

func NewRegistry() *Registry {
	return &Registry{links: treemap.NewWithStringComparator()}
}

func (r *Registry) Add(s Servicer) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.links.Put(s.Id().String(), s)
}

func (r *Registry) Remove(id uuid.UUID) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.links.Remove(id.String())
}

func (r *Registry) Get(id uuid.UUID) (Servicer, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	val, ok := r.links.Get(id.String())
	if !ok {
		return nil, false
	}

	return val.(Servicer), true
}

func (r *Registry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.links.Size()
}

func (r *Registry) Each(fn func(Servicer)) {
	for _, s := range r.snapshot() {
		fn(s)
	}
}

// Runs one Service pass over every registered link, in id order.
// Links that terminated during the sweep are removed.  Per-link
// results and errors are returned keyed by link id.
func (r *Registry) ServiceAll() (map[uuid.UUID]Result, map[uuid.UUID]error) {
	results := make(map[uuid.UUID]Result)
	failures := make(map[uuid.UUID]error)

	for _, s := range r.snapshot() {
		res, err := s.Service()
		if err != nil {
			failures[s.Id()] = err
		} else {
			results[s.Id()] = res
		}

		if s.Terminated() {
			r.Remove(s.Id())
		}
	}

	return results, failures
}

func (r *Registry) snapshot() []Servicer {
	r.lock.Lock()
	defer r.lock.Unlock()

	all := make([]Servicer, 0, r.links.Size())
	for _, key := range r.links.Keys() {
		val, _ := r.links.Get(key)
		all = append(all, val.(Servicer))
	}

	return all
}
