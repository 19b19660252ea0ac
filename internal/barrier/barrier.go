// Package barrier provides a group-completion signal: a callback that runs
// once every member of a registered set has reported that it is done.
package barrier

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// ErrAlreadyDone is returned when a member reports completion twice for the
// same open registration.
var ErrAlreadyDone = errors.New("member already marked done")

type registration[ID comparable] struct {
	members   []ID
	done      mapset.Set[ID]
	onAllDone func() error
}

// Barrier is not safe for concurrent use.
type Barrier[ID comparable] struct {
	pending map[ID]*registration[ID]
}

func New[ID comparable]() *Barrier[ID] {
	return &Barrier[ID]{pending: make(map[ID]*registration[ID])}
}

// Register arms onAllDone for the given members. It returns false and
// registers nothing if members is empty or any member still belongs to an
// open registration. Duplicate members are ignored.
func (b *Barrier[ID]) Register(members []ID, onAllDone func() error) bool {
	unique := mapset.New[ID]()
	var list []ID
	for _, m := range members {
		if unique.Has(m) {
			continue
		}
		if _, busy := b.pending[m]; busy {
			return false
		}
		unique.Put(m)
		list = append(list, m)
	}
	if len(list) == 0 {
		return false
	}
	reg := &registration[ID]{members: list, done: mapset.New[ID](), onAllDone: onAllDone}
	for _, m := range list {
		b.pending[m] = reg
	}
	return true
}

// MarkDone records that id finished. It returns false when id has no open
// registration. When id is the last member, the registration is cleared and
// its callback runs; the callback's error is returned.
func (b *Barrier[ID]) MarkDone(id ID) (bool, error) {
	reg, ok := b.pending[id]
	if !ok {
		return false, nil
	}
	if reg.done.Has(id) {
		return true, fmt.Errorf("%v: %w", id, ErrAlreadyDone)
	}
	reg.done.Put(id)
	if reg.done.Size() < len(reg.members) {
		return true, nil
	}
	for _, m := range reg.members {
		delete(b.pending, m)
	}
	if reg.onAllDone == nil {
		return true, nil
	}
	return true, reg.onAllDone()
}

// Pending reports whether id belongs to an open registration.
func (b *Barrier[ID]) Pending(id ID) bool {
	_, ok := b.pending[id]
	return ok
}

// Waiting reports whether id is in an open registration and has not yet
// marked itself done.
func (b *Barrier[ID]) Waiting(id ID) bool {
	reg, ok := b.pending[id]
	return ok && !reg.done.Has(id)
}

// Len is the number of members with an open registration.
func (b *Barrier[ID]) Len() int {
	return len(b.pending)
}
