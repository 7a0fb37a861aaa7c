package eval

import (
	"github.com/zutxo/sigma/value"
)

// Env is a persistent map from variable ids to values. Extending an Env
// never changes the view of the environments it was built from, so a
// closure keeps seeing the bindings of its definition site.
type Env struct {
	id     int
	val    value.Value
	parent *Env
}

// Extend returns a new environment binding id to v on top of e. The nil Env
// is the empty environment.
func (e *Env) Extend(id int, v value.Value) *Env {
	return &Env{id: id, val: v, parent: e}
}

// Lookup returns the innermost binding of id.
func (e *Env) Lookup(id int) (value.Value, bool) {
	for n := e; n != nil; n = n.parent {
		if n.id == id {
			return n.val, true
		}
	}
	return nil, false
}

// Len returns the number of bindings, shadowed ones included.
func (e *Env) Len() int {
	n := 0
	for ; e != nil; e = e.parent {
		n++
	}
	return n
}
