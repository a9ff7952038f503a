package form

import "maps"

// Record is the client-side mirror of one resource. Keys are field names; a
// key that is missing was not part of the server's representation, which is
// different from a key holding "".
type Record map[string]string

func (r Record) Get(name string) string {
	return r[name]
}

func (r Record) Has(name string) bool {
	_, ok := r[name]
	return ok
}

func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// Empty reports whether no field holds a value.
func (r Record) Empty() bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}
