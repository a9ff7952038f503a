package form

import (
	"fmt"
	"slices"
)

// Kind is the wire type of a field's value.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindNumber
	KindBool
	// KindList fields are arrays on the wire and summarized into a single
	// string in the form.
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Role decides how a field takes part in requests.
type Role int

const (
	// RoleAttribute fields are caller-supplied and sent on create/update.
	RoleAttribute Role = iota
	// RoleIdentifier is the server-assigned id, used in member paths and
	// never sent in a body.
	RoleIdentifier
	// RoleParent holds the id of the enclosing resource for nested
	// collections. It is part of the path and also sent in the body.
	RoleParent
	// RoleDerived fields are computed by the server and read-only.
	RoleDerived
)

// Field describes one form field. Name is both the form field name and the
// backend's JSON key, so it must match the backend exactly.
type Field struct {
	Name  string
	Label string
	// Aliases are alternate response keys accepted when Name is absent.
	Aliases []string
	Kind    Kind
	Role    Role
	// Filter fields become query parameters on list requests.
	Filter bool
}

// ReadOnly reports whether the field can only be written by a server response.
func (f Field) ReadOnly() bool {
	return f.Role == RoleIdentifier || f.Role == RoleDerived
}

// Schema binds a REST collection to an ordered set of form fields.
type Schema struct {
	// Name is the collection path segment, e.g. "shopcarts".
	Name string
	// Singular is the display name used in messages, e.g. "Shopcart".
	Singular string
	// Parent is the enclosing collection's path segment for nested
	// resources, e.g. "shopcarts" for cart items.
	Parent string
	// Emptiable collections support PUT /{name}/{id}/clear.
	Emptiable bool
	Fields    []Field
}

func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s Schema) Identifier() Field {
	for _, f := range s.Fields {
		if f.Role == RoleIdentifier {
			return f
		}
	}
	return Field{Name: "id", Label: "ID", Aliases: []string{"_id"}, Role: RoleIdentifier}
}

func (s Schema) ParentField() (Field, bool) {
	for _, f := range s.Fields {
		if f.Role == RoleParent {
			return f, true
		}
	}
	return Field{}, false
}

// Writable returns the fields sent in create/update bodies, in schema order.
func (s Schema) Writable() []Field {
	out := []Field{}
	for _, f := range s.Fields {
		if f.Role == RoleAttribute || f.Role == RoleParent {
			out = append(out, f)
		}
	}
	return out
}

func (s Schema) Filters() []Field {
	out := []Field{}
	for _, f := range s.Fields {
		if f.Filter {
			out = append(out, f)
		}
	}
	return out
}

// Columns returns the table columns for a result set: the identifier and
// every non-derived field, then each derived field present in at least one
// record.
func (s Schema) Columns(records []Record) []Field {
	out := []Field{s.Identifier()}
	for _, f := range s.Fields {
		if f.Role == RoleIdentifier {
			continue
		}
		if f.Role != RoleDerived {
			out = append(out, f)
			continue
		}
		present := slices.ContainsFunc(records, func(r Record) bool {
			return r.Has(f.Name)
		})
		if present {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks the schema itself, not a record.
func (s Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema has no collection name")
	}
	identifiers := 0
	seen := map[string]bool{}
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s: field without a name", s.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %s: duplicate field %s", s.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Role == RoleIdentifier {
			identifiers++
		}
	}
	if identifiers != 1 {
		return fmt.Errorf("schema %s: expected exactly one identifier, got %d", s.Name, identifiers)
	}
	if _, ok := s.ParentField(); ok != (s.Parent != "") {
		return fmt.Errorf("schema %s: parent collection and parent field must be set together", s.Name)
	}
	return nil
}
