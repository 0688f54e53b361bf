package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrDuplicateName = errors.New("command name or alias already registered")
	ErrInvalidName   = errors.New("command names must be a single lowercase word")
)

// Registry is the immutable command table. Both lookup paths resolve to the
// same *Definition.
type Registry[E any] struct {
	byName  map[string]*Definition[E]
	aliases map[string]string
	ordered []*Definition[E]
}

// NewRegistry validates every record and rejects any name or alias that is
// already taken by another record.
func NewRegistry[E any](defs ...Definition[E]) (*Registry[E], error) {
	validate := validator.New()
	r := &Registry[E]{
		byName:  make(map[string]*Definition[E], len(defs)),
		aliases: make(map[string]string),
	}

	for i := range defs {
		def := defs[i]
		if err := validate.Struct(def); err != nil {
			return nil, fmt.Errorf("command %q: %w", def.Name, err)
		}
		if len(def.Params.Types) < def.Params.Max {
			return nil, fmt.Errorf("command %q: %d param types for max %d", def.Name, len(def.Params.Types), def.Params.Max)
		}
		names := append([]string{def.Name}, def.Aliases...)
		if hasDuplicates(names) {
			return nil, fmt.Errorf("%w: %q repeats a name", ErrDuplicateName, def.Name)
		}
		for _, name := range names {
			if strings.ContainsAny(name, " \t\r\n") {
				return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
			}
			if r.taken(name) {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
			}
		}

		stored := &def
		r.byName[def.Name] = stored
		for _, alias := range def.Aliases {
			r.aliases[alias] = def.Name
		}
		r.ordered = append(r.ordered, stored)
	}
	return r, nil
}

func (r *Registry[E]) taken(name string) bool {
	if _, ok := r.byName[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// Lookup resolves an exact name first, then an alias.
func (r *Registry[E]) Lookup(name string) (*Definition[E], bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if def, ok := r.byName[name]; ok {
		return def, true
	}
	if canonical, ok := r.aliases[name]; ok {
		return r.byName[canonical], true
	}
	return nil, false
}

// Definitions returns records in registration order.
func (r *Registry[E]) Definitions() []*Definition[E] {
	out := make([]*Definition[E], len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Accessible lists the commands a player of the given admin level may run.
func (r *Registry[E]) Accessible(level int) []*Definition[E] {
	out := make([]*Definition[E], 0, len(r.ordered))
	for _, def := range r.ordered {
		if def.Permission.MinAdminLevel <= level {
			out = append(out, def)
		}
	}
	return out
}

func (r *Registry[E]) Len() int {
	return len(r.ordered)
}

func hasDuplicates(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}
