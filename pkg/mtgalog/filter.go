package mtgalog

// typeSet is a set of event types. A nil set is empty.
type typeSet map[EventType]struct{}

func newTypeSet(types []EventType) typeSet {
	if len(types) == 0 {
		return nil
	}
	s := make(typeSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

func (s typeSet) has(t EventType) bool {
	_, ok := s[t]
	return ok
}

// compiledFilter decides which event types are published.
// A nil filter allows everything.
type compiledFilter struct {
	include typeSet
	exclude typeSet
}

// newCompiledFilter returns nil when both lists are empty.
func newCompiledFilter(include, exclude []EventType) *compiledFilter {
	if len(include) == 0 && len(exclude) == 0 {
		return nil
	}
	return &compiledFilter{include: newTypeSet(include), exclude: newTypeSet(exclude)}
}

// withInclude replaces the include list, keeping exclude.
func (f *compiledFilter) withInclude(types []EventType) *compiledFilter {
	out := &compiledFilter{include: newTypeSet(types)}
	if f != nil {
		out.exclude = f.exclude
	}
	return out
}

// withExclude replaces the exclude list, keeping include.
func (f *compiledFilter) withExclude(types []EventType) *compiledFilter {
	out := &compiledFilter{exclude: newTypeSet(types)}
	if f != nil {
		out.include = f.include
	}
	return out
}

// Allows reports whether events of type t pass the filter.
// A non-empty include list admits only its members; exclude always wins.
func (f *compiledFilter) Allows(t EventType) bool {
	if f == nil {
		return true
	}
	if len(f.include) > 0 && !f.include.has(t) {
		return false
	}
	return !f.exclude.has(t)
}
