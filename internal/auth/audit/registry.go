package audit

import "sync"

type Flags uint8

const (
	// FlagAudit records an AccessLog for every request to the operation.
	FlagAudit Flags = 1 << iota

	// FlagPublic marks an operation reachable without authentication. It is
	// informational; enforcement stays with the handler.
	FlagPublic
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Registry maps operation ids to flags. It is filled once at startup when
// routes are mounted and read on every request.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Flags
}

func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Flags)}
}

// Register sets the flags for op, replacing any earlier registration.
func (r *Registry) Register(op string, flags Flags) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op] = flags
}

func (r *Registry) Flags(op string) Flags {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ops[op]
}

func (r *Registry) Audited(op string) bool { return r.Flags(op).Has(FlagAudit) }
func (r *Registry) Public(op string) bool  { return r.Flags(op).Has(FlagPublic) }

// Operations returns every registered operation id.
func (r *Registry) Operations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ops))
	for op := range r.ops {
		out = append(out, op)
	}
	return out
}
