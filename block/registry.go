package block

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

var ErrAlreadyRegistered = errors.New("block already registered")

// Registry assigns unique ids to blocks and keeps them for lookup. It has no
// package-level instance; callers create one and pass it where needed.
type Registry struct {
	mu     sync.Mutex
	log    logr.Logger
	byID   map[string]*Block
	order  []*Block
	counts map[string]int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report registrations.
func WithLogger(log logr.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		log:    logr.Discard(),
		byID:   make(map[string]*Block),
		counts: make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithName("registry")
	return r
}

// Register assigns b an id derived from its name: the first block named
// "Sequential" gets "Sequential", the next "Sequential_1", and so on.
func (r *Registry) Register(b *Block) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b.id != "" {
		return "", fmt.Errorf("%w: %s", ErrAlreadyRegistered, b.id)
	}

	id := b.name
	for {
		if n := r.counts[b.name]; n > 0 {
			id = fmt.Sprintf("%s_%d", b.name, n)
		}
		r.counts[b.name]++
		if _, taken := r.byID[id]; !taken {
			break
		}
	}

	b.id = id
	r.byID[id] = b
	r.order = append(r.order, b)
	r.log.V(1).Info("Registered block", "id", id, "params", len(b.Parameters()))

	return id, nil
}

// Lookup returns the block registered under id.
func (r *Registry) Lookup(id string) (*Block, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byID[id]
	return b, ok
}

// Blocks returns every registered block in registration order.
func (r *Registry) Blocks() []*Block {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Block, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered blocks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.order)
}

// Reset forgets every registered block. Blocks keep the ids they were given.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.V(1).Info("Resetting registry", "blocks", len(r.order))
	r.byID = make(map[string]*Block)
	r.order = nil
	r.counts = make(map[string]int)
}
