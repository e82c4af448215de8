package runtime

import (
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Constant is one entry of the constant pool: the compile-time-known boxed
// value a LdConst (or a DeoptAux frame list) references by index. This
// module does not implement the host's heap, so a Constant is represented
// by its kind and a plain Go payload wide enough to round-trip through
// msgpack, rather than an actual boxed SEXP.
type Constant struct {
	Kind string  `msgpack:"kind"`
	Int  int64   `msgpack:"int,omitempty"`
	Real float64 `msgpack:"real,omitempty"`
	Str  string  `msgpack:"str,omitempty"`
	Bool bool    `msgpack:"bool,omitempty"`
}

// Pool is the process-wide, append-only constant pool §5 describes:
// "inserted constants are permanently rooted". Insertion never removes or
// reorders an existing entry, so an index handed out once stays valid for
// the process's lifetime.
type Pool struct {
	mu      sync.Mutex
	entries []Constant
}

// NewPool creates an empty pool.
func NewPool() *Pool { return &Pool{} }

// Insert appends c and returns its permanent index.
func (p *Pool) Insert(c Constant) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, c)
	return len(p.entries) - 1
}

// Get returns the constant at idx.
func (p *Pool) Get(idx int) Constant {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entries[idx]
}

// Len returns the number of entries currently in the pool.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Snapshot serializes the pool's current contents as a frozen copy that
// Restore can load back. Nothing outside this package's tests calls
// Snapshot or Restore.
func (p *Pool) Snapshot() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return msgpack.Marshal(p.entries)
}

// Restore replaces the pool's contents with a previously-Snapshot'd image.
func (p *Pool) Restore(data []byte) error {
	var entries []Constant
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = entries
	return nil
}
