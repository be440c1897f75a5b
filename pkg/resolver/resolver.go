// Package resolver defines the interfaces to SPECTER's external
// collaborators: name services that map human-readable names to
// meta-addresses, and content-addressed object storage. The core depends
// only on these interfaces; concrete network clients live with the host.
package resolver

import (
	"context"
	"sync"

	serrors "github.com/pranshurastogi/specter/internal/errors"
	"github.com/pranshurastogi/specter/pkg/protocol"
)

// Resolver maps a name to a published meta-address. How the record is
// obtained (text record, content hash, out-of-band) is opaque to the core.
// Resolutions must never be cached: names are mutable.
type Resolver interface {
	// Resolve returns the meta-address for name, ErrNameNotFound when no
	// record exists, or ErrInvalidRecord when the record does not parse as
	// a meta-address.
	Resolve(ctx context.Context, name string) (*protocol.MetaAddress, error)
}

// StaticResolver serves meta-addresses from an in-memory table. Used by
// tests and by the CLI when a name file is supplied.
type StaticResolver struct {
	mu      sync.RWMutex
	records map[string]*protocol.MetaAddress
}

// NewStaticResolver creates an empty static resolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{records: make(map[string]*protocol.MetaAddress)}
}

// Register adds or replaces a record. The meta-address is validated first.
func (r *StaticResolver) Register(name string, meta *protocol.MetaAddress) error {
	if meta == nil {
		return serrors.ErrInvalidRecord
	}
	if err := meta.Validate(); err != nil {
		return serrors.ErrInvalidRecord
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[name] = meta
	return nil
}

// Resolve implements Resolver.
func (r *StaticResolver) Resolve(ctx context.Context, name string) (*protocol.MetaAddress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	meta, ok := r.records[name]
	r.mu.RUnlock()
	if !ok {
		return nil, serrors.ErrNameNotFound
	}
	return meta, nil
}
