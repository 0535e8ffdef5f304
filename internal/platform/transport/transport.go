// Package transport delivers generated HL7 documents to the registry
// endpoint. The Deliverer interface is the boundary the submission
// service depends on; SFTPDeliverer is the production implementation.
package transport

import (
	"context"
	"sync"
)

// Deliverer uploads one named document to the registry drop directory.
type Deliverer interface {
	Deliver(ctx context.Context, name string, body []byte) error
}

// MemoryDeliverer records deliveries in memory, for tests and dry runs.
type MemoryDeliverer struct {
	mu    sync.Mutex
	files map[string][]byte

	// Fail, when set, is returned from every Deliver call.
	Fail error
}

// NewMemoryDeliverer creates an empty in-memory deliverer.
func NewMemoryDeliverer() *MemoryDeliverer {
	return &MemoryDeliverer{files: make(map[string][]byte)}
}

func (d *MemoryDeliverer) Deliver(_ context.Context, name string, body []byte) error {
	if d.Fail != nil {
		return d.Fail
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]byte, len(body))
	copy(cp, body)
	d.files[name] = cp
	return nil
}

// Delivered returns the body uploaded under name, if any.
func (d *MemoryDeliverer) Delivered(name string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	body, ok := d.files[name]
	return body, ok
}

// Count returns the number of delivered documents.
func (d *MemoryDeliverer) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.files)
}
