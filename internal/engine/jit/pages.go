// Package jit manages executable memory pages as a scoped resource. The
// code generator that would emit machine code into these pages is out
// of scope for this module; what is in scope is the resource-management
// contract: pages are acquired, written once, and released exactly once
// in LIFO order relative to any later acquisition, mirroring how the
// engine's local scopes are released.
package jit

import (
	"fmt"
	"sync"

	apperrors "github.com/rjsgo/rjsgo/pkg/errors"
)

const pageSize = 4096

// Pages is one allocation of executable memory, rounded up to a whole
// number of OS pages. Real executable mmap (mprotect PROT_EXEC) is
// platform-specific and outside this module's scope; Pages models the
// allocation and lifetime contract a JIT compiler would need, backed by
// plain heap memory.
type Pages struct {
	mu       sync.Mutex
	buf      []byte
	released bool
}

// Alloc reserves size bytes rounded up to a page boundary.
func Alloc(size int) (*Pages, error) {
	if size <= 0 {
		return nil, apperrors.New(apperrors.CodeInternal, "jit: page allocation size must be positive")
	}
	rounded := (size + pageSize - 1) &^ (pageSize - 1)
	return &Pages{buf: make([]byte, rounded)}, nil
}

// Len returns the allocation size in bytes.
func (p *Pages) Len() int { return len(p.buf) }

// Write copies code into the pages starting at offset. It must be
// called before the pages are ever executed; there is no write-after-
// execute protection modeled here.
func (p *Pages) Write(offset int, code []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return apperrors.New(apperrors.CodeInternal, "jit: write to released pages")
	}
	if offset < 0 || offset+len(code) > len(p.buf) {
		return apperrors.New(apperrors.CodeInternal, fmt.Sprintf("jit: write out of bounds (offset=%d len=%d cap=%d)", offset, len(code), len(p.buf)))
	}
	copy(p.buf[offset:], code)
	return nil
}

// Release returns the pages. Using a *Pages after Release is a
// programming error; Write reports it as an error, while a second
// Release is a silent no-op.
func (p *Pages) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = true
	p.buf = nil
}

// Released reports whether Release has already been called.
func (p *Pages) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}
