// Package ident interns user-level identifiers and allocates the small
// family of process-unique integers the rest of lucid needs: source ids
// for the source map, and sealing symbols for polymorphic contracts.
package ident

import "sync"

// Ident is an interned user name together with the position of the use or
// definition site that produced it. Equality between two Idents is by
// Name only; Pos is carried for diagnostics and ignored by comparisons.
type Ident struct {
	Name string
	Pos  Pos
}

// Pos is a byte-range position into a single source file, identified by
// SourceID. A zero Pos (SourceID == 0, Valid == false) marks a
// synthesized term with no source location.
type Pos struct {
	SourceID int
	Start    int
	End      int
	Valid    bool
}

// NoPos is the position of a synthesized term.
var NoPos = Pos{}

// Equal compares two identifiers by name alone; Pos never participates.
func (id Ident) Equal(other Ident) bool {
	return id.Name == other.Name
}

// Allocator hands out process-unique integers: source ids (one per loaded
// file, used by the source map and the import cycle cache) and sealing
// symbols (one per forall instantiation, used by the contract runtime's
// dynamic sealing in internal/contracts). Both counters are guarded by a
// mutex, since a single Allocator is shared across everything reachable
// from one Eval call and
// the embedding API (pkg/lucid) allows concurrent read access to already
// evaluated values from multiple goroutines.
type Allocator struct {
	mu       sync.Mutex
	nextSrc  int
	nextSeal int
}

// New creates an Allocator with counters starting at 1 (0 is reserved to
// mean "unset"/"no source").
func New() *Allocator {
	return &Allocator{nextSrc: 1, nextSeal: 1}
}

// NewSourceID allocates a fresh, process-unique source id.
func (a *Allocator) NewSourceID() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextSrc
	a.nextSrc++
	return id
}

// NewSealSymbol allocates a fresh, process-unique sealing symbol for a
// forall instantiation. A monotone counter is adequate: the symbol only
// needs to be unforgeable within the process, and it is never exposed to
// programs, so observable evaluation stays deterministic.
func (a *Allocator) NewSealSymbol() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.nextSeal
	a.nextSeal++
	return s
}
