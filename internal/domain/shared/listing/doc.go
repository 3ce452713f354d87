// Package listing is the record list engine shared by every agency module.
//
// A Store holds one module's ordered collection and is only ever changed by
// swapping in a new slice. A Controller layers a filter set, an optional sort
// and a selection on top of a Store and exposes create, update and status
// transitions. Derive is the pure filter-then-sort projection behind every list.
package listing
