// Package engine opens modernc.org/sqlite databases and registers the vector
// SQL functions used by the document store. It keeps a thin surface so other
// packages share one driver registration.
package engine
