// Package index defines the ranking abstraction shared by similarity search
// implementations: a Source to search, a Ranker that returns the top-K
// matches, and the Result type. Implementations in this module include an
// exact brute-force ranker.
package index
