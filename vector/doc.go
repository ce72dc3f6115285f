// Package vector holds the numeric primitives shared by the store and the
// rankers:
//   - dot product, norm, cosine similarity and L2 distance
//   - validation of embeddings (finite, non-empty, dimension checks)
//   - pluggable scoring metrics where a higher score means closer
//   - embedding encoding (little-endian float32 BLOB) and text parsing
package vector
