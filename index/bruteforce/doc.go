// Package bruteforce provides an exact ranker that answers top-K queries by
// scanning every stored vector once and keeping the best K candidates in a
// bounded heap, so memory stays O(K) and time O(N log K).
package bruteforce
