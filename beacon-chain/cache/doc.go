// Package cache includes the observed aggregates cache: a slot-indexed,
// memory-bounded filter that rejects aggregate attestations and sync
// committee contributions which carry no new information compared to
// aggregates already seen on gossip.
package cache
