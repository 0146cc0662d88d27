// Package types holds the consensus data structures consumed by the
// observed aggregates cache: attestation and sync committee contribution
// containers, their SSZ hash tree roots, and the slot/epoch primitives
// used to index them.
package types
