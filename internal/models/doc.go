// Package models defines the core domain records for the Tripwiser client.
//
// # Models
//
//   - Session: the authenticated token pair plus a cached user snapshot
//   - User: an immutable profile snapshot captured at login time
//   - Trip: a shared-expense group identified by an invite code
//   - MemberPartition: a trip's member names split into free/not-free slots
//   - Transaction: a recorded payment or settlement between two member names
//   - Settlement: a server-computed suggested transfer (display-only)
//
// # Design Principles
//
//  1. Trip members are plain display names (strings), not user references.
//     A user binds to a name per trip via the linking protocol; the binding
//     lives server-side and is resolved on demand (the "casual name").
//  2. Monetary amounts travel as decimal strings, never floats. The client
//     does arithmetic only in internal/money, on integer cents.
//  3. The backend is the single source of truth. Records here are transient,
//     screen-scoped copies; any mutating call makes them stale and callers
//     re-fetch instead of patching locally.
package models
