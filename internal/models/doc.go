// Package models defines the core domain models for Roommate Ledger.
//
// # Models
//
//   - User: registered account; belongs to at most one room
//   - Room: a shared household with a member roster and a join code
//   - Entry: one shared-expense transaction split among selected members
//   - Ledger / BalanceRow: one member's derived view of what they owe and
//     are owed by every other member of their room
//
// # Design Principles
//
//  1. **Integer currency units**: all amounts are int64 minor units (cents).
//     Per-member shares use rounded equal division, so totals may drift by a
//     unit when the amount does not divide evenly; that drift is documented
//     behavior, not something the models try to hide.
//  2. **Single balance record per pair**: the debt between two users is
//     stored once, keyed by the unordered pair. Payable/receivable views are
//     derived from it, so the two sides of a debt can never disagree.
//  3. **Avoid circular references**: relationships use ID strings, not
//     pointers.
package models
