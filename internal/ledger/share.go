// Package ledger implements the balance bookkeeping that runs on every entry
// lifecycle event: splitting an entry's amount into per-member shares and
// turning creates, settlements, and deletes into per-pair balance deltas.
//
// The package is pure computation. Applying the deltas (and doing so
// atomically) is the storage layer's job.
package ledger

import "math"

// Share computes the per-member portion of an entry: amount divided evenly
// among memberCount participants, rounded to the nearest integer unit (halves
// round away from zero).
//
// The same share is applied to every member regardless of remainder, so for
// amounts that do not divide evenly the shares do not sum back to the amount
// (100 split 3 ways yields shares of 33, a one-unit drift). That is the
// product's documented behavior; callers must not redistribute the remainder.
func Share(amount int64, memberCount int) int64 {
	return int64(math.Round(float64(amount) / float64(memberCount)))
}
