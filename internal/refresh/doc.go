// Package refresh decides when tracked prices may be refreshed and runs the
// refresh cycle.
//
// A cycle loads the stored products, consults ShouldRefresh against the last
// successful update, fetches fresh prices for every tracked id in one batch,
// and commits the reconciled list together with the new lastUpdate in a
// single Store.Update. The commit re-checks the throttle against the stored
// timestamp and merges into the products as they are at commit time, so edits
// made while the fetch was in flight are kept and a cycle that lost a race with
// another process writes nothing.
//
// Any failure before the commit leaves the store and the drop indicator as they
// were. Failures are reported in Outcome.Err, never returned or panicked, and
// no retry happens until the next wake.
package refresh
