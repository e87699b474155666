// Package caplock provides a process-wide provenance and revocation
// runtime. It tracks the validity of raw-memory allocations crossing a
// trust boundary, issues unforgeable capability handles (address plus a
// process-unique tag) to trusted code, and accepts revocations from
// untrusted code holding nothing but an address. Any later trusted use of
// a revoked or stale capability fails loudly.
//
// The runtime is assembled from pluggable service layers:
//
//   - registry - the authoritative address -> allocation table
//   - gate     - the one boundary operation untrusted code may invoke
//   - event    - provenance events on every lifecycle transition
//   - journal  - append-only audit trail over viant/afs
//   - policy   - how detected violations surface (report / fatal / deny)
//
// End-users typically interact with the runtime via the Service façade
// exposed by the root package:
//
//	srv, _ := caplock.New()
//	handle, _ := srv.Register(ctx, 0x1000, 8)
//	srv.Gate().Revoke(ctx, 0x1000) // the untrusted side, address only
//	err := srv.Check(ctx, handle)  // fails: capability was revoked
//
// For more details see the individual sub-packages.
package caplock
