// Package predict chooses how each frame is coded.
//
// Three layers build on each other:
//
//   - BestIntra picks the cheapest intra filter for one plane by estimating
//     the compressed size of every candidate.
//   - Delta and DeltaSearch difference a plane against a reference plane,
//     optionally motion compensated, and code the residual with BestIntra.
//   - Decide costs a whole frame as NONE, PREV_FULL and PREV and returns the
//     cheapest reference mode with its per-plane results.
//
// Candidate evaluations inside BestIntra are independent and run on a bounded
// worker pool. Everything else runs on the caller's goroutine: a decision
// depends on the reconstruction of every earlier frame.
package predict
