// Package corpus streams bounded-length text segments out of one or more
// glob-selected text files, keeping memory use independent of corpus size.
//
// A Reader picks a source file by weight for each segment and keeps a byte
// cursor per file that wraps to the start at end of file; each read goes
// through a freshly allocated 64 KiB buffer. Each
// Reader is meant to be owned by a single worker goroutine for the
// lifetime of its tasks; consumption order across workers is never
// coordinated, because the randomness that matters for reproducibility
// comes from the per-image RNG, not from corpus consumption order.
package corpus
