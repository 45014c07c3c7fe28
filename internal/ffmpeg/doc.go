// Package ffmpeg extracts single still frames from a video with the ffmpeg
// command-line tool.
//
// Each frame is one short-lived ffmpeg process described by a [Job].
// [Extractor.ExtractAll] runs a batch of jobs on a bounded worker pool and
// reports one [Outcome] per grid cell, keyed by cell index. A failed frame
// never aborts its siblings: the failure is recorded on that cell's outcome
// and composition proceeds with whatever frames were produced.
//
// Files:
//   - builder.go: argument vectors ([SnapshotArgs], [BuildArgs])
//   - executor.go: process execution with captured stderr
//   - errors.go: stderr classification and [ExtractionFailure]
//   - retry.go: fallback attempts for frames that came back empty
//   - pool.go: the worker pool
package ffmpeg
