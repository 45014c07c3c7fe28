// Package pipeline turns video files into contact sheets.
//
// [Generator] owns one video end to end: validate the source, decide skip
// or overwrite, probe, schedule, extract frames on a worker pool, compose,
// save, and remove its temporary frames. [Run] drives a Generator over a
// batch of inputs one video at a time and reports aggregate [RunStats].
// [Survey] probes a batch without generating anything.
//
// Files:
//   - source.go: VideoSource and the container allow-list
//   - generator.go: the per-video state machine
//   - runner.go: batch loop and summary
//   - discover.go: input expansion
//   - survey.go: probe-only report
//   - stats.go: RunStats
package pipeline
