// Package boundedstream implements streaming stages that process input of any
// size with memory bounded by their configuration.
//
// The stages live in sub-packages:
//
// - chunker: groups items into fixed-size, timestamped chunks
// - lines: splits byte fragments into lines
// - filereader: reads a file chunk by chunk under a memory budget
// - jsonextract: extracts complete JSON objects and arrays from fragments
//
// Supporting packages:
//
// - stream: write streams, the Feeder interface and the Pump loop
// - streamerr: the error taxonomy shared by all stages
// - config: YAML configuration for every stage
// - metrics: Prometheus counters attached around stages
//
// Stages are synchronous.  Each call either emits the units it completes into
// a stream.WriteStream or fails with a terminal *streamerr.Error, after which
// the stage must be discarded.  Connecting a stage to an unbuffered channel
// gives backpressure: a slow consumer suspends the stage, which in turn
// suspends whatever feeds it.
//
//	input -> Pump -> Feeder (lines, jsonextract) -> WriteStream -> consumer
//
// The bstream command exposes every stage on files and standard input:
//
//	go install github.com/arnodel/boundedstream/cmd/bstream
package boundedstream
