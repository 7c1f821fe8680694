// Package generate turns an ordered list of question descriptors, as produced
// by an AI authoring assistant, into a fully wired linear quiz graph.
//
// Generated quizzes are linear and reconverging: every question leads to the
// next one, and a choice question leaves through the socket of its last
// option. The graph model itself supports per-option branching; this is only
// the generator's policy.
package generate
