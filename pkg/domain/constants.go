package domain

// ID prefixes used by generators.
const (
	PrefixNode    = "node"
	PrefixElement = "el"
	PrefixOption  = "opt"
	PrefixEdge    = "edge"
	PrefixRange   = "range"
)

// Default labels for new start and result nodes.
const (
	DefaultStartLabel  = "Start"
	DefaultResultLabel = "Result"
)
