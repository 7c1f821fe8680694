package domain

import (
	"context"
	"time"
)

// ChangeType defines the category of a change notification.
type ChangeType string

const (
	ChangeNodeAdded       ChangeType = "node_added"
	ChangeNodeUpdated     ChangeType = "node_updated"
	ChangeNodeRemoved     ChangeType = "node_removed"
	ChangeEdgeAdded       ChangeType = "edge_added"
	ChangeEdgeRemoved     ChangeType = "edge_removed"
	ChangeScoreRanges     ChangeType = "score_ranges_updated"
	ChangeGraphReplaced   ChangeType = "graph_replaced"
	ChangeSocketRecompute ChangeType = "socket_recompute"
)

// SignalPhase tells whether a recompute signal is the immediate one or the
// deferred follow-up sent after the host's layout pass settles.
type SignalPhase string

const (
	PhaseImmediate SignalPhase = "immediate"
	PhaseDeferred  SignalPhase = "deferred"
)

// ChangeEvent is pushed to the rendering collaborator after each mutation.
type ChangeEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Type      ChangeType `json:"type"`
	QuizID    string     `json:"quiz_id,omitempty"`
	NodeID    string     `json:"node_id,omitempty"`
	ElementID string     `json:"element_id,omitempty"`
	EdgeID    string     `json:"edge_id,omitempty"`

	// Set on socket recompute signals only.
	Phase       SignalPhase `json:"phase,omitempty"`
	Fingerprint string      `json:"fingerprint,omitempty"`
}

// MutationEvent describes one applied (or rejected) mutation.
type MutationEvent struct {
	Timestamp time.Time `json:"timestamp"`
	QuizID    string    `json:"quiz_id,omitempty"`
	Op        string    `json:"op"`
	Err       error     `json:"-"`
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnMutation func(context.Context, *MutationEvent)
	OnSignal   func(context.Context, *ChangeEvent)
}
