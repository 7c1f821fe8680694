/*
Package quizgraph is an authoring and validation engine for branching quizzes.

A quiz is a directed graph of start, composite and result nodes. Composite
nodes carry an ordered list of elements (text, media, choices, ratings,
lead capture forms), and every option of a choice element exposes its own
outbound socket, so each answer can lead somewhere different.

# Layout

  - pkg/domain holds the graph model, its sentinel errors and change events.
  - pkg/mutate implements the pure graph mutations; pkg/editor owns one live
    graph per authoring session and applies them serially.
  - pkg/socket tracks which outbound sockets a node exposes and signals the
    renderer when they change.
  - pkg/diagnostics runs the structural validator and computes the health score.
  - pkg/generate builds a linear quiz from question descriptors.
  - pkg/codec converts between graphs and the persisted record shape.
  - pkg/session, pkg/adapters and pkg/persistence connect editors to stores,
    locks, notifiers and the HTTP/MCP surfaces.

# Usage

	ed := editor.New("quiz-1", domain.QuizGraph{})
	start, _ := ed.AddNode(ctx, domain.KindStart, domain.Position{})
	q, _ := ed.AddNode(ctx, domain.KindComposite, domain.Position{X: 300})
	_, _ = ed.AddElement(ctx, q.Created, domain.ElementChoiceSingle)
	_, _ = ed.Connect(ctx, start.Created, "", q.Created)

	report := ed.Validate()
	fmt.Println(report.HealthScore)
*/
package quizgraph
