/*
Package dsl provides a fluent builder for constructing quiz graphs in Go.

It is used by the generation pipeline and by tests, and lets callers describe
a flow without hand-assembling nodes, element ids and socket ids.

Example usage:

	b := dsl.New()

	b.Start("start").Go("q1")

	b.Composite("q1").
		Choice("How do you commute?", dsl.Opt("Bike", 10), dsl.Opt("Car", 0)).
		OnOption(0, "green").
		OnOption(1, "grey")

	b.Result("green").Label("Green commuter")
	b.Result("grey").Label("Room to improve")

	graph, err := b.Build()
*/
package dsl
