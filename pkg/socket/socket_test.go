package socket

import (
	"testing"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func choiceNode(t *testing.T, id string) (domain.Node, domain.Element) {
	t.Helper()
	el, err := domain.NewElement(domain.NewSequence(), domain.ElementChoiceSingle)
	require.NoError(t, err)
	return domain.Node{ID: id, Kind: domain.KindComposite, Elements: []domain.Element{el}}, el
}

func TestOptionAndParse(t *testing.T) {
	id := Option("el_1", 2)
	assert.Equal(t, "el_1-option-2", id)

	elementID, index, ok := Parse(id)
	require.True(t, ok)
	assert.Equal(t, "el_1", elementID)
	assert.Equal(t, 2, index)

	// Element ids may themselves contain the marker; the last one wins.
	elementID, index, ok = Parse(Option("a-option-b", 7))
	require.True(t, ok)
	assert.Equal(t, "a-option-b", elementID)
	assert.Equal(t, 7, index)

	for _, bad := range []string{"", "el_1", "-option-1", "el_1-option-x", "el_1-option--1"} {
		_, _, ok := Parse(bad)
		assert.False(t, ok, bad)
	}
}

func TestOutbound(t *testing.T) {
	node, el := choiceNode(t, "q1")
	text, _ := domain.NewElement(domain.NewSequence(), domain.ElementText)
	node.Elements = append([]domain.Element{text}, node.Elements...)

	assert.Equal(t, []string{Option(el.ID, 0), Option(el.ID, 1), Option(el.ID, 2)}, Outbound(node))
	assert.Equal(t, []string{Default}, Outbound(domain.Node{Kind: domain.KindStart}))
	assert.Equal(t, []string{Default}, Outbound(domain.Node{Kind: domain.KindComposite, Elements: []domain.Element{text}}))
	assert.Empty(t, Outbound(domain.Node{Kind: domain.KindResult}))
}

func TestExists(t *testing.T) {
	node, el := choiceNode(t, "q1")

	assert.True(t, Exists(node, Option(el.ID, 2)))
	assert.False(t, Exists(node, Option(el.ID, 3)))
	assert.False(t, Exists(node, Option("other", 0)))
	assert.False(t, Exists(node, Default), "choice nodes have no default socket")
	assert.True(t, Exists(domain.Node{Kind: domain.KindStart}, Default))
	assert.False(t, Exists(domain.Node{Kind: domain.KindResult}, Default))
}

func TestDangling_AfterOptionRemoval(t *testing.T) {
	node, el := choiceNode(t, "q1")
	g := domain.QuizGraph{
		Nodes: []domain.Node{node, {ID: "end", Kind: domain.KindResult}},
		Edges: []domain.Edge{{ID: "e1", Source: "q1", SourceSocket: Option(el.ID, 2), Target: "end"}},
	}
	assert.Empty(t, Dangling(g))

	g.Nodes[0].Elements[0].Options = g.Nodes[0].Elements[0].Options[1:]
	dangling := Dangling(g)
	require.Len(t, dangling, 1)
	assert.Equal(t, "e1", dangling[0].ID)
}

func TestFingerprint(t *testing.T) {
	node, el := choiceNode(t, "q1")
	base := Fingerprint(node)

	reordered := node.Clone()
	text, _ := domain.NewElement(domain.NewSequence(), domain.ElementText)
	reordered.Elements = append(reordered.Elements, text)
	withText := Fingerprint(reordered)
	assert.NotEqual(t, base, withText)

	reordered.Elements[0], reordered.Elements[1] = reordered.Elements[1], reordered.Elements[0]
	assert.NotEqual(t, withText, Fingerprint(reordered), "element order is part of the fingerprint")

	relabeled := node.Clone()
	relabeled.Elements[0].Options[0].Label = "renamed"
	relabeled.Elements[0].Options[0].Score = -4
	assert.Equal(t, base, Fingerprint(relabeled), "labels and scores do not move sockets")

	fewer := node.Clone()
	fewer.Elements[0].Options = fewer.Elements[0].Options[:2]
	assert.NotEqual(t, base, Fingerprint(fewer))
	assert.Contains(t, base, el.ID+":choice-single:3")
}
