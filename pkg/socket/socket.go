// Package socket derives the connection points of quiz nodes and tells the
// host renderer when their geometry must be recomputed.
//
// Option sockets are positional: the socket of option i of element e is
// identified by (e.ID, i), encoded as "<elementID>-option-<i>". Removing an
// option shifts the meaning of every later index; edges are not repaired.
package socket

import (
	"strconv"
	"strings"

	"github.com/aretw0/quizgraph/pkg/domain"
)

// Default is the id of a node's single unconditional outbound socket.
const Default = ""

const optionMarker = "-option-"

// Option returns the socket id of the option at index of the element.
func Option(elementID string, index int) string {
	return elementID + optionMarker + strconv.Itoa(index)
}

// Parse splits an option socket id into its element id and option index.
func Parse(socketID string) (elementID string, index int, ok bool) {
	i := strings.LastIndex(socketID, optionMarker)
	if i <= 0 {
		return "", 0, false
	}
	index, err := strconv.Atoi(socketID[i+len(optionMarker):])
	if err != nil || index < 0 {
		return "", 0, false
	}
	return socketID[:i], index, true
}

// Outbound lists the outbound sockets of a node in emission order.
// Start nodes and composite nodes without choice elements expose the default
// socket; composite nodes with choices expose one socket per option; result
// nodes expose none.
func Outbound(n domain.Node) []string {
	switch n.Kind {
	case domain.KindStart:
		return []string{Default}
	case domain.KindResult:
		return nil
	}
	if !n.HasChoices() {
		return []string{Default}
	}
	var out []string
	for _, el := range n.Elements {
		if !el.HasOptions() {
			continue
		}
		for i := range el.Options {
			out = append(out, Option(el.ID, i))
		}
	}
	return out
}

// Exists reports whether the node currently exposes the outbound socket.
func Exists(n domain.Node, socketID string) bool {
	if socketID == Default {
		return n.Kind == domain.KindStart || (n.Kind == domain.KindComposite && !n.HasChoices())
	}
	elementID, index, ok := Parse(socketID)
	if !ok {
		return false
	}
	el, ok := n.Element(elementID)
	if !ok || !el.HasOptions() {
		return false
	}
	return index < len(el.Options)
}

// Dangling returns edges whose source node exists but no longer exposes the
// edge's source socket. Edges with a missing source node are reported by
// domain.QuizGraph.MissingEndpoints instead.
func Dangling(g domain.QuizGraph) []domain.Edge {
	var out []domain.Edge
	for _, e := range g.Edges {
		src, ok := g.Node(e.Source)
		if !ok {
			continue
		}
		if !Exists(src, e.SourceSocket) {
			out = append(out, e)
		}
	}
	return out
}

// Fingerprint summarises, for every element of the node, its id, type and
// option count. Two equal fingerprints mean the socket layout is unchanged.
func Fingerprint(n domain.Node) string {
	var sb strings.Builder
	sb.WriteString(string(n.Kind))
	for _, el := range n.Elements {
		sb.WriteByte('|')
		sb.WriteString(el.ID)
		sb.WriteByte(':')
		sb.WriteString(string(el.Type))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(len(el.Options)))
	}
	return sb.String()
}
