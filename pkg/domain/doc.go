/*
Package domain contains the graph data model of a quiz.

It defines the entities authored in a session, kept pure and free of I/O so
every other package (mutations, diagnostics, generation, codecs) can depend on it.

# Key Entities

  - Node: a vertex of the flow (start, composite or result).
  - Element: a typed unit of content owned by a composite node. Choice
    elements hold an ordered list of scored Options.
  - Edge: a wire from an outbound socket to a node's single inbound socket.
  - ScoreRange: an interval of points mapped to result content.
  - QuizGraph: the aggregate, with read accessors that report absence as
    a boolean rather than an error.
*/
package domain
