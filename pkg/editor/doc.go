/*
Package editor owns one live quiz graph during an authoring session.

An Editor applies mutation operations serially and atomically, tracks whether
the graph differs from what was last persisted, forwards change events to the
rendering collaborator and keeps the socket manager informed so the host
recomputes socket geometry when a node's element layout changes.

Multiple editors can coexist (for example A/B variants of one quiz); nothing
in this package is global.
*/
package editor
