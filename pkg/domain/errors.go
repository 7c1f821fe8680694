package domain

import "errors"

// ErrNodeNotFound is returned when an operation names a node that does not exist.
var ErrNodeNotFound = errors.New("node not found")

// ErrElementNotFound is returned when an operation names an element that does not exist.
var ErrElementNotFound = errors.New("element not found")

// ErrEdgeNotFound is returned when an operation names an edge that does not exist.
var ErrEdgeNotFound = errors.New("edge not found")

// ErrIndexOutOfRange is returned for element or option positions outside the sequence.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrNotChoice is returned when an option operation targets an element without options.
var ErrNotChoice = errors.New("element has no options")

// ErrSettingsMismatch is returned when a settings block does not belong to the element type.
var ErrSettingsMismatch = errors.New("settings do not match element type")

// ErrNotComposite is returned when an element operation targets a start or result node.
var ErrNotComposite = errors.New("node does not hold elements")

// ErrUnknownElementType is returned when no default constructor exists for a type tag.
var ErrUnknownElementType = errors.New("unknown element type")

// ErrInvalidKind is returned when a node kind is not start, composite or result.
var ErrInvalidKind = errors.New("invalid node kind")

// ErrQuizNotFound is returned when a quiz id cannot be found in the store.
var ErrQuizNotFound = errors.New("quiz not found")

// ErrSocketNotFound is returned when connecting from a socket the source node does not expose.
var ErrSocketNotFound = errors.New("socket not found")

// ErrInvalidQuizID is returned by stores for empty ids or ids that are not safe as keys.
var ErrInvalidQuizID = errors.New("invalid quiz id")
