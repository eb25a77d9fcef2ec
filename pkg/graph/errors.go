package graph

import "errors"

// Structural errors returned by Graph's editing API. Render-time
// faults never surface this way; they are contained per node and
// observed only through Node.IsSuspended.
var (
	ErrInvalidNodeID         = errors.New("graph: invalid node id")
	ErrInvalidPort           = errors.New("graph: invalid port index or direction")
	ErrTypeMismatch          = errors.New("graph: incompatible port types")
	ErrDuplicateConnection   = errors.New("graph: connection already exists")
	ErrSelfConnection        = errors.New("graph: a node cannot connect to itself")
	ErrNotPrepared           = errors.New("graph: render requested before prepare")
	ErrPrepareFailed         = errors.New("graph: a child node failed to prepare")
	ErrReservedNodeID        = errors.New("graph: node id is reserved for an IO node")
)
