package graph

import "errors"

// Sentinel errors for graph construction
var (
	ErrInvalidNode     = errors.New("node has no ID")
	ErrInvalidEdge     = errors.New("edge is missing an endpoint")
	ErrUnknownEndpoint = errors.New("edge endpoint is not in the graph")
	ErrEmptyGraph      = errors.New("graph has no nodes")
)
