package core

import (
	"errors"
)

var (
	// ErrMalformedHierarchy means a traversal reached the same entity twice.
	// Asset hierarchies are acyclic, so this is an upstream contract violation.
	ErrMalformedHierarchy = errors.New("malformed hierarchy: entity visited twice")
	ErrHierarchyCycle     = errors.New("attaching child would create a cycle")
	ErrEntityNotFound     = errors.New("entity not found")
	ErrNoLoader           = errors.New("no loader registered for asset")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrQueueFull          = errors.New("queue is full")
	ErrQueueEmpty         = errors.New("queue is empty")
)
