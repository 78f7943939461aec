package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// an empty draft slot is a fact, not a fault. For validation errors use
// pkg/domain-errors.
var (
	// ErrNotFound: the entity (draft, remembered company id) does not exist
	// in the store.
	ErrNotFound = errors.New("not found")
)
