package core

import (
	"errors"
)

// Error taxonomy shared by the pack container, the asset codecs and the asset manager.
// Failures wrap one of these with context; match them with errors.Is.
var (
	// ErrFormat is returned when a header or table is malformed or a buffer is too short for a mandatory field.
	ErrFormat = errors.New("malformed data")
	// ErrUnsupportedFeature is returned for data the engine knows about but cannot decode (compressed entries, native scenes).
	ErrUnsupportedFeature = errors.New("unsupported feature")
	// ErrNotFound is returned when a path is absent from the archive index.
	ErrNotFound = errors.New("not found")
	// ErrNotLoaded is returned when an operation needs an archive and none is attached.
	ErrNotLoaded = errors.New("no archive loaded")
	// ErrValidation is returned when an asset violates a structural invariant.
	ErrValidation = errors.New("validation failed")
)
