package model

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	// ErrFatalLoad means a reference table or model artifact could not be loaded
	ErrFatalLoad = errors.New("fatal load error")

	// ErrInvalidInput means the caller broke the validate contract
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelInference means the classifier or embedding model failed
	ErrModelInference = errors.New("model inference error")
)

// LoadError reports a required resource that failed to load at startup
type LoadError struct {
	Resource string // e.g. "press releases", "classifier"
	Path     string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("load %s (%s): %v", e.Resource, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrFatalLoad }

// InputError reports a malformed validate argument
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// InferenceError reports a failure inside the classifier or embedding model
type InferenceError struct {
	Stage string // "classifier" or "embedding"
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s inference: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

func (e *InferenceError) Is(target error) bool { return target == ErrModelInference }
