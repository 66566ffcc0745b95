package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInput marks caller-supplied data that violates the engine contract.
	ErrInput = errors.New("invalid input")

	// ErrModelState marks an engine invoked before its model is usable.
	ErrModelState = errors.New("model state")

	// ErrModelNotLoaded is returned when no classifier handle is available.
	ErrModelNotLoaded = fmt.Errorf("%w: model not loaded", ErrModelState)

	// ErrNotFound is returned by repositories and caches on a miss.
	ErrNotFound = errors.New("not found")
)

// UnknownCategoryError is returned when a categorical field holds a value
// absent from the schema's enumeration.
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for field %s", e.Value, e.Field)
}

// Is reports ErrInput membership.
func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrInput
}

// UnknownParameterError is returned when a scenario overrides a field that
// does not exist.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown parameter %q", e.Name)
}

// Is reports ErrInput membership.
func (e *UnknownParameterError) Is(target error) bool {
	return target == ErrInput
}

// InvalidParameterValueError is returned when an override value cannot be
// applied to its field.
type InvalidParameterValueError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidParameterValueError) Error() string {
	return fmt.Sprintf("invalid value %v for parameter %q: %s", e.Value, e.Name, e.Reason)
}

// Is reports ErrInput membership.
func (e *InvalidParameterValueError) Is(target error) bool {
	return target == ErrInput
}

// FeatureShapeMismatchError is returned when a feature vector does not have
// the width the model was trained on.
type FeatureShapeMismatchError struct {
	Expected int
	Got      int
}

func (e *FeatureShapeMismatchError) Error() string {
	return fmt.Sprintf("feature shape mismatch: model expects %d features, got %d", e.Expected, e.Got)
}

// Is reports ErrInput membership.
func (e *FeatureShapeMismatchError) Is(target error) bool {
	return target == ErrInput
}
