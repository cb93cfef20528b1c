package framework

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCatalog     = errors.New("catalog has too few services")
	ErrInvalidMetric    = errors.New("invalid service metric")
	ErrUnknownService   = errors.New("unknown service")
	ErrDuplicateService = errors.New("duplicate service id")
	ErrInvalidServiceID = errors.New("invalid service id")
)

// EmptyCatalogError is returned when the catalog holds fewer services than
// need to be selected.
type EmptyCatalogError struct {
	Available int
	Required  int
}

func (e *EmptyCatalogError) Error() string {
	return fmt.Sprintf("catalog has %d services, need at least %d", e.Available, e.Required)
}

func (e *EmptyCatalogError) Is(target error) bool { return target == ErrEmptyCatalog }

// InvalidMetricError reports a catalog entry whose price, availability or
// latency is out of range.
type InvalidMetricError struct {
	ID     string
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidMetricError) Error() string {
	return fmt.Sprintf("service %q: invalid %s %v: %s", e.ID, e.Field, e.Value, e.Reason)
}

func (e *InvalidMetricError) Is(target error) bool { return target == ErrInvalidMetric }

// UnknownServiceError is returned when an id is not part of the catalog snapshot.
type UnknownServiceError struct {
	ID string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("service %q not found in catalog", e.ID)
}

func (e *UnknownServiceError) Is(target error) bool { return target == ErrUnknownService }

// DuplicateServiceError is returned when the catalog repeats an id.
type DuplicateServiceError struct {
	ID string
}

func (e *DuplicateServiceError) Error() string {
	return fmt.Sprintf("service %q appears more than once in catalog", e.ID)
}

func (e *DuplicateServiceError) Is(target error) bool { return target == ErrDuplicateService }

// InvalidServiceIDError is returned for an empty id or one holding control
// characters.
type InvalidServiceIDError struct {
	ID string
}

func (e *InvalidServiceIDError) Error() string {
	return fmt.Sprintf("service id %q must be non-empty and free of control characters", e.ID)
}

func (e *InvalidServiceIDError) Is(target error) bool { return target == ErrInvalidServiceID }

// OptimizationError wraps a failure that aborted a run.
type OptimizationError struct {
	Generation int
	Err        error
}

func (e *OptimizationError) Error() string {
	if e.Generation == 0 {
		return fmt.Sprintf("optimization failed during initialization: %v", e.Err)
	}
	return fmt.Sprintf("optimization failed at generation %d: %v", e.Generation, e.Err)
}

func (e *OptimizationError) Unwrap() error { return e.Err }
