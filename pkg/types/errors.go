package types

import "fmt"

// InvalidElementError reports a reference to an element id that does not
// exist in the network.
type InvalidElementError struct {
	Quantity  Quantity
	ElementID string
}

func (e *InvalidElementError) Error() string {
	return fmt.Sprintf("element %q does not exist in the network (quantity %s)", e.ElementID, e.Quantity)
}

// NotSensedError reports an index lookup for an element that is not part of
// the current sensor selection.
type NotSensedError struct {
	Quantity  Quantity
	ElementID string
}

func (e *NotSensedError) Error() string {
	return fmt.Sprintf("element %q is not selected as a %s sensor", e.ElementID, e.Quantity)
}

// InvalidTimeRangeError reports malformed start/end/peak time ordering.
type InvalidTimeRangeError struct {
	Start, End, Peak uint64
	Reason           string
}

func (e *InvalidTimeRangeError) Error() string {
	return fmt.Sprintf("invalid time range [%d, %d) peak=%d: %s", e.Start, e.End, e.Peak, e.Reason)
}

// ShapeMismatchError reports an array or value count that does not match
// the expected shape.
type ShapeMismatchError struct {
	Want, Got int
	What      string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch for %s: want %d, got %d", e.What, e.Want, e.Got)
}

// ConflictingUncertaintyError reports global and local uncertainty both set
// for the same model parameter.
type ConflictingUncertaintyError struct {
	Param ParamKind
}

func (e *ConflictingUncertaintyError) Error() string {
	return fmt.Sprintf("both global and local uncertainty set for %s", e.Param)
}

// FrozenConfigError reports a mutation attempted on a pipeline whose sensor
// configuration was frozen at construction.
type FrozenConfigError struct {
	Op string
}

func (e *FrozenConfigError) Error() string {
	return fmt.Sprintf("%s: sensor configuration is frozen", e.Op)
}

// EngineFailureError surfaces a fatal failure reported by the external
// solver. It is never retried or masked by this layer.
type EngineFailureError struct {
	Step uint64
	Err  error
}

func (e *EngineFailureError) Error() string {
	return fmt.Sprintf("engine failure at t=%d: %v", e.Step, e.Err)
}

func (e *EngineFailureError) Unwrap() error { return e.Err }
