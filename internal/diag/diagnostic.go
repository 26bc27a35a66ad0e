package diag

// Code identifies a diagnostic class.
type Code string

// Codes emitted by the middle-end. Front-end semantic errors arrive with
// their own codes through the same Reporter contract.
const (
	CodeLowering   Code = "MID0001"
	CodeNoConverge Code = "MID0002"
)

func (c Code) String() string { return string(c) }

// Diagnostic is one reported message. The middle-end has no source spans
// of its own; Where carries whatever location context the producer had
// (a function name, a pass name).
type Diagnostic struct {
	Severity Severity
	Code     Code
	Where    string
	Message  string
}
