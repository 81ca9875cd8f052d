package morph

import "errors"

// PreconditionMessage is shown to the user when a transform is requested
// without code or goals.
const PreconditionMessage = "Please provide code and select at least one transformation."

var (
	ErrPrecondition    = errors.New("transform needs code and at least one goal")
	ErrBusy            = errors.New("a transformation is already running for this session")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrInvalidLanguage = errors.New("unknown language")
	ErrInvalidGoal     = errors.New("unknown transformation goal")
	ErrInvalidTarget   = errors.New("run target must be input or output")
)
