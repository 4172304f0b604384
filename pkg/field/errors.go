package field

// ErrorType classifies a validation failure. The set is closed: validators
// report one of these kinds rather than inventing ad-hoc categories, so view
// layers can style and group messages predictably.
type ErrorType string

const (
	// ErrorRequired marks a missing value on a required field.
	ErrorRequired ErrorType = "required"
	// ErrorInvalid marks a failed type or custom validator.
	ErrorInvalid ErrorType = "invalid"
	// ErrorMin marks a value below a configured lower bound.
	ErrorMin ErrorType = "min"
	// ErrorMax marks a value above a configured upper bound.
	ErrorMax ErrorType = "max"
	// ErrorMinMax marks a value outside a configured min/max window.
	ErrorMinMax ErrorType = "minMax"
	// ErrorServer marks an externally supplied, post-submission error. Server
	// errors are informational: they never block future edits or make a
	// validation pass report failure.
	ErrorServer ErrorType = "server"
)

// Error is a single structured validation message attached to a field.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
}

// Errors is the ordered list of validation messages on a field.
type Errors []Error

// NewError builds a structured error entry.
func NewError(kind ErrorType, message string) Error {
	return Error{Type: kind, Message: message}
}

// Has reports whether the list contains an error of the given kind.
func (e Errors) Has(kind ErrorType) bool {
	for _, entry := range e {
		if entry.Type == kind {
			return true
		}
	}
	return false
}

// Blocking reports whether the list contains any non-server error. Only
// blocking errors count toward form invalidity.
func (e Errors) Blocking() bool {
	for _, entry := range e {
		if entry.Type != ErrorServer {
			return true
		}
	}
	return false
}

// Messages flattens the list into plain strings, preserving order.
func (e Errors) Messages() []string {
	if len(e) == 0 {
		return nil
	}
	out := make([]string, 0, len(e))
	for _, entry := range e {
		out = append(out, entry.Message)
	}
	return out
}

// WithoutServer returns a copy of the list with server errors removed. A nil
// result means no errors remain.
func (e Errors) WithoutServer() Errors {
	if len(e) == 0 {
		return nil
	}
	var out Errors
	for _, entry := range e {
		if entry.Type == ErrorServer {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func (e Errors) clone() Errors {
	if len(e) == 0 {
		return nil
	}
	return append(Errors(nil), e...)
}

var defaultMessages = map[ErrorType]string{
	ErrorRequired: "this value is required",
	ErrorInvalid:  "this value is invalid",
	ErrorMin:      "this value is too small",
	ErrorMax:      "this value is too large",
	ErrorMinMax:   "this value is out of range",
}

// DefaultMessage returns the stock message for an error kind, honoring any
// per-field override configured in ErrorMessages.
func DefaultMessage(cfg Config, kind ErrorType) string {
	if msg, ok := cfg.ErrorMessages[kind]; ok && msg != "" {
		return msg
	}
	return defaultMessages[kind]
}
