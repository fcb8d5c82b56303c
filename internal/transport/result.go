package transport

// ErrorKind classifies a failed Result.
type ErrorKind int

const (
	// KindNone is the kind of a successful Result.
	KindNone ErrorKind = iota
	// KindConnection means the collector could not be reached.
	KindConnection
	// KindTimeout means the call exceeded its deadline.
	KindTimeout
	// KindProtocol means a non-200 status or an unparseable body.
	KindProtocol
	// KindAuthRequired means the operation needs a login first.
	KindAuthRequired
	// KindUnexpected covers everything else.
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindProtocol:
		return "protocol"
	case KindAuthRequired:
		return "auth_required"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Result is the outcome of every transport and gateway operation.
// Error holds the user-facing message when Success is false.
type Result struct {
	Success    bool
	Data       interface{}
	Error      string
	StatusCode int
	Kind       ErrorKind
}

// Failure builds an unsuccessful Result.
func Failure(kind ErrorKind, msg string, statusCode int) Result {
	return Result{
		Success:    false,
		Error:      msg,
		StatusCode: statusCode,
		Kind:       kind,
	}
}

// Object returns Data as a JSON object, or nil when Data is not one.
func (r Result) Object() map[string]interface{} {
	obj, _ := r.Data.(map[string]interface{})
	return obj
}
