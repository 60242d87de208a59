package types

// SuccessEnvelope wraps every successful API payload under a "data" key
// so clients can tell results from error bodies by shape alone.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a typed application error. Details is
// populated only for codes that allow it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
