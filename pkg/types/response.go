package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// AckEnvelope is the body returned to payment gateway callbacks.
type AckEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
