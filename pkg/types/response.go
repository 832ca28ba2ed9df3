package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body every failed request renders. RequestID echoes the
// X-Request-Id header so terminal operators can quote it to support.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// HealthReport is the readiness payload.
type HealthReport struct {
	Status   string            `json:"status"`
	DemoMode bool              `json:"demo_mode"`
	Checks   map[string]string `json:"checks"`
}
