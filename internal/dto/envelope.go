package dto

// Envelope wraps every JSON response body.
type Envelope struct {
	IsOK  bool   `json:"isOk"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data any) Envelope { return Envelope{IsOK: true, Data: data} }

// Fail wraps an error message.
func Fail(msg string) Envelope { return Envelope{IsOK: false, Error: msg} }

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	OK        bool    `json:"ok"`
	Uptime    float64 `json:"uptime"`
	Timestamp int64   `json:"timestamp"`
}
