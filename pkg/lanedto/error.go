package lanedto

// DomainError is the API-facing error shape.
type DomainError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	InvalidPins []int    `json:"invalid_pins,omitempty"`
	Reasons     []string `json:"reasons,omitempty"`
	Retryable   bool     `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "lanekeeper error"
}
