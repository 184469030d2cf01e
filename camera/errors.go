package camera

import "fmt"

// CommandError is returned when the camera rejects a command
type CommandError struct {
	Command string
	Result  int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("camera command %s failed: %s (%d)", e.Command, foscamResultText(e.Result), e.Result)
}

// APIError represents a non-200 HTTP answer from the camera
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// NetworkError represents a network-related error
type NetworkError struct {
	Operation string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
