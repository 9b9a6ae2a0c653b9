package restream

import "fmt"

// invalidTokenName is the provider's error name for an expired or revoked
// access token; it is the only error that triggers a refresh-and-retry.
const invalidTokenName = "invalid_token"

// ProviderError is a structured error payload from the Restream API.
// Anything else that goes wrong on a call (DNS, timeouts, malformed JSON)
// surfaces as a plain wrapped error and is never retried.
type ProviderError struct {
	Status  int
	Name    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("restream api error %s (status %d): %s", e.Name, e.Status, e.Message)
	}
	return fmt.Sprintf("restream api error %s (status %d)", e.Name, e.Status)
}

// InvalidToken reports whether the provider rejected the access token.
func (e *ProviderError) InvalidToken() bool {
	return e.Name == invalidTokenName
}

// errorEnvelope is the provider's error body: {"error": {"name", "message"}}.
type errorEnvelope struct {
	Error struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}
