package automatik

import "fmt"

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook de análise retornou status %d: %s", e.StatusCode, e.Body)
}
