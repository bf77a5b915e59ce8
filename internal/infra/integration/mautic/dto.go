package mautic

import "fmt"

const DefaultContentType = "application/x-www-form-urlencoded"

type ForwardResult struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// StatusError é devolvido quando o Mautic responde fora da faixa 2xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Mautic retornou status %d", e.StatusCode)
}
