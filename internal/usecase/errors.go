package usecase

import "errors"

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "RECORD_NOT_FOUND"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeDatabase     = "DATABASE_ERROR"
	CodeSubscription = "SUBSCRIPTION_ERROR"
)

// DomainError é erro de entrada do usuário: nunca é retentado.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError é falha de banco ou de integração. Message é seguro para o cliente, Err só vai pro log.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}
