package entity

import (
	"errors"
	"fmt"
)

// ValidationError: a operação viola um contrato e é rejeitada antes de qualquer mutação.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError: o lead/imóvel/template referenciado não existe mais no remoto.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s não encontrado", e.Resource, e.ID)
}

// RemoteError embrulha qualquer falha vinda da persistência ou do canal de mensagens.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewRemoteError não embrulha de novo erros que já são de domínio.
func NewRemoteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) || IsValidationError(err) || IsRemoteError(err) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsRemoteError(err error) bool {
	var target *RemoteError
	return errors.As(err, &target)
}
