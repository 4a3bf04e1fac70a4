package errors

import (
	"errors"
	"fmt"
)

// Error codes shared by the parser, renderer and the RPC layer.
const (
	CodeNoMatch        = "no_match"
	CodeFormat         = "format_error"
	CodeAssetMissing   = "asset_missing"
	CodeRenderFailure  = "render_failure"
	CodeStoreFailure   = "store_failure"
	CodeNotFound       = "not_found"
	CodeAlreadyExists  = "already_exists"
	CodeInvalidRequest = "invalid_request"
)

// Error carries a machine-readable code next to the human message.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code so coded sentinels compare by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code != "" && t.Code == e.Code && t.Err == nil
}

func New(message string) error {
	return &Error{
		Message: message,
	}
}

func NewWithCode(code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    GetCode(err),
		Message: message,
		Err:     err,
	}
}

func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetCode returns the outermost error code in the chain, or "".
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
