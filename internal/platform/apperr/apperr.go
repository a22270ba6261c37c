package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// 各featureパッケージ共通のエラーモデル。
// 貸出系は users/books/loans をまたいでエラーが伝播するため1箇所に置く。
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInvalidScore    Code = "INVALID_SCORE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeNotAvailable    Code = "NOT_AVAILABLE" // 貸出中の本を借りようとした
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrInvalid(msg string) *APIError      { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrInvalidScore(msg string) *APIError { return &APIError{Code: CodeInvalidScore, Message: msg} }
func ErrNotFound(msg string) *APIError     { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrNotAvailable(msg string) *APIError { return &APIError{Code: CodeNotAvailable, Message: msg} }
func ErrInternal(msg string) *APIError     { return &APIError{Code: CodeInternal, Message: msg} }

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument, CodeInvalidScore:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeNotAvailable:
			return http.StatusConflict
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// レスポンスボディ: {"error":{"code":..., "message":...}}
type ErrorDTO struct {
	Error APIError `json:"error"`
}

func Body(code Code, msg string) ErrorDTO {
	return ErrorDTO{Error: APIError{Code: code, Message: msg}}
}

func FromErr(err error) ErrorDTO {
	var api *APIError
	if errors.As(err, &api) {
		return ErrorDTO{Error: *api}
	}
	return Body(CodeInternal, err.Error())
}
