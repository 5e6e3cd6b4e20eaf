package models

import "encoding/json"

const (
	MessageSuccess  = "SUCCESS"
	MessageError    = "ERROR"
	MessageNotFound = "NOT_FOUND"

	CodeSuccess = "200"
)

type ProcessResult struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the response envelope: either a success carrying a payload, or a
// failure carrying a code and message and no payload.
type Result struct {
	data    any
	failure *ProcessResult
}

func Success(data any) Result {
	return Result{data: data}
}

func Failure(code, message string) Result {
	return Result{failure: &ProcessResult{Code: code, Message: message}}
}

func (r Result) IsSuccess() bool {
	return r.failure == nil
}

func (r Result) Data() any {
	return r.data
}

func (r Result) ProcessResult() ProcessResult {
	if r.failure != nil {
		return *r.failure
	}
	return ProcessResult{Code: CodeSuccess, Message: MessageSuccess}
}

// MarshalJSON renders {"data": ..., "processResult": {...}} for both variants.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Data          any           `json:"data"`
		ProcessResult ProcessResult `json:"processResult"`
	}{
		Data:          r.data,
		ProcessResult: r.ProcessResult(),
	})
}
