package dataaccess

import (
	"encoding/json"

	"github.com/karloscodes/dataaccess/database"
)

// FailedResult is the result code of a stored procedure call that failed
// before the procedure could report its own result.
const FailedResult = -1

// StoredProcedureResponse is the normalized outcome of a stored procedure
// call. Success is fixed at construction as Result > 0.
type StoredProcedureResponse struct {
	result  int
	message string
	success bool
}

// NewStoredProcedureResponse builds a response from a result code and a
// message.
func NewStoredProcedureResponse(result int, message string) StoredProcedureResponse {
	return StoredProcedureResponse{
		result:  result,
		message: message,
		success: result > 0,
	}
}

// Result returns the procedure's result code.
func (r StoredProcedureResponse) Result() int { return r.result }

// Message returns the procedure's message.
func (r StoredProcedureResponse) Message() string { return r.message }

// Success reports whether the result code is positive.
func (r StoredProcedureResponse) Success() bool { return r.success }

type responseJSON struct {
	Result  int    `json:"result"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// MarshalJSON encodes the response as {"result","message","success"}.
func (r StoredProcedureResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(responseJSON{Result: r.result, Message: r.message, Success: r.success})
}

// UnmarshalJSON decodes a response. Success is recomputed from the result.
func (r *StoredProcedureResponse) UnmarshalJSON(data []byte) error {
	var v responseJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = NewStoredProcedureResponse(v.Result, v.Message)
	return nil
}

// normalizeResponse reads @result and @msg back from an executed bag.
// Missing or null outputs read as 0 and "".
func normalizeResponse(bag *database.Bag) StoredProcedureResponse {
	result, _ := bag.OutputInt(database.ResultOutput)
	message, _ := bag.OutputString(database.MessageOutput)
	return NewStoredProcedureResponse(int(result), message)
}

func failedResponse(err error) StoredProcedureResponse {
	return NewStoredProcedureResponse(FailedResult, err.Error())
}
