package transport

import "encoding/json"

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status  string      `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// FieldErrors is the error metadata shown next to form inputs.
type FieldErrors struct {
	Fields map[string]string `json:"fields"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewMessage is a success envelope carrying a user-facing confirmation.
func NewMessage(message string, data interface{}) Envelope {
	return Envelope{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

// NewError returns an error envelope; fields, when present, land in meta.
func NewError(code, message string, fields map[string]string) Envelope {
	env := Envelope{
		Status:  "error",
		Code:    code,
		Message: message,
		Error:   message,
	}
	if len(fields) > 0 {
		env.Meta = FieldErrors{Fields: fields}
	}
	return env
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
