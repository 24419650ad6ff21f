// Package response writes the JSON envelope the orbital API speaks: every
// body carries a success flag alongside either the operation payload or a
// coded problem, mirroring the success/error_message pairing of the
// propagation results themselves.
package response

import (
	"encoding/json"
	"net/http"
)

// Problem is the wire form of a failed request.
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Problem    `json:"error,omitempty"`
}

// OK wraps an operation payload in a 200 envelope.
func OK(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Fail writes a coded problem with the given HTTP status.
func Fail(w http.ResponseWriter, status int, code, message string) {
	write(w, status, envelope{Success: false, Error: &Problem{Code: code, Message: message}})
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
