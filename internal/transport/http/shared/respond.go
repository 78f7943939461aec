// Package shared holds the response helpers every handler package uses so
// the error envelope stays identical across routes.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "offsite/pkg/domain-errors"
)

// errorEnvelope is the wire shape of every error response.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into the JSON error envelope. Domain errors map
// to their HTTP status; anything else is reported as an internal error
// without leaking its message.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.DomainError
	if !errors.As(err, &de) {
		de = dErrors.New(dErrors.CodeInternal, "internal error")
	}
	WriteJSON(w, dErrors.ToHTTPStatus(de.Code), errorEnvelope{
		Error: errorBody{Code: string(de.Code), Message: de.Message},
	})
}
