package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body every failing endpoint returns.
type ErrorResponse struct {
	Error  string `json:"error"`
	Fields any    `json:"fields,omitempty"`
}

// ResponseJSON writes any payload with a custom status code
func ResponseJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, payload any) {
	ResponseJSON(w, http.StatusOK, payload)
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, payload any) {
	ResponseJSON(w, http.StatusCreated, payload)
}

// ------------- Error responses -------------

func ResponseError(w http.ResponseWriter, code int, message string) {
	ResponseJSON(w, code, ErrorResponse{Error: message})
}

// returns 400 Bad Request, optionally with per-field validation errors
func ResponseBadRequest(w http.ResponseWriter, message string, fields any) {
	ResponseJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Fields: fields})
}

// returns 401 Unauthorized
func ResponseUnauthorized(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusUnauthorized, message)
}

// returns 403 Forbidden
func ResponseForbidden(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusForbidden, message)
}

// returns 404 Not Found
func ResponseNotFound(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusNotFound, message)
}

// returns 409 Conflict
func ResponseConflict(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusConflict, message)
}

// returns 502 Bad Gateway, used when a dependent internal service failed
func ResponseBadGateway(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusBadGateway, message)
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusInternalServerError, message)
}
