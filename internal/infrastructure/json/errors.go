package json

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

func WriteError(w http.ResponseWriter, status int, msg string) {
	writeErrorBody(w, status, &errorBody{Message: msg})
}

func WriteErrorDetails(w http.ResponseWriter, status int, msg string, details any) {
	writeErrorBody(w, status, &errorBody{Message: msg, Details: details})
}

func WriteValidationError(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusBadRequest, err.Error())
}

func WriteInternalError(w http.ResponseWriter, err error) {
	log.Printf("Internal error: %v", err)
	WriteError(w, http.StatusInternalServerError, "An unexpected error occurred")
}

func WriteRateLimitError(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Content-Type", "application/json")
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(envelope{
		Error: &errorBody{Message: "Too many requests. Please try again later."},
	})
}

func writeErrorBody(w http.ResponseWriter, status int, body *errorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: body})
}
