package handlers

import (
	"encoding/json"
	"net/http"
)

// Every endpoint answers with the same envelope: {data, success:true} on
// success, {error, success:false} otherwise. Failure details stay in the
// server log; clients only see the message.
type successEnvelope struct {
	Data    interface{} `json:"data"`
	Success bool        `json:"success"`
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, successEnvelope{Data: data, Success: true})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Error: message, Success: false})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
