package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	errInvalidPrice  = errors.New("current price is not a number")
	errNoPriceSource = errors.New("no price source: pass current= or configure the oracle and pass symbol=")
)

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
