package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"dailydiet/internal/service"
	"dailydiet/internal/utils"
)

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondWithJSON(w, status, map[string]string{"error": userMsg})
}

// respondWithServiceError maps service errors onto HTTP responses
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var validationErr utils.ValidationError
	var dateErr *service.InvalidDateError

	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
	case errors.Is(err, service.ErrMealNotFound):
		respondWithError(w, http.StatusNotFound, ErrMealNotFound, "", nil)
	case errors.As(err, &dateErr):
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Stored meal has an invalid date", err)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
