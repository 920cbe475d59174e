package handlers

import (
	"encoding/json"
	"net/http"

	"dailydiet/internal/models"
	"dailydiet/internal/security"
	"dailydiet/internal/service"
)

// MealHandler handles meal HTTP requests
type MealHandler struct {
	mealService    *service.MealService
	metricsService *service.MetricsService
	identity       *security.IdentityManager
	monitor        *Monitor
}

// NewMealHandler creates a new meal handler. monitor may be nil.
func NewMealHandler(mealService *service.MealService, metricsService *service.MetricsService, identity *security.IdentityManager, monitor *Monitor) *MealHandler {
	return &MealHandler{
		mealService:    mealService,
		metricsService: metricsService,
		identity:       identity,
		monitor:        monitor,
	}
}

// CreateMeal stores a meal, issuing an identity cookie to new clients
func (h *MealHandler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidBody, "", nil)
		return
	}

	userID, err := h.identity.UserIDFromRequest(r)
	newUser := err != nil
	if newUser {
		userID = security.NewUserID()
	}

	meal, err := h.mealService.CreateMeal(r.Context(), userID, req)
	if err != nil {
		respondWithServiceError(w, "Error creating meal", err)
		return
	}

	if newUser {
		if err := h.identity.IssueCookie(w, r, userID); err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error issuing identity cookie", err)
			return
		}
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{"meal": meal})
}

// ListMeals returns every meal of the caller
func (h *MealHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	meals, err := h.mealService.ListMeals(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, "Error listing meals", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"meals": meals})
}

// GetMeal returns a single meal of the caller
func (h *MealHandler) GetMeal(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	meal, err := h.mealService.GetMeal(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Error getting meal", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"meal": meal})
}

// UpdateMeal applies a partial update to a meal of the caller
func (h *MealHandler) UpdateMeal(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	var req models.UpdateMealRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidBody, "", nil)
		return
	}

	if _, err := h.mealService.UpdateMeal(r.Context(), userID, r.PathValue("id"), req); err != nil {
		respondWithServiceError(w, "Error updating meal", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteMeal removes a meal of the caller
func (h *MealHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	if err := h.mealService.DeleteMeal(r.Context(), userID, r.PathValue("id")); err != nil {
		respondWithServiceError(w, "Error deleting meal", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetMetrics returns meal counts and the best diet sequence of the caller
func (h *MealHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())

	metrics, err := h.metricsService.GetMetrics(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, "Error computing metrics", err)
		return
	}

	h.monitor.ObserveBestSequence(metrics.BestSequenceWithinDiet)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"metrics": metrics})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
