package handlers

import "net/http"

// NewRouter registers the API routes
func NewRouter(middleware *Middleware, mealHandler *MealHandler, healthHandler *HealthHandler, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	mux.HandleFunc("POST /meals", mealHandler.CreateMeal)
	mux.HandleFunc("GET /meals", middleware.RequireUser(mealHandler.ListMeals))
	mux.HandleFunc("GET /meals/metrics", middleware.RequireUser(mealHandler.GetMetrics))
	mux.HandleFunc("GET /meals/{id}", middleware.RequireUser(mealHandler.GetMeal))
	mux.HandleFunc("PUT /meals/{id}", middleware.RequireUser(mealHandler.UpdateMeal))
	mux.HandleFunc("DELETE /meals/{id}", middleware.RequireUser(mealHandler.DeleteMeal))

	return mux
}
