package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(tryOn *TryOnHandler, results *ResultHandler, preferences *PreferenceHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestIDMiddleware, LoggingMiddleware)

	r.HandleFunc("/healthz", tryOn.HandleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/accessories", tryOn.HandleAccessories).Methods(http.MethodGet)

	api.HandleFunc("/sessions", tryOn.HandleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", tryOn.HandleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", tryOn.HandleResetSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/images/{role}", tryOn.HandleUploadImage).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/accessories/{label}/toggle", tryOn.HandleToggleAccessory).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/tryon", tryOn.HandleTryOn).Methods(http.MethodPost)

	api.HandleFunc("/sessions/{id}/results/{n:[0-9]+}", results.HandleDownload).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/results/{n:[0-9]+}/share", results.HandleShare).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/results/{n:[0-9]+}/suggestions", results.HandleSuggestions).Methods(http.MethodPost)

	api.HandleFunc("/preferences/theme", preferences.HandleGetTheme).Methods(http.MethodGet)
	api.HandleFunc("/preferences/theme", preferences.HandleSetTheme).Methods(http.MethodPut)
	api.HandleFunc("/preferences/theme/toggle", preferences.HandleToggleTheme).Methods(http.MethodPost)

	return r
}
