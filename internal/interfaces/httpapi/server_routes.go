package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerCatalogRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/sports", handler.ListSports)
}

func registerFormRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/terrain-forms", handler.CreateForm)
	mux.HandleFunc("GET /v1/terrain-forms/{sessionID}", handler.GetForm)
	mux.HandleFunc("PATCH /v1/terrain-forms/{sessionID}/fields", handler.PatchField)
	mux.HandleFunc("POST /v1/terrain-forms/{sessionID}/reset", handler.ResetForm)
	mux.HandleFunc("POST /v1/terrain-forms/{sessionID}/sports/{sportID}/toggle", handler.ToggleSport)
	mux.HandleFunc("POST /v1/terrain-forms/{sessionID}/images", handler.AttachImage)
	mux.HandleFunc("DELETE /v1/terrain-forms/{sessionID}/images/{index}", handler.RemoveImage)
	mux.HandleFunc("POST /v1/terrain-forms/{sessionID}/submit", handler.SubmitForm)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/warm-catalog", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunWarmCatalogJob)))
}
