package httpapi

import "net/http"

func (h *Handler) RunWarmCatalogJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWarmCatalogJob")
	defer span.End()

	result, err := h.warmService.WarmAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "warm catalog job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
