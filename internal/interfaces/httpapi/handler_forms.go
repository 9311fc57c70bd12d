package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/yaokonan/terrain-booking/internal/usecase"
)

type createFormRequest struct {
	TerrainID int64 `json:"terrain_id" validate:"omitempty,gt=0"`
}

type patchFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

type attachImageRequest struct {
	Cancelled bool   `json:"cancelled"`
	Base64    string `json:"base64" validate:"omitempty,base64"`
	URI       string `json:"uri" validate:"omitempty,max=2048"`
}

type submitResultDTO struct {
	State       string            `json:"state"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Message     string            `json:"message,omitempty"`
	Terrain     *terrainDTO       `json:"terrain,omitempty"`
}

func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateForm")
	defer span.End()

	var req createFormRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.formService.StartForm(ctx, usecase.StartFormInput{TerrainID: req.TerrainID})
	if err != nil {
		h.logger.WarnContext(ctx, "start form failed", "terrain_id", req.TerrainID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, sessionToDTO(view))
}

func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetForm")
	defer span.End()

	view, err := h.formService.GetForm(ctx, r.PathValue("sessionID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(view))
}

func (h *Handler) PatchField(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PatchField")
	defer span.End()

	var req patchFieldRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.formService.SetField(ctx, usecase.SetFieldInput{
		SessionID: r.PathValue("sessionID"),
		Field:     req.Field,
		Value:     req.Value,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(view))
}

func (h *Handler) ResetForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetForm")
	defer span.End()

	view, err := h.formService.Reset(ctx, r.PathValue("sessionID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(view))
}

func (h *Handler) ToggleSport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToggleSport")
	defer span.End()

	sportID, err := strconv.ParseInt(r.PathValue("sportID"), 10, 64)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: sport id must be numeric", usecase.ErrInvalidInput))
		return
	}

	selected, view, err := h.formService.ToggleSport(ctx, r.PathValue("sessionID"), sportID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"selected": selected,
		"session":  sessionToDTO(view),
	})
}

func (h *Handler) AttachImage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AttachImage")
	defer span.End()

	var req attachImageRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.formService.AttachImage(ctx, usecase.AttachImageInput{
		SessionID: r.PathValue("sessionID"),
		Pick: usecase.PickResult{
			Cancelled: req.Cancelled,
			Base64:    req.Base64,
			URI:       req.URI,
		},
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(view))
}

func (h *Handler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveImage")
	defer span.End()

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: image index must be numeric", usecase.ErrInvalidInput))
		return
	}

	view, err := h.formService.RemoveImage(ctx, r.PathValue("sessionID"), index)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(view))
}

func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitForm")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	result, err := h.formService.Submit(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "submit form failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, submitResultDTO{
		State:       string(result.State),
		FieldErrors: result.FieldErrors,
		Message:     result.Message,
		Terrain:     terrainToDTO(result.Terrain),
	})
}

func decodeRequest(r *http.Request, target any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
