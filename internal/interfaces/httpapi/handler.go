package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yaokonan/terrain-booking/internal/domain/sport"
	"github.com/yaokonan/terrain-booking/internal/domain/terrain"
	"github.com/yaokonan/terrain-booking/internal/platform/logging"
	"github.com/yaokonan/terrain-booking/internal/usecase"
)

type Handler struct {
	formService *usecase.FormService
	catalog     *usecase.SportCatalogService
	warmService *usecase.CatalogWarmService
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(
	formService *usecase.FormService,
	catalog *usecase.SportCatalogService,
	warmService *usecase.CatalogWarmService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		formService: formService,
		catalog:     catalog,
		warmService: warmService,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type sportDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	IconKey string `json:"icon_key,omitempty"`
	Active  bool   `json:"active"`
}

type sportListDTO struct {
	Items        []sportDTO `json:"items"`
	Stale        bool       `json:"stale,omitempty"`
	RefreshError string     `json:"refresh_error,omitempty"`
}

func sportToDTO(item sport.Sport) sportDTO {
	return sportDTO{
		ID:      item.ID,
		Name:    item.Name,
		IconKey: item.IconKey,
		Active:  item.Active,
	}
}

// ListSports serves the sport catalog, filtered by the q query parameter.
// A failed refresh with a warm cache still answers with the stale items and
// carries the refresh error alongside them.
func (h *Handler) ListSports(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSports")
	defer span.End()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	items, err := h.catalog.EnsureFresh(ctx)
	if err != nil && len(items) == 0 {
		h.logger.WarnContext(ctx, "list sports failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	filtered := h.catalog.Search(query)
	resp := sportListDTO{Items: make([]sportDTO, 0, len(filtered))}
	for _, item := range filtered {
		resp.Items = append(resp.Items, sportToDTO(item))
	}
	if err != nil {
		resp.Stale = true
		resp.RefreshError = "sport list could not be refreshed"
		h.logger.WarnContext(ctx, "serving stale sport list", "error", err)
	}

	writeSuccess(ctx, w, http.StatusOK, resp)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type draftDTO struct {
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	Contact      string   `json:"contact"`
	PricePerHour string   `json:"pricePerHour"`
	OpenTime     string   `json:"openTime"`
	CloseTime    string   `json:"closeTime"`
	Images       []string `json:"images"`
}

type terrainDTO struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Description  string   `json:"description,omitempty"`
	Contact      string   `json:"contact"`
	PricePerHour float64  `json:"price_per_hour"`
	OpenTime     string   `json:"open_time,omitempty"`
	CloseTime    string   `json:"close_time,omitempty"`
	Images       []string `json:"images,omitempty"`
	SportIDs     []int64  `json:"sport_ids,omitempty"`
}

type formSessionDTO struct {
	SessionID      string            `json:"session_id"`
	Mode           string            `json:"mode"`
	State          string            `json:"state"`
	TerrainID      int64             `json:"terrain_id,omitempty"`
	Draft          draftDTO          `json:"draft"`
	FieldErrors    map[string]string `json:"field_errors"`
	SelectedSports []int64           `json:"selected_sport_ids"`
	Submitting     bool              `json:"submitting"`
	SuccessMessage string            `json:"success_message,omitempty"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	Terrain        *terrainDTO       `json:"terrain,omitempty"`
}

func terrainToDTO(t *terrain.Terrain) *terrainDTO {
	if t == nil {
		return nil
	}
	return &terrainDTO{
		ID:           t.ID,
		Name:         t.Name,
		Location:     t.Location,
		Description:  t.Description,
		Contact:      t.Contact,
		PricePerHour: t.PricePerHour,
		OpenTime:     t.OpenTime,
		CloseTime:    t.CloseTime,
		Images:       t.Images,
		SportIDs:     t.SportIDs,
	}
}

func sessionToDTO(view usecase.SessionView) formSessionDTO {
	selected := view.SelectedSports
	if selected == nil {
		selected = []int64{}
	}
	fieldErrors := view.FieldErrors
	if fieldErrors == nil {
		fieldErrors = terrain.FieldErrors{}
	}
	images := view.Draft.Images
	if images == nil {
		images = []string{}
	}

	return formSessionDTO{
		SessionID: view.ID,
		Mode:      string(view.Mode),
		State:     string(view.State),
		TerrainID: view.TerrainID,
		Draft: draftDTO{
			Name:         view.Draft.Name,
			Location:     view.Draft.Location,
			Description:  view.Draft.Description,
			Contact:      view.Draft.Contact,
			PricePerHour: view.Draft.PricePerHour,
			OpenTime:     view.Draft.OpenTime,
			CloseTime:    view.Draft.CloseTime,
			Images:       images,
		},
		FieldErrors:    fieldErrors,
		SelectedSports: selected,
		Submitting:     view.Submitting,
		SuccessMessage: view.SuccessMessage,
		ErrorMessage:   view.ErrorMessage,
		Terrain:        terrainToDTO(view.Terrain),
	}
}
