package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yaokonan/terrain-booking/internal/domain/sport"
	"github.com/yaokonan/terrain-booking/internal/domain/terrain"
	"github.com/yaokonan/terrain-booking/internal/platform/cache"
	"github.com/yaokonan/terrain-booking/internal/platform/id"
	"github.com/yaokonan/terrain-booking/internal/platform/logging"
)

const (
	// DefaultFormSessionTTL bounds how long an untouched form session is kept.
	DefaultFormSessionTTL = 30 * time.Minute
	// DefaultMaxFormSessions caps the session registry.
	DefaultMaxFormSessions = 10000

	msgCreateSuccess   = "Terrain created successfully."
	msgUpdateSuccess   = "Terrain updated successfully."
	msgSubmitFailed    = "Something went wrong. Please try again."
	msgSelectionNeeded = "At least one sport must be selected."
	msgImagesFull      = "a terrain can carry at most 5 images"
)

type TerrainProvider interface {
	GetTerrain(ctx context.Context, terrainID int64) (terrain.Terrain, error)
	CreateTerrain(ctx context.Context, payload terrain.Payload) (terrain.Terrain, error)
	UpdateTerrain(ctx context.Context, terrainID int64, payload terrain.Payload) (terrain.Terrain, error)
}

// PickResult is the outcome of an image pick on the caller's side. Either
// Base64 or URI may be set; a cancelled pick carries neither.
type PickResult struct {
	Cancelled bool
	Base64    string
	URI       string
}

// URIReader resolves an image URI into base64 content. Used when a pick
// carries only a URI.
type URIReader interface {
	ReadAsBase64(ctx context.Context, uri string) (string, error)
}

// userMessenger lets boundary errors carry a message fit for end users.
// The booking platform client implements it on its API errors.
type userMessenger interface {
	UserMessage() string
}

type StartFormInput struct {
	TerrainID int64
}

type SetFieldInput struct {
	SessionID string
	Field     string
	Value     string
}

type AttachImageInput struct {
	SessionID string
	Pick      PickResult
}

type SubmitResult struct {
	State       FormState
	FieldErrors terrain.FieldErrors
	Message     string
	Terrain     *terrain.Terrain
}

// FormService owns the registry of live form sessions and every operation on
// them: field edits with optimistic error clearing, sport toggling, image
// attachment, and submission to the booking platform.
type FormService struct {
	sessions  *cache.Store[*Session]
	ids       id.Generator
	terrains  TerrainProvider
	catalog   *SportCatalogService
	uriReader URIReader
	logger    *logging.Logger
	now       func() time.Time
}

func NewFormService(
	sessions *cache.Store[*Session],
	ids id.Generator,
	terrains TerrainProvider,
	catalog *SportCatalogService,
	uriReader URIReader,
	logger *logging.Logger,
) *FormService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FormService{
		sessions:  sessions,
		ids:       ids,
		terrains:  terrains,
		catalog:   catalog,
		uriReader: uriReader,
		logger:    logger,
		now:       time.Now,
	}
}

// StartForm opens a new session. With a terrain id the session starts in
// update mode, seeded from the terrain fetched upstream; otherwise it starts
// in create mode with the draft defaults.
func (s *FormService) StartForm(ctx context.Context, input StartFormInput) (SessionView, error) {
	ctx, span := startUsecaseSpan(ctx, "FormService.StartForm")
	defer span.End()

	sessionID, err := s.ids.NewID()
	if err != nil {
		return SessionView{}, fmt.Errorf("generate session id: %w", err)
	}

	mode := FormModeCreate
	draft := terrain.NewDraft()
	var seeded terrain.Terrain

	if input.TerrainID > 0 {
		seeded, err = s.terrains.GetTerrain(ctx, input.TerrainID)
		if err != nil {
			return SessionView{}, fmt.Errorf("load terrain %d: %w", input.TerrainID, err)
		}
		mode = FormModeUpdate
		draft = terrain.DraftFromTerrain(seeded)
	}

	sess := newSession(sessionID, mode, input.TerrainID, draft, s.now())
	if mode == FormModeUpdate {
		s.seedSelection(ctx, sess, seeded.SportIDs)
	}

	s.sessions.Set(sessionID, sess)
	return sess.View(), nil
}

// seedSelection preloads the selection from a terrain's sport ids, resolving
// names from the catalog when it already holds them.
func (s *FormService) seedSelection(ctx context.Context, sess *Session, sportIDs []int64) {
	if len(sportIDs) == 0 {
		return
	}
	if s.catalog != nil {
		if _, err := s.catalog.EnsureFresh(ctx); err != nil {
			s.logger.WarnContext(ctx, "catalog unavailable while seeding selection", "error", err)
		}
	}
	for _, sportID := range sportIDs {
		item := sport.Sport{ID: sportID}
		if s.catalog != nil {
			if known, ok := s.catalog.FindByID(sportID); ok {
				item = known
			}
		}
		sess.selection.Toggle(item)
	}
}

// GetForm returns the current snapshot of a session.
func (s *FormService) GetForm(ctx context.Context, sessionID string) (SessionView, error) {
	_, span := startUsecaseSpan(ctx, "FormService.GetForm")
	defer span.End()

	sess, err := s.session(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return sess.View(), nil
}

// SetField replaces one draft field. A recorded error for that field is
// cleared without re-running the validator; the next submit re-validates.
func (s *FormService) SetField(ctx context.Context, input SetFieldInput) (SessionView, error) {
	_, span := startUsecaseSpan(ctx, "FormService.SetField")
	defer span.End()

	if !terrain.KnownField(input.Field) {
		return SessionView{}, fmt.Errorf("%w: unknown field %q", ErrInvalidInput, input.Field)
	}

	sess, err := s.session(input.SessionID)
	if err != nil {
		return SessionView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.draft.Set(input.Field, input.Value)
	delete(sess.fieldErrs, input.Field)
	sess.state = FormStateEditing
	return sess.view(), nil
}

// ToggleSport flips one sport in the session's selection and reports whether
// it ended up selected. A non-empty selection clears the sports field error.
func (s *FormService) ToggleSport(ctx context.Context, sessionID string, sportID int64) (bool, SessionView, error) {
	_, span := startUsecaseSpan(ctx, "FormService.ToggleSport")
	defer span.End()

	if sportID <= 0 {
		return false, SessionView{}, fmt.Errorf("%w: sport id must be positive", ErrInvalidInput)
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return false, SessionView{}, err
	}

	item := sport.Sport{ID: sportID}
	if s.catalog != nil {
		if known, ok := s.catalog.FindByID(sportID); ok {
			item = known
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.selection.Toggle(item)
	selected := sess.selection.IsSelected(sportID)
	if sess.selection.Len() > 0 {
		delete(sess.fieldErrs, terrain.FieldSports)
	}
	sess.state = FormStateEditing
	return selected, sess.view(), nil
}

// AttachImage appends one image to the draft. Base64 content wins when both
// forms are present; a URI is resolved through the reader and kept as the raw
// reference when the read fails. Cancelled picks change nothing.
func (s *FormService) AttachImage(ctx context.Context, input AttachImageInput) (SessionView, error) {
	ctx, span := startUsecaseSpan(ctx, "FormService.AttachImage")
	defer span.End()

	sess, err := s.session(input.SessionID)
	if err != nil {
		return SessionView{}, err
	}

	if input.Pick.Cancelled {
		return sess.View(), nil
	}

	content := strings.TrimSpace(input.Pick.Base64)
	uri := strings.TrimSpace(input.Pick.URI)
	if content == "" && uri == "" {
		return SessionView{}, fmt.Errorf("%w: pick carries no image data", ErrInvalidInput)
	}

	if content == "" {
		if s.uriReader != nil {
			read, readErr := s.uriReader.ReadAsBase64(ctx, uri)
			if readErr != nil {
				s.logger.WarnContext(ctx, "image read failed, keeping uri reference",
					"session_id", input.SessionID, "error", readErr)
			} else {
				content = read
			}
		}
		if content == "" {
			content = uri
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.draft.Images) >= terrain.MaxImages {
		return SessionView{}, fmt.Errorf("%w: %s", ErrInvalidInput, msgImagesFull)
	}
	sess.draft.Images = append(sess.draft.Images, content)
	delete(sess.fieldErrs, terrain.FieldImages)
	sess.state = FormStateEditing
	return sess.view(), nil
}

// RemoveImage drops the image at index, preserving the order of the rest.
func (s *FormService) RemoveImage(ctx context.Context, sessionID string, index int) (SessionView, error) {
	_, span := startUsecaseSpan(ctx, "FormService.RemoveImage")
	defer span.End()

	sess, err := s.session(sessionID)
	if err != nil {
		return SessionView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if index < 0 || index >= len(sess.draft.Images) {
		return SessionView{}, fmt.Errorf("%w: image index %d out of range", ErrInvalidInput, index)
	}
	sess.draft.Images = append(sess.draft.Images[:index], sess.draft.Images[index+1:]...)
	sess.state = FormStateEditing
	return sess.view(), nil
}

// Reset restores a create-mode session to its defaults.
func (s *FormService) Reset(ctx context.Context, sessionID string) (SessionView, error) {
	_, span := startUsecaseSpan(ctx, "FormService.Reset")
	defer span.End()

	sess, err := s.session(sessionID)
	if err != nil {
		return SessionView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.mode != FormModeCreate {
		return SessionView{}, fmt.Errorf("%w: only create-mode sessions can be reset", ErrInvalidInput)
	}

	sess.draft = terrain.NewDraft()
	sess.selection.Clear()
	sess.fieldErrs = terrain.FieldErrors{}
	sess.successMessage = ""
	sess.errorMessage = ""
	sess.lastTerrain = nil
	sess.state = FormStateEditing
	return sess.view(), nil
}

// Submit validates the draft and forwards it upstream. Validation failures
// populate the field errors and never reach the network. A submit while one
// is already in flight returns ErrSubmitInFlight without a second call.
func (s *FormService) Submit(ctx context.Context, sessionID string) (SubmitResult, error) {
	ctx, span := startUsecaseSpan(ctx, "FormService.Submit")
	defer span.End()

	sess, err := s.session(sessionID)
	if err != nil {
		return SubmitResult{}, err
	}

	sess.mu.Lock()
	if sess.submitting {
		sess.mu.Unlock()
		return SubmitResult{}, ErrSubmitInFlight
	}

	errs := terrain.ValidateDraft(sess.draft)
	if sess.selection.Len() == 0 {
		errs[terrain.FieldSports] = msgSelectionNeeded
	}
	if len(errs) > 0 {
		sess.fieldErrs = errs
		sess.state = FormStateEditing
		view := sess.view()
		sess.mu.Unlock()
		return SubmitResult{State: FormStateEditing, FieldErrors: view.FieldErrors}, nil
	}

	// The payload is fixed here; edits landing while the call is in flight
	// do not join this submission.
	sess.submitting = true
	sess.state = FormStateSubmitting
	sess.successMessage = ""
	sess.errorMessage = ""
	payload := terrain.BuildPayload(sess.draft, sess.selection.IDs())
	mode := sess.mode
	terrainID := sess.terrainID
	sess.mu.Unlock()

	var echoed terrain.Terrain
	var callErr error
	if mode == FormModeUpdate {
		echoed, callErr = s.terrains.UpdateTerrain(ctx, terrainID, payload)
	} else {
		echoed, callErr = s.terrains.CreateTerrain(ctx, payload)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.submitting = false

	if callErr != nil {
		sess.state = FormStateFailed
		sess.errorMessage = submitFailureMessage(callErr)
		s.logger.WarnContext(ctx, "terrain submission failed",
			"session_id", sessionID, "mode", string(mode), "error", callErr)
		return SubmitResult{State: FormStateFailed, Message: sess.errorMessage}, nil
	}

	sess.lastTerrain = &echoed
	sess.state = FormStateSucceeded
	if mode == FormModeUpdate {
		sess.terrainID = echoed.ID
		sess.successMessage = msgUpdateSuccess
	} else {
		sess.draft = terrain.NewDraft()
		sess.selection.Clear()
		sess.fieldErrs = terrain.FieldErrors{}
		sess.successMessage = msgCreateSuccess
	}

	return SubmitResult{State: FormStateSucceeded, Message: sess.successMessage, Terrain: &echoed}, nil
}

func (s *FormService) session(sessionID string) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: session=%s", ErrNotFound, sessionID)
	}
	return sess, nil
}

// submitFailureMessage prefers the upstream error body's message and falls
// back to a generic one.
func submitFailureMessage(err error) string {
	var messenger userMessenger
	if errors.As(err, &messenger) {
		if msg := strings.TrimSpace(messenger.UserMessage()); msg != "" {
			return msg
		}
	}
	return msgSubmitFailed
}
