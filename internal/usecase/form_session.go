package usecase

import (
	"sync"
	"time"

	"github.com/yaokonan/terrain-booking/internal/domain/sport"
	"github.com/yaokonan/terrain-booking/internal/domain/terrain"
)

type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeUpdate FormMode = "update"
)

type FormState string

const (
	FormStateEditing    FormState = "editing"
	FormStateSubmitting FormState = "submitting"
	FormStateSucceeded  FormState = "succeeded"
	FormStateFailed     FormState = "failed"
)

// Session is the server-side draft state of one terrain form. All access goes
// through the mutex so concurrent edits on the same session are serialized.
type Session struct {
	mu sync.Mutex

	id        string
	mode      FormMode
	terrainID int64
	createdAt time.Time

	draft      terrain.Draft
	fieldErrs  terrain.FieldErrors
	selection  *sport.Selection
	state      FormState
	submitting bool

	successMessage string
	errorMessage   string
	lastTerrain    *terrain.Terrain
}

func newSession(id string, mode FormMode, terrainID int64, draft terrain.Draft, createdAt time.Time) *Session {
	return &Session{
		id:        id,
		mode:      mode,
		terrainID: terrainID,
		createdAt: createdAt,
		draft:     draft,
		fieldErrs: terrain.FieldErrors{},
		selection: sport.NewSelection(),
		state:     FormStateEditing,
	}
}

// SessionView is an immutable snapshot of a session for transport layers.
type SessionView struct {
	ID             string
	Mode           FormMode
	State          FormState
	TerrainID      int64
	Draft          terrain.Draft
	FieldErrors    terrain.FieldErrors
	SelectedSports []int64
	Submitting     bool
	SuccessMessage string
	ErrorMessage   string
	Terrain        *terrain.Terrain
}

func (s *Session) view() SessionView {
	errs := make(terrain.FieldErrors, len(s.fieldErrs))
	for field, msg := range s.fieldErrs {
		errs[field] = msg
	}

	draft := s.draft
	draft.Images = append([]string(nil), s.draft.Images...)

	return SessionView{
		ID:             s.id,
		Mode:           s.mode,
		State:          s.state,
		TerrainID:      s.terrainID,
		Draft:          draft,
		FieldErrors:    errs,
		SelectedSports: s.selection.IDs(),
		Submitting:     s.submitting,
		SuccessMessage: s.successMessage,
		ErrorMessage:   s.errorMessage,
		Terrain:        s.lastTerrain,
	}
}

// View returns a consistent snapshot of the session.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}
