package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/yaokonan/terrain-booking/internal/domain/sport"
	"github.com/yaokonan/terrain-booking/internal/domain/terrain"
	"github.com/yaokonan/terrain-booking/internal/platform/cache"
	"github.com/yaokonan/terrain-booking/internal/platform/id"
	"github.com/yaokonan/terrain-booking/internal/platform/logging"
)

type fakeTerrainProvider struct {
	mu          sync.Mutex
	getCalls    int
	createCalls int
	updateCalls int
	lastPayload terrain.Payload
	stored      terrain.Terrain
	err         error
	block       chan struct{}
}

func (p *fakeTerrainProvider) GetTerrain(_ context.Context, terrainID int64) (terrain.Terrain, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.getCalls++
	if p.err != nil {
		return terrain.Terrain{}, p.err
	}
	if p.stored.ID != terrainID {
		return terrain.Terrain{}, fmt.Errorf("get terrain: %w", ErrNotFound)
	}
	return p.stored, nil
}

func (p *fakeTerrainProvider) CreateTerrain(_ context.Context, payload terrain.Payload) (terrain.Terrain, error) {
	p.mu.Lock()
	p.createCalls++
	p.lastPayload = payload
	block := p.block
	err := p.err
	p.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return terrain.Terrain{}, err
	}
	return terrain.Terrain{ID: 42, Name: payload.Name, Location: payload.Location}, nil
}

func (p *fakeTerrainProvider) UpdateTerrain(_ context.Context, terrainID int64, payload terrain.Payload) (terrain.Terrain, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updateCalls++
	p.lastPayload = payload
	if p.err != nil {
		return terrain.Terrain{}, p.err
	}
	return terrain.Terrain{ID: terrainID, Name: payload.Name, Location: payload.Location}, nil
}

func (p *fakeTerrainProvider) counts() (get, create, update int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.getCalls, p.createCalls, p.updateCalls
}

type fakeURIReader struct {
	content string
	err     error
}

func (r *fakeURIReader) ReadAsBase64(_ context.Context, _ string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.content, nil
}

type upstreamFailure struct {
	message string
}

func (e *upstreamFailure) Error() string       { return "upstream rejected the terrain" }
func (e *upstreamFailure) UserMessage() string { return e.message }

func newTestFormService(provider *fakeTerrainProvider, catalog *SportCatalogService, reader URIReader) *FormService {
	sessions := cache.NewStore[*Session](time.Hour, DefaultMaxFormSessions)
	return NewFormService(sessions, id.NewRandomGenerator("form"), provider, catalog, reader, logging.NewNop())
}

func fillValidDraft(t *testing.T, service *FormService, sessionID string) {
	t.Helper()
	fields := map[string]string{
		terrain.FieldName:         "Terrain A",
		terrain.FieldLocation:     "Abidjan",
		terrain.FieldContact:      "0707070707",
		terrain.FieldPricePerHour: "15000",
	}
	for field, value := range fields {
		if _, err := service.SetField(t.Context(), SetFieldInput{SessionID: sessionID, Field: field, Value: value}); err != nil {
			t.Fatalf("set field %s failed: %v", field, err)
		}
	}
	if _, err := service.AttachImage(t.Context(), AttachImageInput{
		SessionID: sessionID,
		Pick:      PickResult{Base64: "aW1hZ2UtZGF0YQ=="},
	}); err != nil {
		t.Fatalf("attach image failed: %v", err)
	}
	if _, _, err := service.ToggleSport(t.Context(), sessionID, 3); err != nil {
		t.Fatalf("toggle sport failed: %v", err)
	}
}

func TestFormService_CreateFlow(t *testing.T) {
	provider := &fakeTerrainProvider{}
	service := newTestFormService(provider, nil, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}
	if view.Mode != FormModeCreate {
		t.Fatalf("expected create mode, got %s", view.Mode)
	}
	if view.Draft.OpenTime != terrain.DefaultOpenTime || view.Draft.CloseTime != terrain.DefaultCloseTime {
		t.Fatalf("expected defaulted hours, got %s-%s", view.Draft.OpenTime, view.Draft.CloseTime)
	}

	fillValidDraft(t, service, view.ID)

	result, err := service.Submit(t.Context(), view.ID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.State != FormStateSucceeded {
		t.Fatalf("expected succeeded state, got %s (errors: %v)", result.State, result.FieldErrors)
	}
	if result.Message != "Terrain created successfully." {
		t.Fatalf("unexpected success message: %q", result.Message)
	}
	if result.Terrain == nil || result.Terrain.ID != 42 {
		t.Fatalf("expected the server echo, got %+v", result.Terrain)
	}

	_, creates, updates := provider.counts()
	if creates != 1 || updates != 0 {
		t.Fatalf("expected one create and no update, got %d/%d", creates, updates)
	}

	payload := provider.lastPayload
	if payload.Contact != "0707070707" {
		t.Fatalf("expected digits-only contact, got %q", payload.Contact)
	}
	if payload.PricePerHour != 15000 {
		t.Fatalf("expected parsed price, got %v", payload.PricePerHour)
	}
	if len(payload.SportIDs) != 1 || payload.SportIDs[0] != 3 {
		t.Fatalf("unexpected sport ids: %v", payload.SportIDs)
	}

	// Create mode resets the draft and selection after success.
	after, err := service.GetForm(t.Context(), view.ID)
	if err != nil {
		t.Fatalf("get form failed: %v", err)
	}
	if after.Draft.Name != "" || len(after.Draft.Images) != 0 || len(after.SelectedSports) != 0 {
		t.Fatalf("expected an empty draft after create success, got %+v", after.Draft)
	}
}

func TestFormService_SubmitInvalidContactNeverReachesNetwork(t *testing.T) {
	provider := &fakeTerrainProvider{}
	service := newTestFormService(provider, nil, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}
	fillValidDraft(t, service, view.ID)
	if _, err := service.SetField(t.Context(), SetFieldInput{
		SessionID: view.ID, Field: terrain.FieldContact, Value: "12345",
	}); err != nil {
		t.Fatalf("set field failed: %v", err)
	}

	result, err := service.Submit(t.Context(), view.ID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.State != FormStateEditing {
		t.Fatalf("expected editing state, got %s", result.State)
	}
	if msg := result.FieldErrors[terrain.FieldContact]; msg != "Contact number must contain 10 digits." {
		t.Fatalf("unexpected contact error: %q", msg)
	}

	_, creates, updates := provider.counts()
	if creates != 0 || updates != 0 {
		t.Fatalf("invalid draft must not reach the network, got %d/%d calls", creates, updates)
	}
}

func TestFormService_SubmitRequiresSelection(t *testing.T) {
	provider := &fakeTerrainProvider{}
	service := newTestFormService(provider, nil, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}
	fillValidDraft(t, service, view.ID)
	// Toggle the sport back off; the selection check must catch it.
	if _, _, err := service.ToggleSport(t.Context(), view.ID, 3); err != nil {
		t.Fatalf("toggle sport failed: %v", err)
	}

	result, err := service.Submit(t.Context(), view.ID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if msg := result.FieldErrors[terrain.FieldSports]; msg == "" {
		t.Fatal("expected a sports selection error")
	}
}

func TestFormService_OptimisticClearLeavesFieldTransientlyValid(t *testing.T) {
	provider := &fakeTerrainProvider{}
	service := newTestFormService(provider, nil, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}
	fillValidDraft(t, service, view.ID)
	if _, err := service.SetField(t.Context(), SetFieldInput{
		SessionID: view.ID, Field: terrain.FieldContact, Value: "12345",
	}); err != nil {
		t.Fatalf("set field failed: %v", err)
	}

	result, err := service.Submit(t.Context(), view.ID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.FieldErrors[terrain.FieldContact] == "" {
		t.Fatal("expected a contact error after submit")
	}

	// Editing the field clears its error even though the new value is still
	// invalid; only the next submit re-validates.
	after, err := service.SetField(t.Context(), SetFieldInput{
		SessionID: view.ID, Field: terrain.FieldContact, Value: "999",
	})
	if err != nil {
		t.Fatalf("set field failed: %v", err)
	}
	if msg, ok := after.FieldErrors[terrain.FieldContact]; ok {
		t.Fatalf("expected the contact error cleared without re-validation, got %q", msg)
	}

	retry, err := service.Submit(t.Context(), view.ID)
	if err != nil {
		t.Fatalf("second submit failed: %v", err)
	}
	if retry.FieldErrors[terrain.FieldContact] == "" {
		t.Fatal("expected the next submit to re-validate the contact")
	}
}

func TestFormService_SubmitInFlightGuard(t *testing.T) {
	block := make(chan struct{})
	provider := &fakeTerrainProvider{block: block}
	service := newTestFormService(provider, nil, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}
	fillValidDraft(t, service, view.ID)

	firstDone := make(chan error, 1)
	go func() {
		_, submitErr := service.Submit(context.Background(), view.ID)
		firstDone <- submitErr
	}()

	// Wait for the first submit to reach the provider.
	deadline := time.After(2 * time.Second)
	for {
		if _, creates, _ := provider.counts(); creates == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first submit never reached the provider")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, err := service.Submit(t.Context(), view.ID); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected in-flight sentinel, got %v", err)
	}

	close(block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	if _, creates, _ := provider.counts(); creates != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", creates)
	}
}

func TestFormService_SubmitFailureKeepsValuesAndSurfacesMessage(t *testing.T) {
	provider := &fakeTerrainProvider{err: &upstreamFailure{message: "a terrain with this name already exists"}}
	service := newTestFormService(provider, nil, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}
	fillValidDraft(t, service, view.ID)

	result, err := service.Submit(t.Context(), view.ID)
	if err != nil {
		t.Fatalf("submit returned transport error: %v", err)
	}
	if result.State != FormStateFailed {
		t.Fatalf("expected failed state, got %s", result.State)
	}
	if result.Message != "a terrain with this name already exists" {
		t.Fatalf("expected the upstream message, got %q", result.Message)
	}

	after, err := service.GetForm(t.Context(), view.ID)
	if err != nil {
		t.Fatalf("get form failed: %v", err)
	}
	if after.Draft.Name != "Terrain A" || after.Draft.Contact != "0707070707" {
		t.Fatalf("failure must not touch field values, got %+v", after.Draft)
	}
}

func TestFormService_SubmitFailureGenericMessage(t *testing.T) {
	provider := &fakeTerrainProvider{err: errors.New("connection refused")}
	service := newTestFormService(provider, nil, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}
	fillValidDraft(t, service, view.ID)

	result, err := service.Submit(t.Context(), view.ID)
	if err != nil {
		t.Fatalf("submit returned transport error: %v", err)
	}
	if result.Message != "Something went wrong. Please try again." {
		t.Fatalf("expected the generic failure message, got %q", result.Message)
	}
}

func TestFormService_UpdateFlowSeedsAndUpdates(t *testing.T) {
	provider := &fakeTerrainProvider{stored: terrain.Terrain{
		ID:           7,
		Name:         "Terrain B",
		Location:     "Yamoussoukro",
		Contact:      "0101010101",
		PricePerHour: 20000,
		Images:       []string{"img-1"},
		SportIDs:     []int64{2, 5},
	}}
	service := newTestFormService(provider, nil, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{TerrainID: 7})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}
	if view.Mode != FormModeUpdate {
		t.Fatalf("expected update mode, got %s", view.Mode)
	}
	if view.Draft.Name != "Terrain B" || view.Draft.PricePerHour != "20000" {
		t.Fatalf("unexpected seeded draft: %+v", view.Draft)
	}
	if len(view.SelectedSports) != 2 || view.SelectedSports[0] != 2 || view.SelectedSports[1] != 5 {
		t.Fatalf("expected seeded selection [2 5], got %v", view.SelectedSports)
	}

	result, err := service.Submit(t.Context(), view.ID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Message != "Terrain updated successfully." {
		t.Fatalf("unexpected message: %q", result.Message)
	}

	_, creates, updates := provider.counts()
	if creates != 0 || updates != 1 {
		t.Fatalf("expected one update and no create, got %d/%d", creates, updates)
	}

	// Update mode keeps the draft values after success.
	after, err := service.GetForm(t.Context(), view.ID)
	if err != nil {
		t.Fatalf("get form failed: %v", err)
	}
	if after.Draft.Name != "Terrain B" {
		t.Fatalf("expected values kept after update, got %+v", after.Draft)
	}
	if after.Terrain == nil || after.Terrain.ID != 7 {
		t.Fatalf("expected the echoed terrain, got %+v", after.Terrain)
	}
}

func TestFormService_StartFormUnknownTerrain(t *testing.T) {
	provider := &fakeTerrainProvider{}
	service := newTestFormService(provider, nil, nil)

	if _, err := service.StartForm(t.Context(), StartFormInput{TerrainID: 99}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestFormService_SetFieldUnknownName(t *testing.T) {
	provider := &fakeTerrainProvider{}
	service := newTestFormService(provider, nil, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}

	_, err = service.SetField(t.Context(), SetFieldInput{SessionID: view.ID, Field: "bogus", Value: "x"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid-input, got %v", err)
	}
}

func TestFormService_UnknownSession(t *testing.T) {
	provider := &fakeTerrainProvider{}
	service := newTestFormService(provider, nil, nil)

	if _, err := service.GetForm(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestFormService_AttachImage(t *testing.T) {
	provider := &fakeTerrainProvider{}
	reader := &fakeURIReader{content: "ZnJvbS11cmk="}
	service := newTestFormService(provider, nil, reader)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}

	// Cancelled pick is a no-op.
	after, err := service.AttachImage(t.Context(), AttachImageInput{SessionID: view.ID, Pick: PickResult{Cancelled: true}})
	if err != nil {
		t.Fatalf("cancelled pick failed: %v", err)
	}
	if len(after.Draft.Images) != 0 {
		t.Fatalf("cancelled pick must not attach, got %d images", len(after.Draft.Images))
	}

	// Base64 content wins.
	after, err = service.AttachImage(t.Context(), AttachImageInput{
		SessionID: view.ID,
		Pick:      PickResult{Base64: "ZGlyZWN0", URI: "file:///tmp/pic.jpg"},
	})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if after.Draft.Images[0] != "ZGlyZWN0" {
		t.Fatalf("expected base64 content kept, got %q", after.Draft.Images[0])
	}

	// URI-only picks go through the reader.
	after, err = service.AttachImage(t.Context(), AttachImageInput{
		SessionID: view.ID,
		Pick:      PickResult{URI: "file:///tmp/pic.jpg"},
	})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if after.Draft.Images[1] != "ZnJvbS11cmk=" {
		t.Fatalf("expected reader content, got %q", after.Draft.Images[1])
	}

	// A failed read degrades to keeping the raw URI reference.
	reader.err = errors.New("unreadable")
	after, err = service.AttachImage(t.Context(), AttachImageInput{
		SessionID: view.ID,
		Pick:      PickResult{URI: "file:///tmp/broken.jpg"},
	})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if after.Draft.Images[2] != "file:///tmp/broken.jpg" {
		t.Fatalf("expected the uri kept as fallback, got %q", after.Draft.Images[2])
	}

	// An empty pick is rejected.
	if _, err := service.AttachImage(t.Context(), AttachImageInput{SessionID: view.ID}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid-input for an empty pick, got %v", err)
	}
}

func TestFormService_AttachImageCap(t *testing.T) {
	provider := &fakeTerrainProvider{}
	service := newTestFormService(provider, nil, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}

	for i := 0; i < terrain.MaxImages; i++ {
		if _, err := service.AttachImage(t.Context(), AttachImageInput{
			SessionID: view.ID,
			Pick:      PickResult{Base64: fmt.Sprintf("aW1n%d", i)},
		}); err != nil {
			t.Fatalf("attach %d failed: %v", i, err)
		}
	}

	_, err = service.AttachImage(t.Context(), AttachImageInput{
		SessionID: view.ID,
		Pick:      PickResult{Base64: "b25lLXRvby1tYW55"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected the image cap to reject, got %v", err)
	}
}

func TestFormService_RemoveImageKeepsOrder(t *testing.T) {
	provider := &fakeTerrainProvider{}
	service := newTestFormService(provider, nil, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}
	for _, img := range []string{"one", "two", "three"} {
		if _, err := service.AttachImage(t.Context(), AttachImageInput{
			SessionID: view.ID, Pick: PickResult{Base64: img},
		}); err != nil {
			t.Fatalf("attach failed: %v", err)
		}
	}

	after, err := service.RemoveImage(t.Context(), view.ID, 1)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(after.Draft.Images) != 2 || after.Draft.Images[0] != "one" || after.Draft.Images[1] != "three" {
		t.Fatalf("unexpected images after removal: %v", after.Draft.Images)
	}

	if _, err := service.RemoveImage(t.Context(), view.ID, 5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected out-of-range rejection, got %v", err)
	}
}

func TestFormService_Reset(t *testing.T) {
	provider := &fakeTerrainProvider{stored: terrain.Terrain{ID: 7, Name: "Terrain B"}}
	service := newTestFormService(provider, nil, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}
	fillValidDraft(t, service, view.ID)

	after, err := service.Reset(t.Context(), view.ID)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if after.Draft.Name != "" || len(after.SelectedSports) != 0 || len(after.Draft.Images) != 0 {
		t.Fatalf("expected a clean draft after reset, got %+v", after.Draft)
	}
	if after.Draft.OpenTime != terrain.DefaultOpenTime {
		t.Fatalf("expected defaulted hours after reset, got %q", after.Draft.OpenTime)
	}

	editView, err := service.StartForm(t.Context(), StartFormInput{TerrainID: 7})
	if err != nil {
		t.Fatalf("start edit form failed: %v", err)
	}
	if _, err := service.Reset(t.Context(), editView.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected reset to reject update mode, got %v", err)
	}
}

func TestFormService_ToggleResolvesNamesFromCatalog(t *testing.T) {
	catalogProvider := &fakeSportProvider{items: []sport.Sport{{ID: 3, Name: "Tennis", Active: true}}}
	catalog := newTestCatalog(catalogProvider, time.Hour, nil)
	if _, err := catalog.EnsureFresh(t.Context()); err != nil {
		t.Fatalf("warm catalog failed: %v", err)
	}

	provider := &fakeTerrainProvider{}
	service := newTestFormService(provider, catalog, nil)

	view, err := service.StartForm(t.Context(), StartFormInput{})
	if err != nil {
		t.Fatalf("start form failed: %v", err)
	}

	selected, after, err := service.ToggleSport(t.Context(), view.ID, 3)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !selected || len(after.SelectedSports) != 1 {
		t.Fatalf("expected sport selected, got %v", after.SelectedSports)
	}

	selected, after, err = service.ToggleSport(t.Context(), view.ID, 3)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if selected || len(after.SelectedSports) != 0 {
		t.Fatalf("expected toggle to deselect, got %v", after.SelectedSports)
	}
}
