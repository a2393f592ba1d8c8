package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadpulse/leadpulse/internal/entity"
)

// ─── Test doubles ────────────────────────────────────────────────────

// memSnapshot round-trips through JSON the way the file store does, so
// aliasing bugs between the store and its snapshot would surface here.
type memSnapshot struct {
	mu    sync.Mutex
	raw   []byte
	saves int
}

func (m *memSnapshot) Load() *entity.AppData {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return entity.DefaultAppData(clock)
	}
	var data entity.AppData
	if err := json.Unmarshal(m.raw, &data); err != nil {
		panic(err)
	}
	return &data
}

func (m *memSnapshot) Save(data *entity.AppData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = raw
	m.saves++
	return nil
}

func snapshotWith(leads ...entity.Lead) *memSnapshot {
	data := entity.AppData{
		Leads:     leads,
		Templates: entity.DefaultTemplates(clock),
		Settings:  entity.DefaultSettings(),
	}
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return &memSnapshot{raw: raw}
}

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) FetchAll(ctx context.Context, userID string) (*RemoteData, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RemoteData), args.Error(1)
}

func (m *mockRemote) InsertLead(ctx context.Context, userID string, lead entity.Lead) (*entity.Lead, error) {
	args := m.Called(ctx, userID, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *mockRemote) InsertLeads(ctx context.Context, userID string, leads []entity.Lead) ([]entity.Lead, error) {
	args := m.Called(ctx, userID, leads)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *mockRemote) UpdateLead(ctx context.Context, userID, id string, patch entity.LeadPatch) error {
	return m.Called(ctx, userID, id, patch).Error(0)
}

func (m *mockRemote) DeleteLead(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockRemote) InsertTemplate(ctx context.Context, userID string, tpl entity.Template) (*entity.Template, error) {
	args := m.Called(ctx, userID, tpl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Template), args.Error(1)
}

func (m *mockRemote) UpdateTemplate(ctx context.Context, userID, id string, patch entity.TemplatePatch) error {
	return m.Called(ctx, userID, id, patch).Error(0)
}

func (m *mockRemote) DeleteTemplate(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockRemote) UpsertSettings(ctx context.Context, userID string, patch entity.SettingsPatch) error {
	return m.Called(ctx, userID, patch).Error(0)
}

type opRecorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *opRecorder) record(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *opRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.ops...)
}

func newLocalStore(t *testing.T) (*Store, *memSnapshot) {
	t.Helper()
	snap := &memSnapshot{}
	s := NewStore(snap, nil, "")
	s.now = func() time.Time { return clock }
	return s, snap
}

func newSyncedStore(t *testing.T, snap *memSnapshot, remote *mockRemote) *Store {
	t.Helper()
	s := NewStore(snap, remote, "user-1")
	s.now = func() time.Time { return clock }
	return s
}

// ─── Leads ───────────────────────────────────────────────────────────

func TestAddLeadLocalOnly(t *testing.T) {
	s, snap := newLocalStore(t)

	lead, err := s.AddLead(validLeadInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(lead.ID, "lead_"))
	assert.Equal(t, entity.StatusNew, lead.Status)
	assert.Equal(t, clock, lead.AddedAt)

	leads := s.Leads()
	require.Len(t, leads, 1)
	assert.Equal(t, lead, leads[0])
	assert.True(t, s.Synced())
	assert.Greater(t, snap.saves, 0)
}

func TestAddLeadValidationFails(t *testing.T) {
	s, _ := newLocalStore(t)

	_, err := s.AddLead(AddLeadInput{Name: ""})

	require.Error(t, err)
	assert.True(t, IsDomainError(err))
	assert.Empty(t, s.Leads())
}

func TestAddLeadSwapsTempIDForServerRow(t *testing.T) {
	remote := new(mockRemote)
	server := entity.Lead{ID: "srv-1", Name: "Ana", Platform: entity.PlatformTwitter, Category: entity.CategoryCreator, Status: entity.StatusNew, AddedAt: clock}
	remote.On("InsertLead", mock.Anything, "user-1", mock.Anything).Return(&server, nil)

	s := newSyncedStore(t, &memSnapshot{}, remote)

	lead, err := s.AddLead(validLeadInput())
	require.NoError(t, err)
	// The caller gets the temp record immediately.
	assert.True(t, strings.HasPrefix(lead.ID, "lead_"))

	s.Flush()

	leads := s.Leads()
	require.Len(t, leads, 1)
	assert.Equal(t, "srv-1", leads[0].ID)
	_, err = s.Lead(lead.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	remote.AssertExpectations(t)
}

func TestAddLeadRemoteFailureKeepsTempRecord(t *testing.T) {
	remote := new(mockRemote)
	remote.On("InsertLead", mock.Anything, "user-1", mock.Anything).Return(nil, errors.New("boom"))

	snap := &memSnapshot{}
	s := newSyncedStore(t, snap, remote)
	rec := &opRecorder{}
	s.RemoteErrorHook = rec.record

	lead, err := s.AddLead(validLeadInput())
	require.NoError(t, err)
	s.Flush()

	leads := s.Leads()
	require.Len(t, leads, 1)
	assert.Equal(t, lead.ID, leads[0].ID)
	assert.Contains(t, rec.all(), "insert_lead")
}

func TestAddLeadDeletedWhileInsertInFlight(t *testing.T) {
	remote := new(mockRemote)
	server := entity.Lead{ID: "srv-9", Name: "Ana", Status: entity.StatusNew}
	release := make(chan struct{})
	remote.On("InsertLead", mock.Anything, "user-1", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(&server, nil)
	remote.On("DeleteLead", mock.Anything, "user-1", mock.Anything).Return(nil)

	s := newSyncedStore(t, &memSnapshot{}, remote)

	lead, err := s.AddLead(validLeadInput())
	require.NoError(t, err)
	require.NoError(t, s.DeleteLead(lead.ID))
	close(release)
	s.Flush()

	// The record must not resurrect, and the orphaned server row must
	// be cleaned up.
	assert.Empty(t, s.Leads())
	remote.AssertCalled(t, "DeleteLead", mock.Anything, "user-1", "srv-9")
}

func TestBulkAddLeadsDedupes(t *testing.T) {
	s, _ := newLocalStore(t)

	existing := validLeadInput()
	existing.ProfileURL = "https://x.com/a"
	_, err := s.AddLead(existing)
	require.NoError(t, err)

	batch := []AddLeadInput{
		{Name: "A again", ProfileURL: "https://x.com/a", Platform: entity.PlatformTwitter, Category: entity.CategoryCreator},
		{Name: "C", ProfileURL: "https://x.com/c", Platform: entity.PlatformTwitter, Category: entity.CategoryCreator},
		{Name: "C again", ProfileURL: "https://x.com/c", Platform: entity.PlatformTwitter, Category: entity.CategoryCreator},
	}
	res, err := s.BulkAddLeads(batch)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, res.Duplicates)

	leads := s.Leads()
	require.Len(t, leads, 2)
	// Imported leads go in front, under bulk temp ids.
	assert.True(t, strings.HasPrefix(leads[0].ID, "lead_bulk_"))
	assert.Equal(t, "C", leads[0].Name)
}

func TestBulkReconcileLeavesOtherPendingRecordsAlone(t *testing.T) {
	remote := new(mockRemote)
	remote.On("InsertLead", mock.Anything, "user-1", mock.Anything).Return(nil, errors.New("down"))

	s := newSyncedStore(t, &memSnapshot{}, remote)

	// A single create that failed remotely: its temp record stays.
	single, err := s.AddLead(validLeadInput())
	require.NoError(t, err)
	s.Flush()

	serverRows := []entity.Lead{
		{ID: "srv-a", Name: "A", Status: entity.StatusNew},
		{ID: "srv-b", Name: "B", Status: entity.StatusNew},
	}
	remote.On("InsertLeads", mock.Anything, "user-1", mock.Anything).Return(serverRows, nil)

	_, err = s.BulkAddLeads([]AddLeadInput{
		{Name: "A", ProfileURL: "https://x.com/aa", Platform: entity.PlatformTwitter, Category: entity.CategoryCreator},
		{Name: "B", ProfileURL: "https://x.com/bb", Platform: entity.PlatformTwitter, Category: entity.CategoryCreator},
	})
	require.NoError(t, err)
	s.Flush()

	leads := s.Leads()
	require.Len(t, leads, 3)
	ids := []string{leads[0].ID, leads[1].ID, leads[2].ID}
	assert.Equal(t, []string{"srv-a", "srv-b", single.ID}, ids)
	for _, id := range ids {
		assert.False(t, strings.HasPrefix(id, "lead_bulk_"))
	}
}

func TestUpdateAndDeleteLeadNotFound(t *testing.T) {
	s, _ := newLocalStore(t)

	assert.ErrorIs(t, s.UpdateLead("missing", entity.LeadPatch{}), ErrNotFound)
	assert.ErrorIs(t, s.DeleteLead("missing"), ErrNotFound)
	assert.ErrorIs(t, s.MarkDmSent("missing", "", 0), ErrNotFound)
	assert.ErrorIs(t, s.MarkFollowUpSent("missing"), ErrNotFound)
	assert.ErrorIs(t, s.MarkStatus("missing", entity.StatusReplied), ErrNotFound)
}

func TestMarkDmSentFallsBackToSettingsDays(t *testing.T) {
	s, _ := newLocalStore(t)
	days := 5
	s.UpdateSettings(entity.SettingsPatch{FollowUpDays: &days})

	lead, err := s.AddLead(validLeadInput())
	require.NoError(t, err)
	require.NoError(t, s.MarkDmSent(lead.ID, "", 0))

	got, err := s.Lead(lead.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FollowUpDueDate)
	assert.Equal(t, clock.AddDate(0, 0, 5), *got.FollowUpDueDate)
	assert.Empty(t, got.LastDmText)
}

func TestMarkDmSentMirrorsOnlyChangedColumns(t *testing.T) {
	remote := new(mockRemote)
	remote.On("UpdateLead", mock.Anything, "user-1", "srv-1", mock.Anything).Return(nil)

	snap := snapshotWith(entity.Lead{ID: "srv-1", Name: "Ana", Status: entity.StatusNew, AddedAt: clock})
	s := newSyncedStore(t, snap, remote)

	require.NoError(t, s.MarkDmSent("srv-1", "dm text", 4))
	s.Flush()

	var patch entity.LeadPatch
	for _, c := range remote.Calls {
		if c.Method == "UpdateLead" {
			patch = c.Arguments.Get(3).(entity.LeadPatch)
		}
	}

	require.NotNil(t, patch.Status)
	assert.Equal(t, entity.StatusDmSent, *patch.Status)
	require.NotNil(t, patch.DmSentAt)
	require.NotNil(t, patch.FollowUpDueDate)
	assert.Equal(t, clock.AddDate(0, 0, 4), *patch.FollowUpDueDate)
	require.NotNil(t, patch.LastDmText)
	assert.Equal(t, "dm text", *patch.LastDmText)
	// Untouched fields stay out of the mirror write.
	assert.Nil(t, patch.Name)
	assert.Nil(t, patch.Notes)
	assert.Nil(t, patch.FollowUpSentAt)
}

func TestMarkStatusRejectsUnstorableStatus(t *testing.T) {
	s, _ := newLocalStore(t)
	lead, err := s.AddLead(validLeadInput())
	require.NoError(t, err)

	err = s.MarkStatus(lead.ID, entity.StatusFollowUpDue)
	require.Error(t, err)
	assert.True(t, IsDomainError(err))

	got, _ := s.Lead(lead.ID)
	assert.Equal(t, entity.StatusNew, got.Status)
}

// ─── Startup load ────────────────────────────────────────────────────

func TestLoadReplacesLocalStateAndSeedsDefaults(t *testing.T) {
	remote := new(mockRemote)
	serverLead := entity.Lead{ID: "srv-1", Name: "From server", Status: entity.StatusDmSent, AddedAt: clock}
	remote.On("FetchAll", mock.Anything, "user-1").Return(&RemoteData{Leads: []entity.Lead{serverLead}}, nil)
	remote.On("InsertTemplate", mock.Anything, "user-1", mock.Anything).Return(&entity.Template{ID: "srv-tpl"}, nil)
	remote.On("UpsertSettings", mock.Anything, "user-1", mock.Anything).Return(nil)

	snap := snapshotWith(
		entity.Lead{ID: "stale-1", Name: "Stale", Status: entity.StatusNew},
		entity.Lead{ID: "stale-2", Name: "Staler", Status: entity.StatusNew},
	)
	s := newSyncedStore(t, snap, remote)
	assert.False(t, s.Synced())

	s.Load(context.Background())
	s.Flush()

	leads := s.Leads()
	require.Len(t, leads, 1)
	assert.Equal(t, "srv-1", leads[0].ID)

	// Empty remote template and settings collections are seeded.
	assert.Len(t, s.Templates(), 2)
	assert.Equal(t, entity.DefaultFollowUpDays, s.Settings().FollowUpDays)
	remote.AssertNumberOfCalls(t, "InsertTemplate", 2)
	remote.AssertNumberOfCalls(t, "UpsertSettings", 1)
	assert.True(t, s.Synced())

	// Load is one-shot: a second call must not refetch or re-seed.
	s.Load(context.Background())
	s.Flush()
	remote.AssertNumberOfCalls(t, "FetchAll", 1)
}

func TestLoadDoesNotSeedWhenRemoteHasData(t *testing.T) {
	remote := new(mockRemote)
	tpl := entity.Template{ID: "srv-tpl-1", Name: "Mine", Type: entity.TemplateDM, Content: "Hi [Name]"}
	settings := entity.Settings{GeminiAPIKey: "key", ServiceDescription: "svc", FollowUpDays: 7}
	remote.On("FetchAll", mock.Anything, "user-1").Return(&RemoteData{
		Templates: []entity.Template{tpl},
		Settings:  &settings,
	}, nil)

	s := newSyncedStore(t, &memSnapshot{}, remote)
	s.Load(context.Background())
	s.Flush()

	require.Len(t, s.Templates(), 1)
	assert.Equal(t, "srv-tpl-1", s.Templates()[0].ID)
	assert.Equal(t, 7, s.Settings().FollowUpDays)
	remote.AssertNotCalled(t, "InsertTemplate", mock.Anything, mock.Anything, mock.Anything)
	remote.AssertNotCalled(t, "UpsertSettings", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, s.Leads())
}

func TestLoadFailureKeepsLocalSnapshot(t *testing.T) {
	remote := new(mockRemote)
	remote.On("FetchAll", mock.Anything, "user-1").Return(nil, errors.New("network down"))

	snap := snapshotWith(entity.Lead{ID: "local-1", Name: "Offline", Status: entity.StatusNew})
	s := newSyncedStore(t, snap, remote)
	rec := &opRecorder{}
	s.RemoteErrorHook = rec.record

	s.Load(context.Background())

	leads := s.Leads()
	require.Len(t, leads, 1)
	assert.Equal(t, "local-1", leads[0].ID)
	assert.True(t, s.Synced())
	assert.Contains(t, rec.all(), "fetch_all")
}

func TestLocalOnlyStoreNeverTouchesRemote(t *testing.T) {
	remote := new(mockRemote)
	snap := &memSnapshot{}
	// A repository without a user id means local-only.
	s := NewStore(snap, remote, "")
	s.now = func() time.Time { return clock }

	s.Load(context.Background())
	lead, err := s.AddLead(validLeadInput())
	require.NoError(t, err)
	require.NoError(t, s.MarkDmSent(lead.ID, "dm", 0))
	require.NoError(t, s.DeleteLead(lead.ID))
	s.UpdateSettings(entity.SettingsPatch{})
	s.Flush()

	assert.Empty(t, remote.Calls)
	assert.True(t, s.Synced())
}

// ─── Templates and settings ──────────────────────────────────────────

func TestAddTemplateReconcilesServerID(t *testing.T) {
	remote := new(mockRemote)
	server := entity.Template{ID: "srv-tpl-1", Name: "Cold DM", Type: entity.TemplateDM, Content: "Hey [Name]"}
	remote.On("InsertTemplate", mock.Anything, "user-1", mock.Anything).Return(&server, nil)

	s := newSyncedStore(t, &memSnapshot{}, remote)

	tpl, err := s.AddTemplate(AddTemplateInput{Name: "Cold DM", Type: entity.TemplateDM, Content: "Hey [Name]"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tpl.ID, "tpl_"))
	s.Flush()

	var found bool
	for _, got := range s.Templates() {
		assert.NotEqual(t, tpl.ID, got.ID)
		if got.ID == "srv-tpl-1" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestUpdateSettingsMirrorsRemotely(t *testing.T) {
	remote := new(mockRemote)
	remote.On("UpsertSettings", mock.Anything, "user-1", mock.Anything).Return(nil)

	s := newSyncedStore(t, &memSnapshot{}, remote)

	key := "new-key"
	s.UpdateSettings(entity.SettingsPatch{GeminiAPIKey: &key})
	s.Flush()

	assert.Equal(t, "new-key", s.Settings().GeminiAPIKey)
	remote.AssertNumberOfCalls(t, "UpsertSettings", 1)
}

// ─── Snapshot persistence ────────────────────────────────────────────

func TestStateSurvivesRestartThroughSnapshot(t *testing.T) {
	snap := &memSnapshot{}
	s := NewStore(snap, nil, "")
	s.now = func() time.Time { return clock }

	lead, err := s.AddLead(validLeadInput())
	require.NoError(t, err)
	require.NoError(t, s.MarkDmSent(lead.ID, "hello", 3))

	// A fresh store on the same snapshot sees the same state.
	reopened := NewStore(snap, nil, "")
	got, err := reopened.Lead(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDmSent, got.Status)
	assert.Equal(t, "hello", got.LastDmText)
}
