package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leadpulse/leadpulse/internal/entity"
)

const (
	tempLeadPrefix     = "lead_"
	tempBulkLeadPrefix = "lead_bulk_"
	tempTemplatePrefix = "tpl_"
)

// Store is the synchronization controller. It owns the single
// in-memory AppData copy, applies every mutation optimistically,
// mirrors the result to the local snapshot before the next mutation
// can run, and fires best-effort remote writes in the background.
//
// Single-writer discipline is enforced by the mutex: callers see
// sequential state, remote writes may settle in any order but each one
// only touches the record it targets.
type Store struct {
	mu   sync.Mutex
	data *entity.AppData

	local  SnapshotStore
	remote RemoteRepository
	userID string

	synced      bool
	initialized bool

	now           func() time.Time
	remoteTimeout time.Duration
	pending       sync.WaitGroup

	// RemoteErrorHook, when set before Load, is called with the
	// operation name each time a remote write is dropped.
	RemoteErrorHook func(op string)
}

type BulkImportResult struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
}

// NewStore seeds the in-memory state from the local snapshot. Remote
// sync is active only when both a repository and a user id are given;
// otherwise the store runs local-only and never touches the remote.
func NewStore(local SnapshotStore, remote RemoteRepository, userID string) *Store {
	s := &Store{
		local:         local,
		remote:        remote,
		userID:        userID,
		now:           time.Now,
		remoteTimeout: 15 * time.Second,
	}
	s.data = local.Load()
	s.synced = !s.remoteEnabled()
	return s
}

func (s *Store) remoteEnabled() bool {
	return s.remote != nil && s.userID != ""
}

// Load performs the one-time startup bulk load. Remote state replaces
// (not merges) whatever the local snapshot held; empty remote Template
// and Settings collections are seeded with the defaults. Repeated
// calls are no-ops, so mount/retry cycles cannot re-seed.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	if !s.remoteEnabled() {
		s.synced = true
		s.mu.Unlock()
		return
	}
	s.synced = false
	s.mu.Unlock()

	remoteData, err := s.remote.FetchAll(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Best effort done: keep the local snapshot and carry on.
		log.Printf("⚠️ remote load failed, staying on local data: %v", err)
		s.remoteError("fetch_all")
		s.synced = true
		return
	}

	leads := remoteData.Leads
	if leads == nil {
		leads = []entity.Lead{}
	}

	templates := remoteData.Templates
	if len(templates) == 0 {
		templates = entity.DefaultTemplates(s.now())
		for _, tpl := range templates {
			seed := tpl
			s.goRemote("seed_template", func(ctx context.Context) error {
				_, err := s.remote.InsertTemplate(ctx, s.userID, seed)
				return err
			})
		}
	}

	settings := entity.DefaultSettings()
	if remoteData.Settings != nil {
		settings = *remoteData.Settings
	} else {
		defaults := settings
		s.goRemote("seed_settings", func(ctx context.Context) error {
			return s.remote.UpsertSettings(ctx, s.userID, entity.SettingsPatch{
				GeminiAPIKey:       &defaults.GeminiAPIKey,
				ServiceDescription: &defaults.ServiceDescription,
				FollowUpDays:       &defaults.FollowUpDays,
			})
		})
	}

	s.data = &entity.AppData{Leads: leads, Templates: templates, Settings: settings}
	s.saveLocalLocked()
	s.synced = true
}

// ─── Leads ───────────────────────────────────────────────────────────

// AddLead creates a lead under a temporary id and returns it
// immediately. If remote sync is active the insert runs in the
// background and the temp record is swapped for the server row once
// the authoritative id comes back.
func (s *Store) AddLead(input AddLeadInput) (entity.Lead, error) {
	if errs := ValidateAddLeadInput(input); len(errs) > 0 {
		return entity.Lead{}, validationDomainError(errs)
	}

	s.mu.Lock()
	now := s.now()
	lead := entity.Lead{
		ID:         fmt.Sprintf("%s%d_%s", tempLeadPrefix, now.UnixMilli(), shortID()),
		Name:       input.Name,
		ProfileURL: input.ProfileURL,
		Platform:   input.Platform,
		Category:   input.Category,
		Notes:      input.Notes,
		Status:     entity.StatusNew,
		AddedAt:    now,
	}
	s.data.Leads = append([]entity.Lead{lead}, s.data.Leads...)
	s.saveLocalLocked()
	s.mu.Unlock()

	tempID := lead.ID
	s.goRemote("insert_lead", func(ctx context.Context) error {
		inserted, err := s.remote.InsertLead(ctx, s.userID, lead)
		if err != nil {
			return err
		}
		if !s.reconcileLead(tempID, *inserted) {
			// Deleted while the insert was in flight. Remove the
			// server row instead of resurrecting the record.
			return s.remote.DeleteLead(ctx, s.userID, inserted.ID)
		}
		return nil
	})

	return lead, nil
}

// BulkAddLeads dedupes the batch against existing leads (and against
// itself), inserts the survivors under bulk temp ids and reports the
// counts synchronously.
func (s *Store) BulkAddLeads(inputs []AddLeadInput) (BulkImportResult, error) {
	s.mu.Lock()
	res := DedupeLeads(s.data.Leads, inputs)
	now := s.now()

	newLeads := make([]entity.Lead, len(res.Accepted))
	for i, in := range res.Accepted {
		newLeads[i] = entity.Lead{
			ID:         fmt.Sprintf("%s%d_%d_%s", tempBulkLeadPrefix, now.UnixMilli(), i, shortID()),
			Name:       in.Name,
			ProfileURL: in.ProfileURL,
			Platform:   in.Platform,
			Category:   in.Category,
			Notes:      in.Notes,
			Status:     entity.StatusNew,
			AddedAt:    now,
		}
	}
	s.data.Leads = append(append([]entity.Lead{}, newLeads...), s.data.Leads...)
	s.saveLocalLocked()
	s.mu.Unlock()

	if len(newLeads) > 0 {
		batch := append([]entity.Lead{}, newLeads...)
		s.goRemote("bulk_insert_leads", func(ctx context.Context) error {
			inserted, err := s.remote.InsertLeads(ctx, s.userID, batch)
			if err != nil {
				// Whole batch failed: the temp records stay local-only.
				return err
			}
			if len(inserted) > 0 {
				s.reconcileBulkLeads(inserted)
			}
			return nil
		})
	}

	return BulkImportResult{Imported: res.Imported, Duplicates: res.Duplicates}, nil
}

// UpdateLead applies a partial update locally and mirrors the changed
// fields remotely, fire-and-forget. The id never changes, so there is
// nothing to reconcile.
func (s *Store) UpdateLead(id string, patch entity.LeadPatch) error {
	s.mu.Lock()
	idx := s.leadIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.data.Leads[idx] = patch.Apply(s.data.Leads[idx])
	s.saveLocalLocked()
	s.mu.Unlock()

	s.goRemote("update_lead", func(ctx context.Context) error {
		return s.remote.UpdateLead(ctx, s.userID, id, patch)
	})
	return nil
}

func (s *Store) DeleteLead(id string) error {
	s.mu.Lock()
	idx := s.leadIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.data.Leads = append(s.data.Leads[:idx], s.data.Leads[idx+1:]...)
	s.saveLocalLocked()
	s.mu.Unlock()

	s.goRemote("delete_lead", func(ctx context.Context) error {
		return s.remote.DeleteLead(ctx, s.userID, id)
	})
	return nil
}

// MarkDmSent records the outbound DM and schedules the follow-up.
// followUpDays <= 0 falls back to the current settings value.
func (s *Store) MarkDmSent(id, dmText string, followUpDays int) error {
	s.mu.Lock()
	if followUpDays <= 0 {
		followUpDays = s.data.Settings.FollowUpDays
	}
	idx := s.leadIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	before := s.data.Leads[idx]
	after := MarkDmSent(before, dmText, followUpDays, s.now())
	s.data.Leads[idx] = after
	patch := transitionPatch(before, after)
	s.saveLocalLocked()
	s.mu.Unlock()

	s.goRemote("update_lead", func(ctx context.Context) error {
		return s.remote.UpdateLead(ctx, s.userID, id, patch)
	})
	return nil
}

func (s *Store) MarkFollowUpSent(id string) error {
	s.mu.Lock()
	idx := s.leadIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	before := s.data.Leads[idx]
	after := MarkFollowUpSent(before, s.now())
	s.data.Leads[idx] = after
	patch := transitionPatch(before, after)
	s.saveLocalLocked()
	s.mu.Unlock()

	s.goRemote("update_lead", func(ctx context.Context) error {
		return s.remote.UpdateLead(ctx, s.userID, id, patch)
	})
	return nil
}

func (s *Store) MarkStatus(id string, status entity.LeadStatus) error {
	s.mu.Lock()
	idx := s.leadIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	before := s.data.Leads[idx]
	after, err := MarkStatus(before, status)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.data.Leads[idx] = after
	patch := transitionPatch(before, after)
	s.saveLocalLocked()
	s.mu.Unlock()

	s.goRemote("update_lead", func(ctx context.Context) error {
		return s.remote.UpdateLead(ctx, s.userID, id, patch)
	})
	return nil
}

// ─── Templates ───────────────────────────────────────────────────────

func (s *Store) AddTemplate(input AddTemplateInput) (entity.Template, error) {
	if errs := ValidateAddTemplateInput(input); len(errs) > 0 {
		return entity.Template{}, validationDomainError(errs)
	}

	s.mu.Lock()
	now := s.now()
	tpl := entity.Template{
		ID:        fmt.Sprintf("%s%d_%s", tempTemplatePrefix, now.UnixMilli(), shortID()),
		Name:      input.Name,
		Type:      input.Type,
		Content:   input.Content,
		CreatedAt: now,
	}
	s.data.Templates = append(s.data.Templates, tpl)
	s.saveLocalLocked()
	s.mu.Unlock()

	tempID := tpl.ID
	s.goRemote("insert_template", func(ctx context.Context) error {
		inserted, err := s.remote.InsertTemplate(ctx, s.userID, tpl)
		if err != nil {
			return err
		}
		if !s.reconcileTemplate(tempID, *inserted) {
			return s.remote.DeleteTemplate(ctx, s.userID, inserted.ID)
		}
		return nil
	})

	return tpl, nil
}

func (s *Store) UpdateTemplate(id string, patch entity.TemplatePatch) error {
	s.mu.Lock()
	idx := s.templateIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.data.Templates[idx] = patch.Apply(s.data.Templates[idx])
	s.saveLocalLocked()
	s.mu.Unlock()

	s.goRemote("update_template", func(ctx context.Context) error {
		return s.remote.UpdateTemplate(ctx, s.userID, id, patch)
	})
	return nil
}

func (s *Store) DeleteTemplate(id string) error {
	s.mu.Lock()
	idx := s.templateIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.data.Templates = append(s.data.Templates[:idx], s.data.Templates[idx+1:]...)
	s.saveLocalLocked()
	s.mu.Unlock()

	s.goRemote("delete_template", func(ctx context.Context) error {
		return s.remote.DeleteTemplate(ctx, s.userID, id)
	})
	return nil
}

// ─── Settings ────────────────────────────────────────────────────────

func (s *Store) UpdateSettings(patch entity.SettingsPatch) {
	s.mu.Lock()
	s.data.Settings = patch.Apply(s.data.Settings)
	s.saveLocalLocked()
	s.mu.Unlock()

	s.goRemote("upsert_settings", func(ctx context.Context) error {
		return s.remote.UpsertSettings(ctx, s.userID, patch)
	})
}

// ─── Read views ──────────────────────────────────────────────────────

func (s *Store) Leads() []entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Lead{}, s.data.Leads...)
}

func (s *Store) Lead(id string) (entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.leadIndexLocked(id)
	if idx < 0 {
		return entity.Lead{}, ErrNotFound
	}
	return s.data.Leads[idx], nil
}

func (s *Store) Templates() []entity.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Template{}, s.data.Templates...)
}

func (s *Store) Settings() entity.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Settings
}

// FollowUpDue is recomputed against the wall clock on every call; it
// is never cached or persisted.
func (s *Store) FollowUpDue() []entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FollowUpDue(s.data.Leads, s.now())
}

func (s *Store) FollowUpUpcoming() []entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FollowUpUpcoming(s.data.Leads, s.now())
}

func (s *Store) NewLeadsReadyToDm() []entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ReadyToDm(s.data.Leads)
}

// Synced reports whether the startup bulk load has settled (or remote
// sync is not configured at all).
func (s *Store) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// Flush blocks until every in-flight remote write has settled. Used on
// shutdown and by tests.
func (s *Store) Flush() {
	s.pending.Wait()
}

// ─── Internals ───────────────────────────────────────────────────────

// reconcileLead swaps a pending temp-id record for the authoritative
// server record. Returns false when the record is gone, i.e. it was
// deleted while its creation was in flight.
func (s *Store) reconcileLead(tempID string, real entity.Lead) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.leadIndexLocked(tempID)
	if idx < 0 {
		return false
	}
	s.data.Leads[idx] = real
	s.saveLocalLocked()
	return true
}

// reconcileBulkLeads replaces every still-pending bulk-imported record
// with the server rows, without disturbing unrelated pending records.
func (s *Store) reconcileBulkLeads(inserted []entity.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]entity.Lead, 0, len(s.data.Leads))
	for _, l := range s.data.Leads {
		if !strings.HasPrefix(l.ID, tempBulkLeadPrefix) {
			kept = append(kept, l)
		}
	}
	s.data.Leads = append(append([]entity.Lead{}, inserted...), kept...)
	s.saveLocalLocked()
}

func (s *Store) reconcileTemplate(tempID string, real entity.Template) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.templateIndexLocked(tempID)
	if idx < 0 {
		return false
	}
	s.data.Templates[idx] = real
	s.saveLocalLocked()
	return true
}

func (s *Store) leadIndexLocked(id string) int {
	for i := range s.data.Leads {
		if s.data.Leads[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) templateIndexLocked(id string) int {
	for i := range s.data.Templates {
		if s.data.Templates[i].ID == id {
			return i
		}
	}
	return -1
}

// saveLocalLocked mirrors the state to the local snapshot. Runs under
// the mutex so the mirror is never more than one mutation behind.
func (s *Store) saveLocalLocked() {
	if err := s.local.Save(s.data); err != nil {
		log.Printf("⚠️ local snapshot save failed: %v", err)
	}
}

// goRemote runs a remote write in the background. Failures are logged
// and dropped: the optimistic local state stands uncorrected.
func (s *Store) goRemote(op string, fn func(ctx context.Context) error) {
	if !s.remoteEnabled() {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.remoteTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("⚠️ remote %s failed: %v", op, err)
			s.remoteError(op)
		}
	}()
}

func (s *Store) remoteError(op string) {
	if s.RemoteErrorHook != nil {
		s.RemoteErrorHook(op)
	}
}

// transitionPatch diffs the fields a lifecycle transition may touch,
// so only the changed columns travel to the remote store.
func transitionPatch(before, after entity.Lead) entity.LeadPatch {
	var p entity.LeadPatch
	if after.Status != before.Status {
		st := after.Status
		p.Status = &st
	}
	if after.DmSentAt != before.DmSentAt {
		p.DmSentAt = after.DmSentAt
	}
	if after.FollowUpSentAt != before.FollowUpSentAt {
		p.FollowUpSentAt = after.FollowUpSentAt
	}
	if after.RepliedAt != before.RepliedAt {
		p.RepliedAt = after.RepliedAt
	}
	if after.FollowUpDueDate != before.FollowUpDueDate {
		p.FollowUpDueDate = after.FollowUpDueDate
	}
	if after.LastDmText != before.LastDmText {
		v := after.LastDmText
		p.LastDmText = &v
	}
	return p
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
