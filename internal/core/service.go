package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rsharma-dev/leadbook/internal/logging"
	"github.com/rsharma-dev/leadbook/internal/metrics"
)

// Store is the persistence collaborator the service depends on. The core
// never assumes transactional atomicity across InsertMany and the history
// entries that follow it; a partial-success batch insert is tolerated and
// history is only written for leads that actually obtained an id.
type Store interface {
	Insert(ctx context.Context, lead Lead) (Lead, error)
	Update(ctx context.Context, id uuid.UUID, lead Lead) (Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (Lead, error)
	// Query returns one page of leads plus the total count for the filter.
	Query(ctx context.Context, f Filter, p Page, s Sort) ([]Lead, int, error)
	// InsertMany may succeed partially: the returned slice holds the leads
	// that obtained ids, even when err is non-nil.
	InsertMany(ctx context.Context, leads []Lead) ([]Lead, error)
	InsertHistory(ctx context.Context, rec ChangeRecord) error
	HistoryForLead(ctx context.Context, leadID uuid.UUID, limit int) ([]ChangeRecord, error)
}

// DefaultHistoryLimit bounds history listings when the caller does not ask
// for a specific number of entries.
const DefaultHistoryLimit = 50

// Service orchestrates the lead pipeline against the storage collaborator.
// All mutation paths take the requesting identity explicitly; there is no
// ambient session state.
type Service struct {
	store   Store
	metrics *metrics.LeadMetrics
}

// NewService creates a Service. Metrics may be nil; every observation is
// nil-safe.
func NewService(store Store, m *metrics.LeadMetrics) *Service {
	return &Service{store: store, metrics: m}
}

// CreateLead validates a candidate, persists it owned by actor and records
// the "created" marker history entry.
func (s *Service) CreateLead(ctx context.Context, actor uuid.UUID, c Candidate) (Lead, error) {
	lead, errs := ValidateCandidate(c)
	if len(errs) > 0 {
		return Lead{}, errs
	}
	lead.OwnerID = actor

	created, err := s.store.Insert(ctx, lead)
	if err != nil {
		return Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	s.metrics.ObserveMutation("create")

	s.appendHistory(ctx, created.ID, actor, MarkerCreated())
	return created, nil
}

// UpdateLead re-validates the full candidate, checks ownership against the
// requesting identity, persists the new version and records a history entry
// iff the diff is non-empty. The computed diff is returned either way.
func (s *Service) UpdateLead(ctx context.Context, actor, id uuid.UUID, c Candidate) (Lead, Diff, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Lead{}, nil, err
	}
	if current.OwnerID != actor {
		return Lead{}, nil, ErrNotOwner
	}

	lead, errs := ValidateCandidate(c)
	if len(errs) > 0 {
		return Lead{}, nil, errs
	}
	lead.ID = current.ID
	lead.OwnerID = current.OwnerID
	lead.CreatedAt = current.CreatedAt

	diff := DiffLeads(current, lead)

	updated, err := s.store.Update(ctx, id, lead)
	if err != nil {
		return Lead{}, nil, fmt.Errorf("update lead: %w", err)
	}
	s.metrics.ObserveMutation("update")

	if len(diff) > 0 {
		s.appendHistory(ctx, id, actor, diff)
	}
	return updated, diff, nil
}

// DeleteLead removes a lead after checking ownership. Cascading deletion of
// its history is the store's responsibility.
func (s *Service) DeleteLead(ctx context.Context, actor, id uuid.UUID) error {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.OwnerID != actor {
		return ErrNotOwner
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	s.metrics.ObserveMutation("delete")
	return nil
}

// GetLead fetches a single lead by id.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (Lead, error) {
	return s.store.Get(ctx, id)
}

// ListLeads returns one page of leads matching the filter plus the total
// match count.
func (s *Service) ListLeads(ctx context.Context, f Filter, p Page, sort Sort) ([]Lead, int, error) {
	return s.store.Query(ctx, f, p, sort)
}

// History returns the newest ChangeRecords for a lead, most recent first.
func (s *Service) History(ctx context.Context, leadID uuid.UUID, limit int) ([]ChangeRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.HistoryForLead(ctx, leadID, limit)
}

// ImportResult pairs the reconciliation report with the leads that were
// actually persisted. Inserted can be shorter than the report's valid set
// when the batch insert succeeded only partially.
type ImportResult struct {
	Report   *ImportReport `json:"report"`
	Inserted []Lead        `json:"inserted"`
}

// ImportLeads reconciles a raw CSV batch and persists the valid subset in
// one batch call, owned by actor. The report is complete before the first
// store call, so batch precondition failures have zero side effects.
// Each persisted lead gets an "imported" marker history entry.
func (s *Service) ImportLeads(ctx context.Context, actor uuid.UUID, raw []byte) (*ImportResult, error) {
	report, err := Reconcile(raw)
	if err != nil {
		s.metrics.ObserveImport("rejected", 0, 0)
		return nil, err
	}

	valid := report.ValidLeads()
	for i := range valid {
		valid[i].OwnerID = actor
	}

	result := &ImportResult{Report: report}
	if len(valid) == 0 {
		s.metrics.ObserveImport("empty", 0, report.Summary.InvalidCount)
		return result, nil
	}

	inserted, err := s.store.InsertMany(ctx, valid)
	result.Inserted = inserted

	// History only for rows that obtained an id, even on partial success.
	for _, lead := range inserted {
		s.appendHistory(ctx, lead.ID, actor, MarkerImported())
	}

	if err != nil {
		s.metrics.ObserveImport("partial", len(inserted), report.Summary.InvalidCount)
		return result, fmt.Errorf("insert batch: %w", err)
	}

	s.metrics.ObserveImport("completed", len(inserted), report.Summary.InvalidCount)
	return result, nil
}

// ExportLeads serializes every lead matching the filter to CSV, in the
// listing's default order.
func (s *Service) ExportLeads(ctx context.Context, f Filter) ([]byte, error) {
	const exportPageSize = 1000

	var all []Lead
	for page := 1; ; page++ {
		leads, total, err := s.store.Query(ctx, f, Page{Page: page, PageSize: exportPageSize}, Sort{})
		if err != nil {
			return nil, fmt.Errorf("query leads: %w", err)
		}
		all = append(all, leads...)
		if len(all) >= total || len(leads) == 0 {
			break
		}
	}

	return WriteLeads(all)
}

// appendHistory writes an audit entry, logging instead of failing the
// request when the append-only store rejects it.
func (s *Service) appendHistory(ctx context.Context, leadID, actor uuid.UUID, diff Diff) {
	rec := ChangeRecord{LeadID: leadID, ChangedBy: actor, Diff: diff}
	if err := s.store.InsertHistory(ctx, rec); err != nil && !errors.Is(err, context.Canceled) {
		logging.FromContext(ctx).Warn("history append failed", "lead_id", leadID, "error", err)
	}
}
