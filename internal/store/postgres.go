// Package store implements lead persistence on PostgreSQL. Simple CRUD
// uses raw SQL; the filtered listing is assembled with squirrel.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rsharma-dev/leadbook/internal/core"
)

// DB is the subset of pgxpool.Pool the store needs. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres persists leads and their change history.
type Postgres struct {
	db DB
}

func New(db DB) *Postgres {
	return &Postgres{db: db}
}

const leadColumns = `id, owner_id, full_name, email, phone, city, property_type, bhk,
       purpose, budget_min, budget_max, timeline, source, notes, tags, status,
       created_at, updated_at`

const insertLeadSQL = `
INSERT INTO buyers (id, owner_id, full_name, email, phone, city, property_type, bhk,
                    purpose, budget_min, budget_max, timeline, source, notes, tags, status,
                    created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
RETURNING ` + leadColumns

const updateLeadSQL = `
UPDATE buyers
SET full_name = $2, email = $3, phone = $4, city = $5, property_type = $6, bhk = $7,
    purpose = $8, budget_min = $9, budget_max = $10, timeline = $11, source = $12,
    notes = $13, tags = $14, status = $15, updated_at = $16
WHERE id = $1
RETURNING ` + leadColumns

const getLeadSQL = `SELECT ` + leadColumns + ` FROM buyers WHERE id = $1`

const deleteLeadSQL = `DELETE FROM buyers WHERE id = $1`

const insertHistorySQL = `
INSERT INTO buyer_history (id, buyer_id, changed_by, changed_at, diff)
VALUES ($1, $2, $3, $4, $5)`

const historyForLeadSQL = `
SELECT id, buyer_id, changed_by, changed_at, diff
FROM buyer_history
WHERE buyer_id = $1
ORDER BY changed_at DESC
LIMIT $2`

// Insert persists a new lead, assigning id and timestamps.
func (p *Postgres) Insert(ctx context.Context, lead core.Lead) (core.Lead, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	lead.ID = uuid.New()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	row := p.db.QueryRow(ctx, insertLeadSQL,
		lead.ID, lead.OwnerID, lead.FullName, lead.Email, lead.Phone, lead.City,
		lead.PropertyType, lead.Bhk, lead.Purpose, lead.BudgetMin, lead.BudgetMax,
		lead.Timeline, lead.Source, lead.Notes, lead.Tags, lead.Status,
		lead.CreatedAt, lead.UpdatedAt)

	saved, err := scanLead(row)
	if err != nil {
		return core.Lead{}, mapError(err, "lead", lead.ID)
	}
	return saved, nil
}

// Update replaces every mutable column of an existing lead.
func (p *Postgres) Update(ctx context.Context, id uuid.UUID, lead core.Lead) (core.Lead, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	row := p.db.QueryRow(ctx, updateLeadSQL,
		id, lead.FullName, lead.Email, lead.Phone, lead.City, lead.PropertyType,
		lead.Bhk, lead.Purpose, lead.BudgetMin, lead.BudgetMax, lead.Timeline,
		lead.Source, lead.Notes, lead.Tags, lead.Status, now)

	saved, err := scanLead(row)
	if err != nil {
		return core.Lead{}, mapError(err, "lead", id)
	}
	return saved, nil
}

// Delete removes a lead. Its history rows go with it via ON DELETE CASCADE.
func (p *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, deleteLeadSQL, id)
	if err != nil {
		return mapError(err, "lead", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lead %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// Get returns a lead by primary key.
func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (core.Lead, error) {
	lead, err := scanLead(p.db.QueryRow(ctx, getLeadSQL, id))
	if err != nil {
		return core.Lead{}, mapError(err, "lead", id)
	}
	return lead, nil
}

// Query returns one page of leads matching the filter plus the total count.
func (p *Postgres) Query(ctx context.Context, f core.Filter, page core.Page, sort core.Sort) ([]core.Lead, int, error) {
	where := filterConditions(f)

	countSQL, countArgs, err := squirrel.Select("count(*)").
		From("buyers").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := p.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	if page.PageSize <= 0 {
		page.PageSize = core.DefaultPageSize
	}
	if page.Page <= 0 {
		page.Page = 1
	}
	offset := (page.Page - 1) * page.PageSize

	listSQL, listArgs, err := squirrel.Select(leadColumns).
		From("buyers").
		Where(where).
		OrderBy(orderClause(sort)).
		Limit(uint64(page.PageSize)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := p.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	return leads, total, nil
}

// InsertMany persists leads one at a time. The batch stops at the first
// failure, returning the leads inserted so far alongside the error.
func (p *Postgres) InsertMany(ctx context.Context, leads []core.Lead) ([]core.Lead, error) {
	inserted := make([]core.Lead, 0, len(leads))
	for i, lead := range leads {
		saved, err := p.Insert(ctx, lead)
		if err != nil {
			return inserted, fmt.Errorf("batch item %d: %w", i, err)
		}
		inserted = append(inserted, saved)
	}
	return inserted, nil
}

// InsertHistory appends one change record. The diff is stored as jsonb.
func (p *Postgres) InsertHistory(ctx context.Context, rec core.ChangeRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.ChangedAt.IsZero() {
		rec.ChangedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	diff, err := json.Marshal(rec.Diff)
	if err != nil {
		return fmt.Errorf("marshal diff: %w", err)
	}

	if _, err := p.db.Exec(ctx, insertHistorySQL,
		rec.ID, rec.LeadID, rec.ChangedBy, rec.ChangedAt, diff); err != nil {
		return mapError(err, "history", rec.ID)
	}
	return nil
}

// HistoryForLead returns the newest change records for a lead.
func (p *Postgres) HistoryForLead(ctx context.Context, leadID uuid.UUID, limit int) ([]core.ChangeRecord, error) {
	rows, err := p.db.Query(ctx, historyForLeadSQL, leadID, limit)
	if err != nil {
		return nil, fmt.Errorf("lead history: %w", err)
	}
	defer rows.Close()

	var recs []core.ChangeRecord
	for rows.Next() {
		var rec core.ChangeRecord
		var diff []byte
		if err := rows.Scan(&rec.ID, &rec.LeadID, &rec.ChangedBy, &rec.ChangedAt, &diff); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if err := json.Unmarshal(diff, &rec.Diff); err != nil {
			return nil, fmt.Errorf("decode diff: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	if recs == nil {
		recs = []core.ChangeRecord{}
	}
	return recs, nil
}

// filterConditions translates a core.Filter into squirrel conditions. The
// search term matches name, phone and email case-insensitively.
func filterConditions(f core.Filter) squirrel.And {
	cond := squirrel.And{}
	if f.City != "" {
		cond = append(cond, squirrel.Eq{"city": f.City})
	}
	if f.PropertyType != "" {
		cond = append(cond, squirrel.Eq{"property_type": f.PropertyType})
	}
	if f.Status != "" {
		cond = append(cond, squirrel.Eq{"status": f.Status})
	}
	if f.Timeline != "" {
		cond = append(cond, squirrel.Eq{"timeline": f.Timeline})
	}
	if f.Search != "" {
		like := "%" + escapeLike(f.Search) + "%"
		cond = append(cond, squirrel.Or{
			squirrel.ILike{"full_name": like},
			squirrel.ILike{"phone": like},
			squirrel.ILike{"email": like},
		})
	}
	return cond
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// sortColumns whitelists the columns the API may order by.
var sortColumns = map[string]string{
	"full_name":  "full_name",
	"city":       "city",
	"status":     "status",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func orderClause(sort core.Sort) string {
	col, ok := sortColumns[sort.Column]
	if !ok {
		return "updated_at DESC"
	}
	if sort.Desc {
		return col + " DESC"
	}
	return col + " ASC"
}

func scanLeads(rows pgx.Rows) ([]core.Lead, error) {
	var leads []core.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if leads == nil {
		leads = []core.Lead{}
	}
	return leads, nil
}

func scanLead(row pgx.Row) (core.Lead, error) {
	var lead core.Lead
	err := row.Scan(&lead.ID, &lead.OwnerID, &lead.FullName, &lead.Email, &lead.Phone,
		&lead.City, &lead.PropertyType, &lead.Bhk, &lead.Purpose, &lead.BudgetMin,
		&lead.BudgetMax, &lead.Timeline, &lead.Source, &lead.Notes, &lead.Tags,
		&lead.Status, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return core.Lead{}, err
	}
	return lead, nil
}

// mapError converts pgx/pgconn errors into core sentinels.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, core.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, core.ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, core.ErrNotFound)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
