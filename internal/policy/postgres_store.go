package policy

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists policy documents in PostgreSQL. Coverage tiers are
// stored as a JSONB array so the loader can round-trip extractor output
// without schema churn.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a policy store over an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("policy: db handle cannot be nil")
	}
	return &PostgresStore{db: db}
}

// EnsureSchema creates the policies table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS policies (
			policy_number    TEXT PRIMARY KEY,
			company_name     TEXT NOT NULL DEFAULT '',
			policy_holder    TEXT NOT NULL DEFAULT '',
			effective_from   DATE,
			effective_to     DATE,
			coverage_details JSONB NOT NULL DEFAULT '[]',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("%w: ensure schema: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) FindByNumber(ctx context.Context, number string) (*Policy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT policy_number, company_name, policy_holder, effective_from, effective_to, coverage_details
		FROM policies WHERE policy_number = $1`, number)

	var p Policy
	var coverage []byte
	err := row.Scan(&p.PolicyNumber, &p.CompanyName, &p.PolicyHolder, &p.EffectiveFrom, &p.EffectiveTo, &coverage)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find policy %s: %v", ErrStoreUnavailable, number, err)
	}
	if err := json.Unmarshal(coverage, &p.CoverageDetails); err != nil {
		return nil, fmt.Errorf("policy: decode coverage for %s: %w", number, err)
	}
	return &p, nil
}

func (s *PostgresStore) ListNumbers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT policy_number FROM policies ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("%w: list policy numbers: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("%w: scan policy number: %v", ErrStoreUnavailable, err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list policy numbers: %v", ErrStoreUnavailable, err)
	}
	return numbers, nil
}

func (s *PostgresStore) ListSpans(ctx context.Context) ([]Span, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT policy_number, effective_from, effective_to FROM policies ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("%w: list policy spans: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var spans []Span
	for rows.Next() {
		var span Span
		if err := rows.Scan(&span.PolicyNumber, &span.EffectiveFrom, &span.EffectiveTo); err != nil {
			return nil, fmt.Errorf("%w: scan policy span: %v", ErrStoreUnavailable, err)
		}
		spans = append(spans, span)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list policy spans: %v", ErrStoreUnavailable, err)
	}
	return spans, nil
}

func (s *PostgresStore) InsertIfAbsent(ctx context.Context, p *Policy) (*Policy, bool, error) {
	if p == nil || p.PolicyNumber == "" {
		return nil, false, fmt.Errorf("policy: insert requires a policy_number")
	}
	coverage, err := json.Marshal(p.CoverageDetails)
	if err != nil {
		return nil, false, fmt.Errorf("policy: encode coverage for %s: %w", p.PolicyNumber, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO policies (policy_number, company_name, policy_holder, effective_from, effective_to, coverage_details)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (policy_number) DO NOTHING`,
		p.PolicyNumber, p.CompanyName, p.PolicyHolder, p.EffectiveFrom, p.EffectiveTo, coverage)
	if err != nil {
		return nil, false, fmt.Errorf("%w: insert policy %s: %v", ErrStoreUnavailable, p.PolicyNumber, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("%w: insert policy %s: %v", ErrStoreUnavailable, p.PolicyNumber, err)
	}
	if affected == 0 {
		existing, err := s.FindByNumber(ctx, p.PolicyNumber)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return p, true, nil
}

func (s *PostgresStore) Delete(ctx context.Context, number string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM policies WHERE policy_number = $1`, number)
	if err != nil {
		return false, fmt.Errorf("%w: delete policy %s: %v", ErrStoreUnavailable, number, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: delete policy %s: %v", ErrStoreUnavailable, number, err)
	}
	return affected > 0, nil
}
