package visits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver
	"github.com/nadine-ai/resubmission-copilot/pkg/logging"
)

// ErrSourceUnavailable wraps connectivity failures against the claims
// replica after the retry budget is spent.
var ErrSourceUnavailable = errors.New("visits: source unavailable")

// Source is the narrow contract against the relational claims replica.
type Source interface {
	// VisitRejections returns the rejected service rows for one visit.
	// An empty slice means the visit has no claim rejections.
	VisitRejections(ctx context.Context, visitID string) ([]Row, error)
	// VisitIDsBetween lists distinct visit IDs with rejections in the
	// inclusive date range.
	VisitIDsBetween(ctx context.Context, from, to string) ([]string, error)
}

const rejectionsQuery = `
SELECT VisitID, Contract, Service_Name, ResponseSubmitted, Start_Date,
       Med_Dept, Specialty_Name, Diagnose_Name, [ICD10 Code], Rejection_Reason,
       ContractorClientPolicyNumber, ContractorClientPolicyNumber2
FROM dbo.ClaimRejections
WHERE VisitID = @p1`

const visitIDsQuery = `
SELECT DISTINCT VisitID
FROM dbo.ClaimRejections
WHERE Start_Date >= @p1 AND Start_Date < DATEADD(day, 1, @p2)
ORDER BY VisitID`

// SQLSource reads visit data from the SQL Server replica. The replica
// drops connections during its nightly refresh, so every query gets
// exactly two attempts separated by a fixed delay. No backoff growth, no
// jitter, no third attempt.
type SQLSource struct {
	db         *sql.DB
	logger     *logging.Logger
	retryDelay time.Duration
}

// DefaultRetryDelay is how long the source waits before its single retry.
const DefaultRetryDelay = 5 * time.Minute

// NewSQLSource wraps an open SQL Server handle. A non-positive retryDelay
// falls back to DefaultRetryDelay.
func NewSQLSource(db *sql.DB, logger *logging.Logger, retryDelay time.Duration) *SQLSource {
	if db == nil {
		panic("visits: db handle cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &SQLSource{db: db, logger: logger, retryDelay: retryDelay}
}

// Open connects to the claims replica with pool settings suited to the
// copilot's low, bursty query volume.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("visits: open claims replica: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func (s *SQLSource) VisitRejections(ctx context.Context, visitID string) ([]Row, error) {
	var out []Row
	err := s.withRetry(ctx, "visit rejections", func() error {
		rows, err := s.db.QueryContext(ctx, rejectionsQuery, visitID)
		if err != nil {
			return err
		}
		defer rows.Close()

		var collected []Row
		for rows.Next() {
			var r Row
			// Every column is nullable in the replica; a NULL must not
			// become a scan error dressed as a connectivity fault.
			var visitID, serviceName, price, startDate, medDept, specialty, diagnose, icd, reason, pol1, pol2, contract sql.NullString
			if err := rows.Scan(&visitID, &contract, &serviceName, &price, &startDate,
				&medDept, &specialty, &diagnose, &icd, &reason, &pol1, &pol2); err != nil {
				return err
			}
			r.VisitID = visitID.String
			r.ServiceName = serviceName.String
			r.Contract = contract.String
			r.Price = price.String
			r.StartDate = startDate.String
			r.MedDept = medDept.String
			r.SpecialtyName = specialty.String
			r.DiagnoseName = diagnose.String
			r.ICD10Code = icd.String
			r.RejectionReason = reason.String
			r.PolicyNumber = pol1.String
			r.PolicyNumber2 = pol2.String
			collected = append(collected, r)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		out = collected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLSource) VisitIDsBetween(ctx context.Context, from, to string) ([]string, error) {
	var out []string
	err := s.withRetry(ctx, "visit ids", func() error {
		rows, err := s.db.QueryContext(ctx, visitIDsQuery, from, to)
		if err != nil {
			return err
		}
		defer rows.Close()

		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		out = ids
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// withRetry runs fn, and on failure waits the fixed delay and runs it once
// more. The second failure propagates wrapped in ErrSourceUnavailable.
func (s *SQLSource) withRetry(ctx context.Context, op string, fn func() error) error {
	firstErr := fn()
	if firstErr == nil {
		return nil
	}
	s.logger.Warn("claims replica query failed, retrying once",
		"op", op,
		"delay", s.retryDelay.String(),
		"error", firstErr,
	)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.retryDelay):
	}

	if err := fn(); err != nil {
		return fmt.Errorf("%w: %s failed twice: %v", ErrSourceUnavailable, op, err)
	}
	return nil
}
