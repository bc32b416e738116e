package visits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func rejectionColumns() []string {
	return []string{
		"VisitID", "Contract", "Service_Name", "ResponseSubmitted", "Start_Date",
		"Med_Dept", "Specialty_Name", "Diagnose_Name", "ICD10 Code", "Rejection_Reason",
		"ContractorClientPolicyNumber", "ContractorClientPolicyNumber2",
	}
}

func TestVisitRejections(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM dbo.ClaimRejections`).
		WithArgs("V-1001").
		WillReturnRows(sqlmock.NewRows(rejectionColumns()).
			AddRow("V-1001", "1 - VIP+", "Examination", "300", "2025-03-14 09:30:00",
				"Outpatient", "Psychiatry", "GAD", "F41.1", "Not indicated for this diagnosis",
				"51489100", "514891001"))

	src := NewSQLSource(db, nil, time.Millisecond)
	rows, err := src.VisitRejections(context.Background(), "V-1001")
	if err != nil {
		t.Fatalf("VisitRejections: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].PolicyNumber2 != "514891001" {
		t.Errorf("PolicyNumber2 = %q", rows[0].PolicyNumber2)
	}
	if TierLabel(rows) != "VIP+" {
		t.Errorf("TierLabel = %q", TierLabel(rows))
	}
}

func TestVisitRejectionsTolerateNullColumns(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	// The replica can surface NULL in any column, including the visit and
	// service identifiers. One attempt, no retry, no error.
	mock.ExpectQuery(`FROM dbo.ClaimRejections`).
		WithArgs("V-1001").
		WillReturnRows(sqlmock.NewRows(rejectionColumns()).
			AddRow(nil, "1 - VIP+", nil, nil, nil,
				nil, nil, nil, nil, "not covered",
				"51489100", nil))

	src := NewSQLSource(db, nil, time.Hour)
	rows, err := src.VisitRejections(context.Background(), "V-1001")
	if err != nil {
		t.Fatalf("VisitRejections: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].VisitID != "" || rows[0].ServiceName != "" {
		t.Errorf("NULL columns should scan as empty strings: %+v", rows[0])
	}
	if rows[0].RejectionReason != "not covered" {
		t.Errorf("RejectionReason = %q", rows[0].RejectionReason)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestVisitRejectionsRetriesOnce(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM dbo.ClaimRejections`).
		WithArgs("V-1001").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery(`FROM dbo.ClaimRejections`).
		WithArgs("V-1001").
		WillReturnRows(sqlmock.NewRows(rejectionColumns()))

	src := NewSQLSource(db, nil, time.Millisecond)
	rows, err := src.VisitRejections(context.Background(), "V-1001")
	if err != nil {
		t.Fatalf("retry should have recovered: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestVisitRejectionsSecondFailureIsFatal(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM dbo.ClaimRejections`).WillReturnError(errors.New("down"))
	mock.ExpectQuery(`FROM dbo.ClaimRejections`).WillReturnError(errors.New("still down"))

	src := NewSQLSource(db, nil, time.Millisecond)
	_, err = src.VisitRejections(context.Background(), "V-1001")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("second failure must wrap ErrSourceUnavailable, got %v", err)
	}
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM dbo.ClaimRejections`).WillReturnError(errors.New("down"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewSQLSource(db, nil, time.Hour)
	_, err = src.VisitRejections(ctx, "V-1001")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled during retry wait, got %v", err)
	}
}

func TestVisitIDsBetween(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT VisitID`).
		WithArgs("2025-03-01", "2025-03-31").
		WillReturnRows(sqlmock.NewRows([]string{"VisitID"}).AddRow("V-1").AddRow("V-2"))

	src := NewSQLSource(db, nil, time.Millisecond)
	ids, err := src.VisitIDsBetween(context.Background(), "2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("VisitIDsBetween: %v", err)
	}
	if len(ids) != 2 || ids[0] != "V-1" {
		t.Errorf("ids = %v", ids)
	}
}
