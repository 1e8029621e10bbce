package appointments

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresStoreList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newPostgresStoreWithQuerier(mock)

	rows := pgxmock.NewRows([]string{"id", "service", "full_name", "date_of_birth", "date", "time_slot", "to_char"}).
		AddRow(1, "Massage Therapy", "John Doe", "1990-01-01", "2026-03-01", "10:00", "2026-02-23 10:00:00").
		AddRow(2, "Facial Treatment", "Jane Roe", "1988-06-15", "2026-03-02", "11:00", "2026-02-24 09:00:00")
	mock.ExpectQuery("SELECT id, service").WillReturnRows(rows)

	records, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() = %d records, want 2", len(records))
	}
	if records[0].ID != 1 || records[0].Service != "Massage Therapy" {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].Time != "11:00" {
		t.Errorf("second record = %+v", records[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreAppend(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newPostgresStoreWithQuerier(mock)

	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs("Massage Therapy", "John Doe", "1990-01-01", "2026-03-01", "10:00").
		WillReturnRows(pgxmock.NewRows([]string{"id", "to_char"}).AddRow(7, "2026-02-23 10:00:00"))

	r, err := store.Append(context.Background(), Record{
		Service:   "Massage Therapy",
		Name:      "John Doe",
		BirthDate: "1990-01-01",
		Date:      "2026-03-01",
		Time:      "10:00",
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if r.ID != 7 || r.CreatedAt != "2026-02-23 10:00:00" {
		t.Errorf("stored record = %+v", r)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreAppendFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newPostgresStoreWithQuerier(mock)

	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs("Massage Therapy", "John Doe", "1990-01-01", "2026-03-01", "10:00").
		WillReturnError(context.DeadlineExceeded)

	if _, err := store.Append(context.Background(), Record{
		Service:   "Massage Therapy",
		Name:      "John Doe",
		BirthDate: "1990-01-01",
		Date:      "2026-03-01",
		Time:      "10:00",
	}); err == nil {
		t.Error("Append() error = nil, want failure")
	}
}
