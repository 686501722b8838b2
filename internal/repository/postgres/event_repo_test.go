package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"calendrier/internal/domain"
)

var eventCols = []string{"id", "title", "start", "end", "all_day", "category", "color", "user_id", "created_at", "updated_at"}

func TestEventRepository_Create(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	color := "#FF8800"

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs("Dentist", start, end, false, nil, "#FF8800", "acc-1", start, start).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))

	e := &domain.Event{Title: "Dentist", Start: start, End: end, Color: &color, OwnerID: "acc-1", CreatedAt: start, UpdatedAt: start}
	require.NoError(t, NewEventRepository(db).Create(context.Background(), e))
	require.Equal(t, "ev-1", e.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Update(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		affected int64
		execErr  error
		wantErr  error
	}{
		{name: "updated", affected: 1},
		{name: "not owned or missing", affected: 0, wantErr: domain.ErrNotFound},
		{name: "db error", execErr: sql.ErrConnDone, wantErr: sql.ErrConnDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			exp := mock.ExpectExec(`UPDATE events`).
				WithArgs("Dentist", start, start.Add(time.Hour), nil, nil, start, "ev-1", "acc-1")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			e := &domain.Event{ID: "ev-1", Title: "Dentist", Start: start, End: start.Add(time.Hour), OwnerID: "acc-1", UpdatedAt: start}
			err = NewEventRepository(db).Update(context.Background(), e)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_ListByOwner(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("bounded window", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM events\s+WHERE user_id = \$1`).
			WithArgs("acc-1", from, to).
			WillReturnRows(sqlmock.NewRows(eventCols).
				AddRow("ev-1", "Dentist", start, start.Add(time.Hour), false, "health", nil, "acc-1", start, start))

		events, err := NewEventRepository(db).ListByOwner(context.Background(), "acc-1", domain.TimeWindow{From: from, To: to})
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, "health", *events[0].Category)
		require.Nil(t, events[0].Color)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open ended", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM events\s+WHERE user_id = \$1`).
			WithArgs("acc-1", from, nil).
			WillReturnRows(sqlmock.NewRows(eventCols))

		events, err := NewEventRepository(db).ListByOwner(context.Background(), "acc-1", domain.TimeWindow{From: from})
		require.NoError(t, err)
		require.Empty(t, events)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_GetByID_notFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM events WHERE id = \$1 AND user_id = \$2`).
		WithArgs("ev-1", "acc-2").
		WillReturnError(sql.ErrNoRows)

	_, err = NewEventRepository(db).GetByID(context.Background(), "ev-1", "acc-2")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGroupEventRepository_CreateAndDelete(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO group_events`).
		WithArgs("Offsite", start, start.Add(8*time.Hour), false, nil, nil, "grp-1", "acc-1", start, start).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("gev-1"))
	mock.ExpectExec(`DELETE FROM group_events WHERE id = \$1 AND group_id = \$2`).
		WithArgs("gev-1", "grp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM group_events`).
		WithArgs("gev-1", "grp-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewGroupEventRepository(db)
	e := &domain.Event{Title: "Offsite", Start: start, End: start.Add(8 * time.Hour), GroupID: "grp-1", CreatedBy: "acc-1", CreatedAt: start, UpdatedAt: start}
	require.NoError(t, repo.Create(context.Background(), e))
	require.Equal(t, "gev-1", e.ID)

	require.NoError(t, repo.Delete(context.Background(), "gev-1", "grp-1"))
	require.ErrorIs(t, repo.Delete(context.Background(), "gev-1", "grp-1"), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupEventRepository_ListByGroup(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	cols := []string{"id", "title", "start_at", "end_at", "all_day", "category", "color", "group_id", "created_by", "created_at", "updated_at"}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM group_events\s+WHERE group_id = \$1`).
		WithArgs("grp-1", nil, nil).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("gev-1", "Offsite", start, start.Add(time.Hour), false, nil, "#112233", "grp-1", "acc-1", start, start))

	events, err := NewGroupEventRepository(db).ListByGroup(context.Background(), "grp-1", domain.TimeWindow{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "grp-1", events[0].GroupID)
	require.Equal(t, "acc-1", events[0].CreatedBy)
	require.Equal(t, "#112233", *events[0].Color)
	require.NoError(t, mock.ExpectationsWereMet())
}
