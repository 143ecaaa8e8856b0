package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confsched/internal/domain"
)

func TestFavoritesRepository_Load(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    []string
		wantErr error
		anyErr  bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT value FROM kv`).
					WithArgs("favorites").
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`["a","b"]`))
			},
			want: []string{"a", "b"},
		},
		{
			name: "nothing saved yet",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT value FROM kv`).
					WithArgs("favorites").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "corrupt value",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT value FROM kv`).
					WithArgs("favorites").
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`not json`))
			},
			anyErr: true,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT value FROM kv`).
					WillReturnError(sql.ErrConnDone)
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewFavoritesRepository(db)
			got, err := repo.Load(ctx)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.anyErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFavoritesRepository_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts the JSON array under the fixed key", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO kv`).
			WithArgs("favorites", `["a","b"]`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewFavoritesRepository(db)
		require.NoError(t, repo.Save(ctx, []string{"a", "b"}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil set is stored as an empty array", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO kv`).
			WithArgs("favorites", `[]`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewFavoritesRepository(db)
		require.NoError(t, repo.Save(ctx, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO kv`).
			WillReturnError(sql.ErrConnDone)

		repo := NewFavoritesRepository(db)
		require.Error(t, repo.Save(ctx, []string{"a"}))
	})
}

func TestOpen_roundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "favorites.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	repo := NewFavoritesRepository(db)

	_, err = repo.Load(ctx)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Save(ctx, []string{"a", "b"}))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	// Overwrites, never appends.
	require.NoError(t, repo.Save(ctx, []string{"b"}))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got)
}
