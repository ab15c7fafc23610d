package wallets

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/michosso/memepump-auth/internal/common"
	"github.com/michosso/memepump-auth/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+wallets\s*\(user_id,\s*sol_address,\s*name,\s*private_key,\s*wallet_type\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*created_at\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now)
	mock.ExpectQuery(q).
		WithArgs(int64(1), "addr", sql.NullString{}, "ct", "main").
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), &models.Wallet{
		UserID:     1,
		SolAddress: "addr",
		PrivateKey: "ct",
		Kind:       models.WalletMain,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 3 || got.Kind != models.WalletMain {
		t.Fatalf("unexpected wallet: %+v", got)
	}
}

func TestGetFirstByUserID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT\s+id,\s*user_id,\s*sol_address.*FROM\s+wallets.*WHERE\s+user_id\s*=\s*\$1`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetFirstByUserID(context.Background(), 9)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestGetFirstByUserID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "sol_address", "name", "private_key", "wallet_type", "created_at"}).
		AddRow(int64(3), int64(1), "addr", nil, "ct", "main", now)
	mock.ExpectQuery(`(?s)SELECT\s+id,\s*user_id,\s*sol_address.*FROM\s+wallets`).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	got, err := repo.GetFirstByUserID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetFirstByUserID error: %v", err)
	}
	if got.SolAddress != "addr" || got.Kind != models.WalletMain || got.Name != "" {
		t.Fatalf("unexpected wallet: %+v", got)
	}
}

func TestList_WithSearchAndPaging(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "sol_address", "name", "wallet_type", "created_at"}).
		AddRow(int64(1), "addr1", "trading", "main", now).
		AddRow(int64(2), "addr2", nil, "other", now)
	mock.ExpectQuery(`(?s)SELECT\s+id,\s*sol_address,\s*name,\s*wallet_type,\s*created_at\s+FROM\s+wallets\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+\(name\s+ILIKE\s+\$2\s+OR\s+sol_address\s+ILIKE\s+\$2\)\s+ORDER\s+BY\s+name\s+DESC\s+LIMIT\s+10\s+OFFSET\s+20`).
		WithArgs(int64(1), "%addr%").
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), 1, ListQuery{
		Search:    "addr",
		SortBy:    "name",
		SortOrder: "desc",
		Offset:    20,
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "trading" || got[1].Kind != models.WalletOther {
		t.Fatalf("unexpected wallets: %+v", got)
	}
}

func TestList_RejectsUnknownSortColumn(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "sol_address", "name", "wallet_type", "created_at"})
	// private_key is not a sortable column; the query must fall back to created_at
	mock.ExpectQuery(`(?s)ORDER\s+BY\s+created_at\s+ASC`).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	_, err := repo.List(context.Background(), 1, ListQuery{SortBy: "private_key", Limit: 10})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
}

func TestCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT\s+COUNT\(\*\)\s+FROM\s+wallets\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))

	total, err := repo.Count(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if total != 5 {
		t.Fatalf("total: got %d want 5", total)
	}
}
