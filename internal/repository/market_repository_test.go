package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"unimarket/internal/domain/enterprise"
	"unimarket/internal/domain/job"
	"unimarket/internal/domain/merchant"
	"unimarket/internal/domain/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresMerchantRepository_CreateWithOwnerRole(t *testing.T) {
	db, mock := newMock(t)
	m := merchant.Merchant{ID: uuid.New(), OwnerID: uuid.New(), Name: "Corner Bakery", Slug: "corner-bakery", Active: true}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO merchants").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO user_roles").
		WithArgs(m.OwnerID, user.RoleMerchant).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresMerchantRepository(db).CreateWithOwnerRole(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMerchantRepository_CreateWithOwnerRole_DuplicateSlug(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO merchants").WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := NewPostgresMerchantRepository(db).CreateWithOwnerRole(context.Background(), merchant.Merchant{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProductRepository_LogicalDelete(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t)
	repo := NewPostgresProductRepository(db)
	id := uuid.New()

	mock.ExpectExec("UPDATE products SET deleted = TRUE").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM products WHERE id = \\$1 AND deleted = FALSE").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	require.NoError(t, repo.SoftDelete(ctx, id))

	_, err := repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProductRepository_ListByMerchant_OnSaleFilter(t *testing.T) {
	db, mock := newMock(t)
	merchantID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("AND status = \\$2 ORDER BY created_at DESC LIMIT \\$3 OFFSET \\$4").
		WithArgs(merchantID, merchant.ProductOnSale, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "name", "description", "price_cents", "stock", "status", "deleted", "created_at", "updated_at"}).
			AddRow(uuid.NewString(), merchantID.String(), "Bread", "", int64(450), 3, merchant.ProductOnSale, false, now, now))

	got, err := NewPostgresProductRepository(db).ListByMerchant(context.Background(), merchantID, true, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(450), got[0].PriceCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresJobApplicationRepository_Create(t *testing.T) {
	a := job.Application{ID: uuid.New(), JobID: uuid.New(), UserID: uuid.New(), Status: job.StatusSubmitted}

	testCases := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "inserted"},
		{name: "partial unique index maps to duplicate", err: &pgconn.PgError{Code: "23505"}, wantErr: ErrDuplicate},
		{name: "missing job", err: &pgconn.PgError{Code: "23503"}, wantErr: ErrJobNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMock(t)
			exp := mock.ExpectExec("INSERT INTO job_applications").
				WithArgs(a.ID, a.JobID, a.UserID, "SUBMITTED", "", "")
			if tc.err != nil {
				exp.WillReturnError(tc.err)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := NewPostgresJobApplicationRepository(db).Create(context.Background(), a)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresJobApplicationRepository_UpdateStatus_StaleStatus(t *testing.T) {
	db, mock := newMock(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE job_applications SET status").
		WithArgs(id, "SUBMITTED", "VIEWED").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPostgresJobApplicationRepository(db).UpdateStatus(context.Background(), id, job.StatusSubmitted, job.StatusViewed)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestPostgresJobPostRepository_List_Filters(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`j.title ILIKE \$2 OR j.description ILIKE \$2 OR e.name ILIKE \$2\) AND j.location ILIKE \$3`).
		WithArgs(job.PostOpen, "%golang%", "%jakarta%", 10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := NewPostgresJobPostRepository(db).List(context.Background(), job.ListFilter{
		Keyword:  "golang",
		Location: "jakarta",
		Limit:    10,
		Offset:   5,
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEnterpriseRepository_CreateWithOwner(t *testing.T) {
	db, mock := newMock(t)
	creator := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO enterprises").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO enterprise_members").
		WithArgs(sqlmock.AnyArg(), creator, "OWNER").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO user_roles").
		WithArgs(creator, user.RoleEnterprise).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewPostgresEnterpriseRepository(db).CreateWithOwner(context.Background(), enterprise.Enterprise{
		ID:        uuid.New(),
		Name:      "Acme",
		Slug:      "acme",
		CreatedBy: creator,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
