package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerColumns = []string{"id", "name", "phone", "email", "address", "created_at"}

func TestRepository_FindByPhoneOrEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("MatchByPhone", func(t *testing.T) {
		rows := sqlmock.NewRows(customerColumns).
			AddRow("cust-1", "Mario Rossi", "+39 331 123 4567", nil, nil, now)
		mock.ExpectQuery(`SELECT .* FROM customers\s+WHERE phone = \$1 OR \(\$2::text IS NOT NULL AND email = \$2\)`).
			WithArgs("+39 331 123 4567", nil).
			WillReturnRows(rows)

		c, err := repo.FindByPhoneOrEmail(ctx, "+39 331 123 4567", nil)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "cust-1", c.ID)
	})

	t.Run("MatchByEmail", func(t *testing.T) {
		email := "mario@example.com"
		rows := sqlmock.NewRows(customerColumns).
			AddRow("cust-1", "Mario Rossi", "+39 331 000 0000", email, nil, now)
		mock.ExpectQuery(`SELECT .* FROM customers`).
			WithArgs("+39 999 999 9999", email).
			WillReturnRows(rows)

		c, err := repo.FindByPhoneOrEmail(ctx, "+39 999 999 9999", &email)
		require.NoError(t, err)
		require.NotNil(t, c)
		require.NotNil(t, c.Email)
		assert.Equal(t, email, *c.Email)
	})

	t.Run("NoMatch", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM customers`).
			WillReturnRows(sqlmock.NewRows(customerColumns))

		c, err := repo.FindByPhoneOrEmail(ctx, "+39 000", nil)
		assert.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM customers`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.FindByPhoneOrEmail(ctx, "+39 000", nil)
		assert.Error(t, err)
	})
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("AssignsIDAndCreatedAt", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO customers`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		c := &Customer{Name: "Mario Rossi", Phone: "+39 331 123 4567"}
		err := repo.Create(ctx, c)
		require.NoError(t, err)
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, now, c.CreatedAt)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO customers`).
			WillReturnError(errors.New("db error"))

		err := repo.Create(ctx, &Customer{Name: "Mario Rossi", Phone: "+39 331"})
		assert.Error(t, err)
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(customerColumns).
			AddRow("cust-1", "Mario Rossi", "+39 331 123 4567", nil, "Via Roma 1", time.Now())
		mock.ExpectQuery(`SELECT .* FROM customers WHERE id = \$1`).
			WithArgs("cust-1").
			WillReturnRows(rows)

		c, err := repo.GetByID(ctx, "cust-1")
		require.NoError(t, err)
		require.NotNil(t, c)
		require.NotNil(t, c.Address)
		assert.Equal(t, "Via Roma 1", *c.Address)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM customers WHERE id = \$1`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(customerColumns))

		c, err := repo.GetByID(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, c)
	})
}
