package technician

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var technicianColumns = []string{"id", "user_id", "full_name", "specialization", "max_orders_limit", "created_at"}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO technicians`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		tech := &Technician{UserID: "user-1", FullName: "Li Wei"}
		err := repo.Create(ctx, tech)
		assert.NoError(t, err)
		assert.NotEmpty(t, tech.ID)
		assert.Equal(t, now, tech.CreatedAt)
	})

	t.Run("KeepsProvidedID", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO technicians`).
			WithArgs("tech-9", "user-1", "Li Wei", nil, nil).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		tech := &Technician{ID: "tech-9", UserID: "user-1", FullName: "Li Wei"}
		err := repo.Create(ctx, tech)
		assert.NoError(t, err)
		assert.Equal(t, "tech-9", tech.ID)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO technicians`).
			WillReturnError(errors.New("db error"))

		err := repo.Create(ctx, &Technician{UserID: "user-1", FullName: "Li Wei"})
		assert.Error(t, err)
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(technicianColumns).
			AddRow("tech-1", "user-1", "Li Wei", "screens", 5, now)
		mock.ExpectQuery(`SELECT .* FROM technicians WHERE id = \$1`).
			WithArgs("tech-1").
			WillReturnRows(rows)

		tech, err := repo.GetByID(ctx, "tech-1")
		require.NoError(t, err)
		require.NotNil(t, tech)
		assert.Equal(t, "Li Wei", tech.FullName)
		require.NotNil(t, tech.MaxOrdersLimit)
		assert.Equal(t, 5, *tech.MaxOrdersLimit)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM technicians WHERE id = \$1`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(technicianColumns))

		tech, err := repo.GetByID(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, tech)
	})
}

func TestRepository_GetByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows(technicianColumns).
		AddRow("tech-1", "user-1", "Li Wei", nil, nil, time.Now())
	mock.ExpectQuery(`SELECT .* FROM technicians WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(rows)

	tech, err := repo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, tech)
	assert.Nil(t, tech.MaxOrdersLimit)
}

func TestRepository_ListWithActiveCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	rows := sqlmock.NewRows(append(technicianColumns, "active_orders")).
		AddRow("tech-1", "user-1", "Anna Bianchi", nil, 3, now, 2).
		AddRow("tech-2", "user-2", "Li Wei", "boards", nil, now, 0)
	mock.ExpectQuery(`SELECT .* FROM technicians t\s+LEFT JOIN orders o ON o.technician_id = t.id`).
		WillReturnRows(rows)

	list, err := repo.ListWithActiveCounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].ActiveOrders)
	assert.Equal(t, "Li Wei", list[1].FullName)
}

func TestRepository_CountActiveOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).
		WithArgs("tech-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountActiveOrders(ctx, "tech-1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
