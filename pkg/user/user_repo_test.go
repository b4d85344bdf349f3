//go:build integration

package user

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/eventpulse/eventpulse/internal/test_utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *UserRepoImpl) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return ctx, NewUserRepo(db)
}

func newUser(email string, createdAt time.Time) User {
	return User{Uid: uuid.NewString(), Name: "Test " + email, Email: email, CreatedAt: createdAt}
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	createdAt := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)

	created, err := repo.CreateUser(ctx, newUser("ada@example.com", createdAt))
	require.NoError(t, err)
	require.NotZero(t, created.Id)

	byId, err := repo.GetUser(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Uid, byId.Uid)
	assert.True(t, createdAt.Equal(byId.CreatedAt))

	byUid, err := repo.GetUserByUid(ctx, created.Uid)
	require.NoError(t, err)
	assert.Equal(t, created.Id, byUid.Id)

	byEmail, err := repo.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.Id, byEmail.Id)

	_, err = repo.GetUser(ctx, created.Id+1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepo_EmailUnique(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	now := time.Now().UTC()

	_, err := repo.CreateUser(ctx, newUser("ada@example.com", now))
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, newUser("ada@example.com", now))
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRepo_GetAllUsersOrdered(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	late, err := repo.CreateUser(ctx, newUser("late@example.com", now.Add(time.Hour)))
	require.NoError(t, err)
	early, err := repo.CreateUser(ctx, newUser("early@example.com", now))
	require.NoError(t, err)

	users, err := repo.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, early.Id, users[0].Id)
	assert.Equal(t, late.Id, users[1].Id)
}
