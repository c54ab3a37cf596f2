package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dgarcia/dashboard-api/internal/auth"
	"github.com/dgarcia/dashboard-api/internal/repository/postgres"
	"github.com/dgarcia/dashboard-api/internal/service"
	"github.com/dgarcia/dashboard-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	store := postgres.NewStore(testDB.DB)
	services := service.NewServices(store, testutil.TestConfig())
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.CreateUserInput
		setup   func()
		wantErr error
	}{
		{
			name: "successful creation",
			input: service.CreateUserInput{
				FirstName: "New",
				LastName:  "User",
				Username:  "newuser",
				Password:  "password123",
			},
		},
		{
			name: "duplicate username",
			input: service.CreateUserInput{
				FirstName: "Another",
				LastName:  "User",
				Username:  "existinguser",
				Password:  "password123",
			},
			setup: func() {
				testutil.NewUserBuilder().WithUsername("existinguser").Build(t, testDB.DB)
			},
			wantErr: service.ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			user, err := services.User.Create(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.input.Username, user.Username)
			assert.True(t, user.Active)
			assert.Nil(t, user.ModifiedAt)
			// The plaintext never lands in storage
			assert.NotEqual(t, tt.input.Password, user.PasswordHash)
			assert.True(t, auth.CheckPassword(tt.input.Password, user.PasswordHash))
		})
	}
}

func TestUserService_Create_ConcurrentDuplicate(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	store := postgres.NewStore(testDB.DB)
	services := service.NewServices(store, testutil.TestConfig())
	ctx := context.Background()

	// The unique index, not the application check, decides the race.
	const attempts = 4
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			_, err := services.User.Create(ctx, service.CreateUserInput{
				FirstName: "Race",
				LastName:  "Condition",
				Username:  "raceduser",
				Password:  "password123",
			})
			errs <- err
		}()
	}

	var succeeded, conflicted int
	for i := 0; i < attempts; i++ {
		err := <-errs
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, service.ErrUsernameTaken):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicted)
}

func TestUserService_Get(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	store := postgres.NewStore(testDB.DB)
	services := service.NewServices(store, testutil.TestConfig())
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithUsername("getme").Build(t, testDB.DB)

	got, err := services.User.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)

	_, err = services.User.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserService_Update_PartialFields(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	store := postgres.NewStore(testDB.DB)
	services := service.NewServices(store, testutil.TestConfig())
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("partialupdate").
		WithName("First", "Last").
		Build(t, testDB.DB)

	newLast := "Changed"
	updated, err := services.User.Update(ctx, user.ID, service.UpdateUserInput{LastName: &newLast})
	require.NoError(t, err)

	// Only the supplied field moves
	assert.Equal(t, "First", updated.FirstName)
	assert.Equal(t, "Changed", updated.LastName)
	assert.Equal(t, user.Username, updated.Username)
	assert.True(t, updated.Active)
	assert.True(t, auth.CheckPassword(rawPassword, updated.PasswordHash))
	require.NotNil(t, updated.ModifiedAt)
}

func TestUserService_Update_Password(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	store := postgres.NewStore(testDB.DB)
	services := service.NewServices(store, testutil.TestConfig())
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUsername("passwordchange").
		WithPassword("oldpassword").
		Build(t, testDB.DB)

	newPassword := "newpassword456"
	updated, err := services.User.Update(ctx, user.ID, service.UpdateUserInput{Password: &newPassword})
	require.NoError(t, err)

	assert.False(t, auth.CheckPassword("oldpassword", updated.PasswordHash))
	assert.True(t, auth.CheckPassword(newPassword, updated.PasswordHash))

	// Login works with the new credential only
	_, err = services.Auth.Login(ctx, user.Username, newPassword)
	assert.NoError(t, err)
	_, err = services.Auth.Login(ctx, user.Username, "oldpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestUserService_Update_NotFound(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	store := postgres.NewStore(testDB.DB)
	services := service.NewServices(store, testutil.TestConfig())
	ctx := context.Background()

	name := "Nobody"
	_, err := services.User.Update(ctx, uuid.New(), service.UpdateUserInput{FirstName: &name})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserService_Delete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	store := postgres.NewStore(testDB.DB)
	services := service.NewServices(store, testutil.TestConfig())
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithUsername("deleteme").Build(t, testDB.DB)

	require.NoError(t, services.User.Delete(ctx, user.ID))

	_, err := services.User.Get(ctx, user.ID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	// Second delete reports NotFound and the user stays absent
	err = services.User.Delete(ctx, user.ID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserService_Delete_BlockedWhileOwningAnalyses(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	store := postgres.NewStore(testDB.DB)
	services := service.NewServices(store, testutil.TestConfig())
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().WithUsername("busyowner").Build(t, testDB.DB)
	analysis := testutil.NewAnalysisBuilder(owner).Build(t, testDB.DB)

	err := services.User.Delete(ctx, owner.ID)
	assert.ErrorIs(t, err, service.ErrUserHasAnalyses)

	// After the analysis goes away the account can be deleted
	require.NoError(t, services.Analysis.Delete(ctx, analysis.ID))
	assert.NoError(t, services.User.Delete(ctx, owner.ID))
}

func TestEnsureDefaultAdmin(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	store := postgres.NewStore(testDB.DB)
	services := service.NewServices(store, testutil.TestConfig())
	ctx := context.Background()

	require.NoError(t, service.EnsureDefaultAdmin(ctx, store, "admin", "admin123"))

	result, err := services.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	adminID := result.User.ID

	// Idempotent: a second run leaves the existing account untouched
	require.NoError(t, service.EnsureDefaultAdmin(ctx, store, "admin", "differentpassword"))

	result, err = services.Auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, adminID, result.User.ID)
}
