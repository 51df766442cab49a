package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/adapter/persistence/memory"
	"newsdesk/internal/repository"
	"newsdesk/internal/service/auth"
	"newsdesk/pkg/security/password"
)

func newService(req auth.CredentialRequirements) *auth.Service {
	return auth.NewService(memory.NewRepo(), password.NewBcryptHasher(bcrypt.MinCost), req)
}

// racingRepo reports no existing user but rejects the insert, like a
// concurrent registration winning between lookup and insert.
type racingRepo struct{}

func (racingRepo) AddUser(context.Context, *entity.User) error {
	return repository.ErrIntegrity
}

func (racingRepo) GetUser(context.Context, string) (*entity.User, error) { return nil, nil }

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc := newService(auth.CredentialRequirements{})

	user, err := svc.Register(ctx, " shaun ", "p4ssw0rd!")
	require.NoError(t, err)
	assert.Equal(t, "shaun", user.Username)
	assert.NotEqual(t, "p4ssw0rd!", user.Password)

	got, err := svc.GetUser(ctx, "shaun")
	require.NoError(t, err)
	assert.Same(t, user, got)

	_, err = svc.Register(ctx, "shaun", "another one")
	assert.ErrorIs(t, err, auth.ErrNameNotUnique)
}

func TestService_RegisterLostRace(t *testing.T) {
	svc := auth.NewService(racingRepo{}, password.NewBcryptHasher(bcrypt.MinCost), auth.CredentialRequirements{})
	_, err := svc.Register(context.Background(), "shaun", "p4ssw0rd!")
	assert.ErrorIs(t, err, auth.ErrNameNotUnique)
}

func TestService_RegisterPolicy(t *testing.T) {
	svc := newService(auth.CredentialRequirements{
		MinPasswordLength: 8,
		WeakPasswords:     []string{"password123"},
	})

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"ok", "dave", "cLQ^C#oFXloS", nil},
		{"empty username", "  ", "cLQ^C#oFXloS", auth.ErrWeakCredentials},
		{"empty password", "erin", "", auth.ErrWeakCredentials},
		{"too short", "frank", "abc", auth.ErrWeakCredentials},
		{"weak, any case", "grace", "PASSWORD123", auth.ErrWeakCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_GetUserUnknown(t *testing.T) {
	_, err := newService(auth.CredentialRequirements{}).GetUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, auth.ErrUnknownUser)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc := newService(auth.CredentialRequirements{})
	_, err := svc.Register(ctx, "fmercury", "mvNNbc1eLA$i")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "fmercury", "mvNNbc1eLA$i")
	require.NoError(t, err)
	assert.Equal(t, "fmercury", user.Username)

	_, err = svc.Authenticate(ctx, "fmercury", "wrong")
	assert.ErrorIs(t, err, auth.ErrAuthentication)

	_, err = svc.Authenticate(ctx, "nobody", "mvNNbc1eLA$i")
	assert.ErrorIs(t, err, auth.ErrAuthentication)
}

func TestService_AuthenticateIgnoresForeignHash(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepo()
	require.NoError(t, repo.AddUser(ctx, entity.NewUser("legacy", "plaintext")))

	svc := auth.NewService(repo, password.NewBcryptHasher(bcrypt.MinCost), auth.CredentialRequirements{})
	_, err := svc.Authenticate(ctx, "legacy", "plaintext")
	assert.True(t, errors.Is(err, auth.ErrAuthentication))
}
