package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/parkos/parklot/internal/domain/models"
)

type fakeStore struct {
	operators map[string]*models.Operator
}

func newFakeStore() *fakeStore {
	return &fakeStore{operators: make(map[string]*models.Operator)}
}

func (f *fakeStore) GetOperatorByUsername(_ context.Context, username string) (*models.Operator, error) {
	op, ok := f.operators[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	return op, nil
}

func (f *fakeStore) CreateOperator(_ context.Context, op *models.Operator) error {
	f.operators[op.Username] = op
	return nil
}

func (f *fakeStore) CountOperators(_ context.Context) (int, error) {
	return len(f.operators), nil
}

func seedOperator(t *testing.T, store *fakeStore, username, password, role string) *models.Operator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	op := &models.Operator{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  username,
		Role:         role,
	}
	store.operators[username] = op
	return op
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	store := newFakeStore()
	op := seedOperator(t, store, "ravi", "secret", models.RoleOperator)
	svc := NewService(store, "test-signing-key", 12*time.Hour, zap.NewNop())

	result, err := svc.Login(context.Background(), "ravi", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, op.Username, result.Operator.Username)

	identity, err := svc.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, op.ID, identity.OperatorID)
	assert.Equal(t, "ravi", identity.Username)
	assert.Equal(t, models.RoleOperator, identity.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeStore()
	seedOperator(t, store, "ravi", "secret", models.RoleOperator)
	svc := NewService(store, "test-signing-key", time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), "ravi", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLoginUnknownUsername(t *testing.T) {
	svc := NewService(newFakeStore(), "test-signing-key", time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), "nobody", "secret")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	store := newFakeStore()
	seedOperator(t, store, "ravi", "secret", models.RoleOperator)
	svc := NewService(store, "test-signing-key", time.Hour, zap.NewNop())
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	result, err := svc.Login(context.Background(), "ravi", "secret")
	require.NoError(t, err)

	_, err = svc.Verify(result.Token)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	store := newFakeStore()
	seedOperator(t, store, "ravi", "secret", models.RoleOperator)
	issuer := NewService(store, "one-key", time.Hour, zap.NewNop())
	verifier := NewService(store, "another-key", time.Hour, zap.NewNop())

	result, err := issuer.Login(context.Background(), "ravi", "secret")
	require.NoError(t, err)

	_, err = verifier.Verify(result.Token)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewService(newFakeStore(), "test-signing-key", time.Hour, zap.NewNop())

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestCreateOperatorValidation(t *testing.T) {
	svc := NewService(newFakeStore(), "test-signing-key", time.Hour, zap.NewNop())

	_, err := svc.CreateOperator(context.Background(), "", "pw", "X", models.RoleOperator)
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.CreateOperator(context.Background(), "x", "pw", "X", "superuser")
	assert.ErrorAs(t, err, &verr)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, "test-signing-key", time.Hour, zap.NewNop())

	require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), "admin", "changeme"))
	op, err := store.GetOperatorByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, op.Role)

	// Second call is a no-op once operators exist.
	require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), "admin", "other"))
	again, err := store.GetOperatorByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, op.PasswordHash, again.PasswordHash)
}

func TestEnsureBootstrapAdminDisabledWithoutPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, "test-signing-key", time.Hour, zap.NewNop())

	require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), "admin", ""))
	assert.Empty(t, store.operators)
}
