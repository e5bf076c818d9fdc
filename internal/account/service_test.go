package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/repository"
	"github.com/lalith-99/controlpanel/internal/testutil"
)

func setup(t *testing.T) (*Service, testutil.Stores) {
	t.Helper()
	stores := testutil.NewStores(t)
	svc := NewService(stores.Shows, zap.NewNop())
	svc.Cost = bcrypt.MinCost
	return svc, stores
}

func TestSignupAndLogin(t *testing.T) {
	svc, stores := setup(t)
	ctx := context.Background()

	show, err := svc.Signup(ctx, SignupInput{
		ShowName: "Lights on Elm",
		Email:    " Owner@Example.com ",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Len(t, show.ShowToken, 25)
	assert.Equal(t, "lightsonelm", show.ShowSubdomain)
	assert.Equal(t, "owner@example.com", show.Email)
	assert.NotEqual(t, "hunter2hunter2", show.PasswordHash)
	assert.Equal(t, models.ViewerControlModeJukebox, show.Preferences.ViewerControlMode)
	assert.False(t, show.Preferences.ViewerControlEnabled)

	stored := stores.LoadShow(t, show.ShowToken)
	assert.Equal(t, show.ID, stored.ID)

	got, err := svc.Login(ctx, "owner@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, show.ShowToken, got.ShowToken)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{ShowName: "Elm", Email: "a@b.c", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@b.c", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@b.c", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignup_Duplicate(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{ShowName: "Elm Street", Email: "a@b.c", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{ShowName: "Other", Email: "a@b.c", Password: "password1"})
	assert.ErrorIs(t, err, repository.ErrShowExists)

	_, err = svc.Signup(ctx, SignupInput{ShowName: "elm street", Email: "x@y.z", Password: "password1"})
	assert.ErrorIs(t, err, repository.ErrShowExists)
}

func TestSignup_Validates(t *testing.T) {
	svc, _ := setup(t)

	for _, in := range []SignupInput{
		{ShowName: "  ", Email: "a@b.c", Password: "password1"},
		{ShowName: "Elm", Email: "", Password: "password1"},
		{ShowName: "Elm", Email: "a@b.c", Password: "short"},
	} {
		_, err := svc.Signup(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidSignup)
	}
}

func TestSubdomain(t *testing.T) {
	assert.Equal(t, "thegriswolds", Subdomain(" The Griswolds\t"))
}
