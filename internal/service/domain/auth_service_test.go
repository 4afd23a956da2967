package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs-lzh/film-catalog/internal/cache"
	"github.com/qs-lzh/film-catalog/internal/model"
	"github.com/qs-lzh/film-catalog/internal/service"
	"github.com/qs-lzh/film-catalog/internal/validation"
)

func TestRegisterStartsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.auth.Register(ctx, "  Ana@Example.com ", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "ana@example.com", sess.User.Email)

	user, err := f.auth.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, sess.User, *user)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com")

	_, err := f.auth.Register(context.Background(), "ANA@example.com", "other22")
	assert.ErrorIs(t, err, service.ErrDuplicateEmail)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		email, password, field string
	}{
		{"not-an-email", "secret1", "email"},
		{"a@b.co", "abc1", "password"},
		{"a@b.co", "abc 123", "password"},
		{"a@b.co", "1234567", "password"},
		{"a@b.co", "abcdefg", "password"},
	}
	for _, tc := range cases {
		_, err := f.auth.Register(context.Background(), tc.email, tc.password)
		var verr *validation.Error
		require.True(t, errors.As(err, &verr), tc)
		assert.Equal(t, tc.field, verr.Field)
	}
}

func TestLoginUnknownEmailCreatesNoSession(t *testing.T) {
	f := newFixture(t)

	sess, err := f.auth.Login(context.Background(), "ghost@example.com", "secret1")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Nil(t, sess)
	assert.Empty(t, f.redis.Keys())
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ana@example.com")

	_, err := f.auth.Login(ctx, "ana@example.com", "wrong99")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	sess, err := f.auth.Login(ctx, "Ana@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", sess.User.Email)
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.register(t, "ana@example.com")

	require.NoError(t, f.auth.Logout(ctx, sess.Token))
	require.NoError(t, f.auth.Logout(ctx, sess.Token))
	require.NoError(t, f.auth.Logout(ctx, ""))

	user, err := f.auth.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCurrentUserRebuildsStaleCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.register(t, "ana@example.com")

	require.NoError(t, f.kv.Set(ctx, cache.MakeSessionUserKey(sess.Token), model.SessionUser{ID: "someone-else", Email: "x@y.z"}, 0))
	user, err := f.auth.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "ana@example.com", user.Email)

	var cached model.SessionUser
	require.NoError(t, f.kv.Get(ctx, cache.MakeSessionUserKey(sess.Token), &cached))
	assert.Equal(t, sess.User.ID, cached.ID)

	require.NoError(t, f.redis.Set(cache.MakeSessionUserKey(sess.Token), "{corrupt"))
	user, err = f.auth.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, sess.User.ID, user.ID)
}

func TestCurrentUserTearsDownOrphanSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.register(t, "ana@example.com")

	require.NoError(t, f.db.Delete(&model.User{}, "id = ?", sess.User.ID).Error)
	f.redis.Del(cache.MakeSessionUserKey(sess.Token))

	user, err := f.auth.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.False(t, f.redis.Exists(cache.MakeSessionKey(sess.Token)))
}

func TestCurrentUserAnonymous(t *testing.T) {
	f := newFixture(t)
	user, err := f.auth.CurrentUser(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = f.auth.CurrentUser(context.Background(), "unknown-token")
	require.NoError(t, err)
	assert.Nil(t, user)
}
