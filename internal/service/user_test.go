package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(f.db)

	u, err := users.Register(f.ctx, "  Bob@Example.com ", "Bob", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", u.Email)
	assert.NotEqual(t, "s3cret-pass", u.Password)

	got, err := users.Authenticate(f.ctx, "bob@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.Authenticate(f.ctx, "bob@example.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = users.Authenticate(f.ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	_, err := NewUserService(f.db).Register(f.ctx, "OWNER@example.com", "Again", "password123")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}
