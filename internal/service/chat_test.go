package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
)

func TestChatPostAndList(t *testing.T) {
	f := newFixture(t)
	chat := NewChatService(f.db, f.pub)

	for _, body := range []string{"first", "  second  ", "third"} {
		_, err := chat.Post(f.ctx, f.company.ID, f.project.ID, f.owner.ID, body)
		require.NoError(t, err)
	}

	msgs, err := chat.List(f.ctx, f.company.ID, f.project.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Body)
	assert.Equal(t, "second", msgs[1].Body)

	page, err := chat.List(f.ctx, f.company.ID, f.project.ID, 1, msgs[2].ID)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Body)

	assert.Equal(t, "company.1.project.1.chat", f.pub.Subjects()[0])
}

func TestChatRejectsBadMessages(t *testing.T) {
	f := newFixture(t)
	chat := NewChatService(f.db, f.pub)

	for _, body := range []string{"", "   ", strings.Repeat("x", MaxMessageLength+1)} {
		_, err := chat.Post(f.ctx, f.company.ID, f.project.ID, f.owner.ID, body)
		_, ok := apperr.AsValidation(err)
		assert.True(t, ok)
	}
	assert.Empty(t, f.pub.Subjects())
}

func TestChatIsCompanyScoped(t *testing.T) {
	f := newFixture(t)
	chat := NewChatService(f.db, f.pub)
	other := f.user(t, "other@example.com")
	otherCompany, _ := f.tenant(t, other.ID, "Other Co")

	_, err := chat.Post(f.ctx, otherCompany.ID, f.project.ID, other.ID, "hello")
	assert.True(t, apperr.IsNotFound(err))

	_, err = chat.List(f.ctx, otherCompany.ID, f.project.ID, 10, 0)
	assert.True(t, apperr.IsNotFound(err))
}
