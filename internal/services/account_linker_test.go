package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authbot/internal/models"
)

func TestLinker_LinkAndRelink(t *testing.T) {
	clock := newTestClock()
	ledger, _ := newTestLedger(t, clock, WithCodeGenerator(seqCodes("c1", "c2")))
	users := newFakeUserRepo()
	users.add(models.User{ID: 42, Email: "bob@x.io", Name: "Bob"})
	linker := NewAccountLinker(ledger, users, nil)
	ctx := context.Background()

	_, err := ledger.Issue(ctx, 42)
	require.NoError(t, err)
	_, err = ledger.Issue(ctx, 42)
	require.NoError(t, err)

	s, err := linker.Link(ctx, "c1", "555")
	require.NoError(t, err)
	assert.Equal(t, 42, s.ID)
	assert.Equal(t, "Bob", s.Name)
	require.NotNil(t, s.ChannelAddress)
	assert.Equal(t, "555", *s.ChannelAddress)

	s, err = linker.Link(ctx, "c2", " 777 ")
	require.NoError(t, err)
	assert.Equal(t, "777", *s.ChannelAddress)

	u, err := users.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "777", *u.ChannelAddress)
}

func TestLinker_ErrorsFromLedger(t *testing.T) {
	clock := newTestClock()
	ledger, _ := newTestLedger(t, clock, WithCodeGenerator(seqCodes("late")))
	users := newFakeUserRepo()
	users.add(models.User{ID: 1, Name: "A"})
	linker := NewAccountLinker(ledger, users, nil)
	ctx := context.Background()

	_, err := linker.Link(ctx, "missing", "555")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ledger.Issue(ctx, 1)
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	_, err = linker.Link(ctx, "late", "555")
	assert.ErrorIs(t, err, ErrExpired)

	u, _ := users.GetByID(ctx, 1)
	assert.Nil(t, u.ChannelAddress)
}

func TestLinker_AccountGone(t *testing.T) {
	clock := newTestClock()
	ledger, repo := newTestLedger(t, clock, WithCodeGenerator(seqCodes("orphan")))
	users := newFakeUserRepo()
	linker := NewAccountLinker(ledger, users, nil)
	ctx := context.Background()

	_, err := ledger.Issue(ctx, 99)
	require.NoError(t, err)

	_, err = linker.Link(ctx, "orphan", "555")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Zero(t, repo.Len(), "code is spent even when the owner is gone")
}

func TestLinker_EmptyAddress(t *testing.T) {
	clock := newTestClock()
	ledger, repo := newTestLedger(t, clock, WithCodeGenerator(seqCodes("keep")))
	linker := NewAccountLinker(ledger, newFakeUserRepo(), nil)

	_, err := ledger.Issue(context.Background(), 1)
	require.NoError(t, err)

	_, err = linker.Link(context.Background(), "keep", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 1, repo.Len())
}

func TestLinker_StorageError(t *testing.T) {
	clock := newTestClock()
	ledger, _ := newTestLedger(t, clock, WithCodeGenerator(seqCodes("c")))
	users := newFakeUserRepo()
	users.err = errBoom
	linker := NewAccountLinker(ledger, users, nil)

	_, err := ledger.Issue(context.Background(), 1)
	require.NoError(t, err)

	_, err = linker.Link(context.Background(), "c", "555")
	assert.ErrorIs(t, err, ErrStorage)
}
