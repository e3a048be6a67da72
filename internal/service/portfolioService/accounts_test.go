package portfolioService

import (
	"context"
	"testing"

	"github.com/qrenard/patrimoine/data/repository"
	"github.com/qrenard/patrimoine/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	repo := &fakeRepo{}
	srv := newTestService(repo, &fakeQuoteApi{})

	account, err := srv.CreateAccount(context.Background(), "  Boursorama  ", []int64{1, 3})
	require.NoError(t, err)

	assert.Equal(t, "Boursorama", repo.createdName)
	assert.Equal(t, []int64{1, 3}, repo.createdTypeIDs)
	assert.Equal(t, int64(1), account.ID)
}

func TestCreateAccount_Validation(t *testing.T) {
	srv := newTestService(&fakeRepo{}, &fakeQuoteApi{})

	_, err := srv.CreateAccount(context.Background(), "   ", []int64{1})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = srv.CreateAccount(context.Background(), "Boursorama", nil)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestGetAccount_NotFound(t *testing.T) {
	repo := &fakeRepo{getAccountErr: repository.ErrNotFound}
	srv := newTestService(repo, &fakeQuoteApi{})

	_, err := srv.GetAccount(context.Background(), 42)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateEnvelopeCash_Validation(t *testing.T) {
	srv := newTestService(&fakeRepo{}, &fakeQuoteApi{})

	err := srv.UpdateEnvelopeCash(context.Background(), 0, 1, d("100"))
	assert.ErrorIs(t, err, service.ErrValidation)

	err = srv.UpdateEnvelopeCash(context.Background(), 1, 0, d("100"))
	assert.ErrorIs(t, err, service.ErrValidation)

	err = srv.UpdateEnvelopeCash(context.Background(), 1, 2, d("100"))
	assert.NoError(t, err)
}
