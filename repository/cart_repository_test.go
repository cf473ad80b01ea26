package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	apperrors "github.com/codmenta/Merify/errors"
	"github.com/codmenta/Merify/models"
	"github.com/codmenta/Merify/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCart_UnknownUserIsEmpty(t *testing.T) {
	repo := repository.NewCartRepository(newFileStore(t))

	items, err := repo.LoadCart(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSaveCart_PreservesOtherUsers(t *testing.T) {
	repo := repository.NewCartRepository(newFileStore(t))
	ctx := context.Background()

	require.NoError(t, repo.SaveCart(ctx, "a@x.com", []models.CartItem{{ID: 1, ProductID: 7, Quantity: 3}}))
	require.NoError(t, repo.SaveCart(ctx, "b@x.com", []models.CartItem{{ID: 1, ProductID: 9, Quantity: 1}}))
	require.NoError(t, repo.SaveCart(ctx, "a@x.com", []models.CartItem{}))

	a, err := repo.LoadCart(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, a)

	b, err := repo.LoadCart(ctx, "b@x.com")
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Equal(t, 9, b[0].ProductID)
}

func TestSaveCart_Validation(t *testing.T) {
	repo := repository.NewCartRepository(newFileStore(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		userID string
		items  []models.CartItem
	}{
		{"blank user", "  ", []models.CartItem{}},
		{"nil items", "a@x.com", nil},
		{"zero quantity", "a@x.com", []models.CartItem{{ID: 1, ProductID: 7, Quantity: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.SaveCart(ctx, tt.userID, tt.items)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestLoadCart_ReturnsCopy(t *testing.T) {
	repo := repository.NewCartRepository(newFileStore(t))
	ctx := context.Background()
	require.NoError(t, repo.SaveCart(ctx, "a@x.com", []models.CartItem{{ID: 1, ProductID: 7, Quantity: 3}}))

	items, err := repo.LoadCart(ctx, "a@x.com")
	require.NoError(t, err)
	items[0].Quantity = 99

	again, err := repo.LoadCart(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 3, again[0].Quantity)
}

func TestSaveCart_ConcurrentUsersAreAllKept(t *testing.T) {
	repo := repository.NewCartRepository(newFileStore(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user%d@x.com", i)
			assert.NoError(t, repo.SaveCart(ctx, user, []models.CartItem{{ID: 1, ProductID: i, Quantity: 1}}))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		items, err := repo.LoadCart(ctx, fmt.Sprintf("user%d@x.com", i))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, i, items[0].ProductID)
	}
}

func TestCartRepository_StoreFailure(t *testing.T) {
	repo := repository.NewCartRepository(failingStore{})

	_, err := repo.LoadCart(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, apperrors.ErrStore)

	err = repo.SaveCart(context.Background(), "a@x.com", []models.CartItem{})
	assert.ErrorIs(t, err, apperrors.ErrStore)
}
