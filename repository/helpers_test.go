package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/codmenta/Merify/database"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFileStore(t *testing.T) *database.FileStore {
	t.Helper()
	store, err := database.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

// failingStore fails every call, standing in for a broken disk.
type failingStore struct{}

func (failingStore) Load(context.Context, string, any, any) error {
	return errors.New("permission denied")
}

func (failingStore) Save(context.Context, string, any) error {
	return errors.New("no space left on device")
}
