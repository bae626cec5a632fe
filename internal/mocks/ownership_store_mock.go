package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/repository"
)

// MockStoryOwnershipStore is a mock type for the StoryOwnershipStore type
type MockStoryOwnershipStore struct {
	mock.Mock
}

// Record provides a mock function with given fields: ctx, entry
func (_m *MockStoryOwnershipStore) Record(ctx context.Context, entry repository.OwnedStory) error {
	ret := _m.Called(ctx, entry)
	return ret.Error(0)
}

// ListByOwner provides a mock function with given fields: ctx, ownerID
func (_m *MockStoryOwnershipStore) ListByOwner(ctx context.Context, ownerID string) ([]repository.OwnedStory, error) {
	ret := _m.Called(ctx, ownerID)

	var r0 []repository.OwnedStory
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]repository.OwnedStory)
	}
	return r0, ret.Error(1)
}

// NewMockStoryOwnershipStore creates a new instance of MockStoryOwnershipStore.
// The first argument is typically a *testing.T value.
func NewMockStoryOwnershipStore(t interface {
	mock.TestingT
	Helper()
}) *MockStoryOwnershipStore {
	m := &MockStoryOwnershipStore{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.StoryOwnershipStore = (*MockStoryOwnershipStore)(nil)
