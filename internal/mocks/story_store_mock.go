package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"storybook-server/internal/model"
	"storybook-server/internal/repository"
)

// MockStoryStore is a mock type for the StoryStore type
type MockStoryStore struct {
	mock.Mock
}

// Set provides a mock function with given fields: ctx, doc, ttl
func (_m *MockStoryStore) Set(ctx context.Context, doc *model.StoryDocument, ttl time.Duration) error {
	ret := _m.Called(ctx, doc, ttl)
	return ret.Error(0)
}

// Get provides a mock function with given fields: ctx, id
func (_m *MockStoryStore) Get(ctx context.Context, id string) (*model.StoryDocument, error) {
	ret := _m.Called(ctx, id)

	var r0 *model.StoryDocument
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.StoryDocument)
	}
	return r0, ret.Error(1)
}

// Update provides a mock function with given fields: ctx, doc
func (_m *MockStoryStore) Update(ctx context.Context, doc *model.StoryDocument) error {
	ret := _m.Called(ctx, doc)
	return ret.Error(0)
}

// Close provides a mock function
func (_m *MockStoryStore) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockStoryStore creates a new instance of MockStoryStore.
// The first argument is typically a *testing.T value.
func NewMockStoryStore(t interface {
	mock.TestingT
	Helper()
}) *MockStoryStore {
	m := &MockStoryStore{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.StoryStore = (*MockStoryStore)(nil)

// MockStoreOpener is a mock type for the StoreOpener type
type MockStoreOpener struct {
	mock.Mock
}

// Open provides a mock function with given fields: ctx
func (_m *MockStoreOpener) Open(ctx context.Context) (repository.StoryStore, error) {
	ret := _m.Called(ctx)

	var r0 repository.StoryStore
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(repository.StoryStore)
	}
	return r0, ret.Error(1)
}

// Check provides a mock function
func (_m *MockStoreOpener) Check() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockStoreOpener creates a new instance of MockStoreOpener.
// The first argument is typically a *testing.T value.
func NewMockStoreOpener(t interface {
	mock.TestingT
	Helper()
}) *MockStoreOpener {
	m := &MockStoreOpener{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.StoreOpener = (*MockStoreOpener)(nil)
