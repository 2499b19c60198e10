// Package mocks provides mock implementations for testing.
// This file contains a manual mock of the da.BlobStore interface.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/evstack/zerog-da/da"
)

var _ da.BlobStore = (*MockBlobStore)(nil)

// NewMockBlobStore creates a new instance of MockBlobStore.
// It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockBlobStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBlobStore {
	m := &MockBlobStore{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MockBlobStore is a mock that implements the da.BlobStore interface.
type MockBlobStore struct {
	mock.Mock
}

// Publish implements the da.DA interface.
func (m *MockBlobStore) Publish(ctx context.Context, blob da.Blob) (string, error) {
	args := m.Called(ctx, blob)
	return args.String(0), args.Error(1)
}

// Verify implements the da.DA interface.
func (m *MockBlobStore) Verify(ctx context.Context, key string) (da.VerificationStatus, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(da.VerificationStatus), args.Error(1)
}

// Retrieve implements the da.Retriever interface.
func (m *MockBlobStore) Retrieve(ctx context.Context, key string) (da.Blob, error) {
	args := m.Called(ctx, key)
	blob, _ := args.Get(0).(da.Blob)
	return blob, args.Error(1)
}
