// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/bigpot/playerd/internal/auth"
)

// MockPlayerRepository mocks auth.PlayerRepository.
type MockPlayerRepository struct {
	mock.Mock
}

// NewMockPlayerRepository creates a MockPlayerRepository whose
// expectations are asserted at test cleanup.
func NewMockPlayerRepository(t *testing.T) *MockPlayerRepository {
	t.Helper()
	m := &MockPlayerRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPlayerRepository) Create(ctx context.Context, player *auth.Player) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetByUsername(ctx context.Context, username string) (*auth.Player, error) {
	args := m.Called(ctx, username)
	if p, ok := args.Get(0).(*auth.Player); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPlayerRepository) GetByIdentity(ctx context.Context, ident auth.Identity) (*auth.Player, error) {
	args := m.Called(ctx, ident)
	if p, ok := args.Get(0).(*auth.Player); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPlayerRepository) DeleteByIdentity(ctx context.Context, ident auth.Identity) error {
	args := m.Called(ctx, ident)
	return args.Error(0)
}

// MockPasswordHasher mocks auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher whose expectations
// are asserted at test cleanup.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	t.Helper()
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, digest string) (bool, error) {
	args := m.Called(password, digest)
	return args.Bool(0), args.Error(1)
}

// MockWalletProvisioner mocks auth.WalletProvisioner.
type MockWalletProvisioner struct {
	mock.Mock
}

// NewMockWalletProvisioner creates a MockWalletProvisioner whose
// expectations are asserted at test cleanup.
func NewMockWalletProvisioner(t *testing.T) *MockWalletProvisioner {
	t.Helper()
	m := &MockWalletProvisioner{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockWalletProvisioner) Provision(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
