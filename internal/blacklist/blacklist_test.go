package blacklist

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, fields ...logger.Field) {}
func (m *mockLogger) Info(msg string, fields ...logger.Field)  {}
func (m *mockLogger) Warn(msg string, fields ...logger.Field)  {}
func (m *mockLogger) Error(msg string, fields ...logger.Field) {}
func (m *mockLogger) Fatal(msg string, fields ...logger.Field) {}
func (m *mockLogger) With(fields ...logger.Field) logger.Logger {
	return m
}
func (m *mockLogger) Sync() error                 { return nil }
func (m *mockLogger) SetLevel(level logger.Level) {}

type MockBlacklistRepository struct {
	mock.Mock
}

func (m *MockBlacklistRepository) Insert(ctx context.Context, entry *models.BlacklistEntry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlacklistRepository) Exists(ctx context.Context, refreshToken string) (bool, error) {
	args := m.Called(ctx, refreshToken)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlacklistRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestBlacklist_Add(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)
	matchEntry := mock.MatchedBy(func(e *models.BlacklistEntry) bool {
		return e.RefreshToken == "tok" && e.ExpirationDate.Equal(exp)
	})

	tests := []struct {
		name      string
		setupMock func(*MockBlacklistRepository)
		want      bool
		wantErr   bool
	}{
		{
			name: "first add revokes",
			setupMock: func(m *MockBlacklistRepository) {
				m.On("Insert", ctx, matchEntry).Return(true, nil)
			},
			want: true,
		},
		{
			name: "second add is a no-op",
			setupMock: func(m *MockBlacklistRepository) {
				m.On("Insert", ctx, matchEntry).Return(false, nil)
			},
			want: false,
		},
		{
			name: "store failure",
			setupMock: func(m *MockBlacklistRepository) {
				m.On("Insert", ctx, matchEntry).Return(false, apperrors.Internal(fmt.Errorf("db down")))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockBlacklistRepository)
			tt.setupMock(repo)
			bl := New(repo, &mockLogger{})

			got, err := bl.Add(ctx, "tok", exp)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInternal)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestBlacklist_IsBlacklisted(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBlacklistRepository)
	repo.On("Exists", ctx, "revoked").Return(true, nil)
	repo.On("Exists", ctx, "fresh").Return(false, nil)

	bl := New(repo, &mockLogger{})

	revoked, err := bl.IsBlacklisted(ctx, "revoked")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsBlacklisted(ctx, "fresh")
	require.NoError(t, err)
	assert.False(t, revoked)

	repo.AssertExpectations(t)
}

func TestBlacklist_Purge(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := new(MockBlacklistRepository)
	repo.On("DeleteExpired", ctx, now).Return(int64(3), nil)

	removed, err := New(repo, &mockLogger{}).Purge(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	repo.AssertExpectations(t)
}
