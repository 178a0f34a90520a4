package loyalty

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisProvider_CurrentTier(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock redismock.ClientMock)
		expected Tier
	}{
		{
			name: "published tier is returned",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("loyalty:tier:7").SetVal("gold")
			},
			expected: TierGold,
		},
		{
			name: "unknown member defaults to bronze",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("loyalty:tier:7").RedisNil()
			},
			expected: TierBronze,
		},
		{
			name: "redis error degrades to bronze instead of failing",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("loyalty:tier:7").SetErr(errors.New("connection refused"))
			},
			expected: TierBronze,
		},
		{
			name: "garbage tier value defaults to bronze",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("loyalty:tier:7").SetVal("diamond")
			},
			expected: TierBronze,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := redismock.NewClientMock()
			tt.setup(mock)

			provider := NewRedisProvider(client)
			tier, err := provider.CurrentTier(context.Background(), 7)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, tier)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStaticProvider(t *testing.T) {
	tier, err := StaticProvider{Tier: TierPlatinum}.CurrentTier(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, TierPlatinum, tier)

	tier, err = StaticProvider{}.CurrentTier(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, TierBronze, tier)
}

func TestTierBenefits(t *testing.T) {
	assert.Equal(t, Benefits{}, TierBronze.Benefits())
	assert.Equal(t, Benefits{AdditionalClassesPerMonth: 2, FreeGuestPassesPerMonth: 1}, TierSilver.Benefits())
	assert.Equal(t, Benefits{AdditionalClassesPerMonth: 8, FreeGuestPassesPerMonth: 4}, TierPlatinum.Benefits())

	assert.True(t, TierGold.Valid())
	assert.False(t, Tier("diamond").Valid())
}
