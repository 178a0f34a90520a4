package loyalty

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"gymcore/internal/logger"
)

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// Benefits are the per-tier bonus allotments the loyalty subsystem grants on
// top of the membership type's own quotas.
type Benefits struct {
	AdditionalClassesPerMonth int `json:"additional_classes_per_month"`
	FreeGuestPassesPerMonth   int `json:"free_guest_passes_per_month"`
}

var tierBenefits = map[Tier]Benefits{
	TierBronze:   {AdditionalClassesPerMonth: 0, FreeGuestPassesPerMonth: 0},
	TierSilver:   {AdditionalClassesPerMonth: 2, FreeGuestPassesPerMonth: 1},
	TierGold:     {AdditionalClassesPerMonth: 4, FreeGuestPassesPerMonth: 2},
	TierPlatinum: {AdditionalClassesPerMonth: 8, FreeGuestPassesPerMonth: 4},
}

func (t Tier) Valid() bool {
	_, ok := tierBenefits[t]
	return ok
}

func (t Tier) Benefits() Benefits {
	return tierBenefits[t]
}

// Provider reads a member's current tier. The loyalty subsystem owns the
// data; this core never writes it.
type Provider interface {
	CurrentTier(ctx context.Context, userID int) (Tier, error)
}

const tierKeyPrefix = "loyalty:tier:"

// RedisProvider reads tiers the loyalty subsystem publishes into redis.
// Unknown members default to bronze.
type RedisProvider struct {
	client *redis.Client
}

func NewRedisProvider(client *redis.Client) *RedisProvider {
	return &RedisProvider{client: client}
}

func (p *RedisProvider) CurrentTier(ctx context.Context, userID int) (Tier, error) {
	val, err := p.client.Get(ctx, fmt.Sprintf("%s%d", tierKeyPrefix, userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return TierBronze, nil
		}
		logger.Warnf("Loyalty tier lookup failed for user %d, defaulting to bronze: %v", userID, err)
		return TierBronze, nil
	}

	tier := Tier(val)
	if !tier.Valid() {
		logger.Warnf("Unknown loyalty tier %q for user %d, defaulting to bronze", val, userID)
		return TierBronze, nil
	}

	return tier, nil
}

// StaticProvider returns a fixed tier. Used in tests and as a fallback when
// redis is not configured.
type StaticProvider struct {
	Tier Tier
}

func (p StaticProvider) CurrentTier(ctx context.Context, userID int) (Tier, error) {
	if !p.Tier.Valid() {
		return TierBronze, nil
	}
	return p.Tier, nil
}
