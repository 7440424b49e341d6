package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	redis2 "github.com/TOPBARD/Connect-Hub/service/storage/redis"
)

// Best-effort presence mirror. The in-process registry owned by the gateway
// stays authoritative for delivery decisions; this TTL key only lets the REST
// surface (and other replicas) answer "is this user online" cheaply. A dead
// process stops renewing and the key ages out.

// presence key: ch:presence:<user>
// Value: connection id, TTL controls the online validity period
func presenceKey(user string) string { return "ch:presence:" + user }

// PresenceOnline sets the user as online and renews the TTL.
func PresenceOnline(ctx context.Context, user, connID string, ttl time.Duration) error {
	if !redis2.Initialized() {
		return nil
	}
	return redis2.GetRedis().Set(ctx, presenceKey(user), connID, ttl).Err()
}

// PresenceOffline actively sets the user offline (deletes the key).
func PresenceOffline(ctx context.Context, user string) error {
	if !redis2.Initialized() {
		return nil
	}
	return redis2.GetRedis().Del(ctx, presenceKey(user)).Err()
}

// PresenceLookup checks whether the user is online.
func PresenceLookup(ctx context.Context, user string) (connID string, online bool, err error) {
	if !redis2.Initialized() {
		return "", false, nil
	}
	val, err := redis2.GetRedis().Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
