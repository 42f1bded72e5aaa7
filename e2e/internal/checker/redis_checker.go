package checker

import (
	"context"
	"errors"
	"fmt"

	"github.com/saaga0h/jeeves-circadian/e2e/internal/scenario"
	"github.com/saaga0h/jeeves-circadian/pkg/redis"
)

// CheckRedisExpectation validates a Redis hash field against its expectation
func CheckRedisExpectation(ctx context.Context, client redis.Client, check scenario.RedisCheck) (bool, string, interface{}) {
	fields, err := client.HGetAll(ctx, check.Key)
	if errors.Is(err, redis.ErrNotFound) {
		return false, fmt.Sprintf("key %q not found in Redis", check.Key), nil
	}
	if err != nil {
		return false, fmt.Sprintf("Redis error: %v", err), nil
	}

	value, ok := fields[check.Field]
	if !ok {
		return false, fmt.Sprintf("key %q has no field %q", check.Key, check.Field), nil
	}

	if matches, reason := MatchesExpectation(value, check.Expected); !matches {
		return false, fmt.Sprintf("%s.%s: %s", check.Key, check.Field, reason), value
	}

	return true, "", value
}
