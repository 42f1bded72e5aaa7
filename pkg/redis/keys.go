package redis

import "fmt"

// Key construction helpers for circadian state

// LatestReadingKey returns the key holding the last published reading (string, JSON)
// Pattern: circadian:latest:{site}
func LatestReadingKey(site string) string {
	return fmt.Sprintf("circadian:latest:%s", site)
}

// PublishStateKey returns the key tracking publish bookkeeping (hash)
// Pattern: meta:circadian:{site}
func PublishStateKey(site string) string {
	return fmt.Sprintf("meta:circadian:%s", site)
}
