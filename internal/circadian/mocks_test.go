package circadian

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/saaga0h/jeeves-circadian/pkg/mqtt"
	"github.com/saaga0h/jeeves-circadian/pkg/redis"
)

type publishedMessage struct {
	topic    string
	retained bool
	payload  []byte
}

// Mock MQTT client that records publishes and subscriptions
type mockMQTT struct {
	mu            sync.Mutex
	connected     bool
	published     []publishedMessage
	subscriptions map[string]mqtt.MessageHandler
}

func newMockMQTT() *mockMQTT {
	return &mockMQTT{subscriptions: make(map[string]mqtt.MessageHandler)}
}

func (m *mockMQTT) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

func (m *mockMQTT) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

func (m *mockMQTT) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[topic] = handler
	return nil
}

func (m *mockMQTT) Publish(topic string, qos byte, retained bool, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMessage{topic: topic, retained: retained, payload: payload})
	return nil
}

func (m *mockMQTT) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockMQTT) messagesOn(topic string) []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []publishedMessage
	for _, msg := range m.published {
		if msg.topic == topic {
			out = append(out, msg)
		}
	}
	return out
}

type mockMessage struct {
	topic   string
	payload []byte
}

func (m *mockMessage) Topic() string   { return m.topic }
func (m *mockMessage) Payload() []byte { return m.payload }
func (m *mockMessage) Ack()            {}

// Mock Redis client backed by maps
type mockRedis struct {
	mu      sync.Mutex
	strings map[string]string
	hashes  map[string]map[string]string
	ttls    map[string]time.Duration
}

func newMockRedis() *mockRedis {
	return &mockRedis{
		strings: make(map[string]string),
		hashes:  make(map[string]map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (r *mockRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch v := value.(type) {
	case []byte:
		r.strings[key] = string(v)
	case string:
		r.strings[key] = v
	default:
		r.strings[key] = fmt.Sprint(v)
	}
	r.ttls[key] = ttl
	return nil
}

func (r *mockRedis) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.strings[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return v, nil
}

func (r *mockRedis) HSet(ctx context.Context, key string, values map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, ok := r.hashes[key]
	if !ok {
		hash = make(map[string]string)
		r.hashes[key] = hash
	}
	for field, v := range values {
		hash[field] = fmt.Sprint(v)
	}
	return nil
}

func (r *mockRedis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, ok := r.hashes[key]
	if !ok {
		return nil, redis.ErrNotFound
	}
	out := make(map[string]string, len(hash))
	for k, v := range hash {
		out[k] = v
	}
	return out, nil
}

func (r *mockRedis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ttls[key] = ttl
	return nil
}

func (r *mockRedis) Ping(ctx context.Context) error { return nil }
func (r *mockRedis) Close() error                   { return nil }
