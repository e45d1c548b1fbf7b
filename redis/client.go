// Package redis stores task documents shared with the other services of the
// distributed deployment. Documents are JSON values; fields this service
// does not know about are preserved on update.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
)

type DB int
type ReleaseLock func() error

var ErrNotFound = errors.New("redis key not found")

type Client struct {
	client         redis.UniversalClient
	lockExpiration time.Duration
}

var ctx = context.Background()

type Config struct {
	LockExpirationSeconds   int     `envconfig:"DPE_REDIS_LOCK_EXPIRATION" default:"3"`
	Host                    string  `envconfig:"DPE_REDIS_HOST" required:"true"`
	Port                    string  `envconfig:"DPE_REDIS_PORT" required:"true"`
	HASentinelPort          string  `envconfig:"DPE_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName    string  `envconfig:"DPE_REDIS_HA_MASTER_NAME" default:"mymaster"`
	Password                string  `envconfig:"DPE_REDIS_AUTH_PASSWORD" default:""`
	AuthRequired            bool    `envconfig:"DPE_REDIS_AUTH_REQUIRED" default:"false"`
	HAMode                  bool    `envconfig:"DPE_REDIS_HA_MODE" default:"false"`
	HASentinelSocketTimeout float32 `envconfig:"DPE_REDIS_SOCKET_TIMEOUT" default:"0.5"`
}

func NewClient(db DB) (Client, error) {
	cfg, err := readEnvironment()
	if err != nil {
		return Client{}, err
	}
	var client redis.UniversalClient
	if cfg.HAMode {
		client = createFailoverClient(cfg, db)
	} else {
		client = createClient(cfg, db)
	}
	return NewWithClient(client, time.Duration(cfg.LockExpirationSeconds)*time.Second), nil
}

// NewWithClient wraps an existing connection.
func NewWithClient(client redis.UniversalClient, lockExpiration time.Duration) Client {
	return Client{client: client, lockExpiration: lockExpiration}
}

func createFailoverClient(cfg *Config, db DB) *redis.ClusterClient {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)
	timeout := time.Duration(float64(cfg.HASentinelSocketTimeout) * float64(time.Second))
	options := redis.FailoverOptions{
		SentinelAddrs: []string{addr},
		ReadTimeout:   timeout,
		WriteTimeout:  timeout,
		MaxRetries:    6,
		DB:            int(db),
		MasterName:    cfg.HASentinelMasterName,
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewFailoverClusterClient(&options)
}

func createClient(cfg *Config, db DB) *redis.Client {
	options := redis.Options{
		Addr:       fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		MaxRetries: 6,
		DB:         int(db),
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewClient(&options)
}

func (client *Client) getRaw(redisKey string) ([]byte, error) {
	b, err := client.client.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, redisKey)
	}
	return b, err
}

// GetDocument decodes the JSON value at redisKey into doc.
func (client *Client) GetDocument(redisKey string, doc interface{}) error {
	b, err := client.getRaw(redisKey)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, doc); err != nil {
		return fmt.Errorf("decode %s: %w", redisKey, err)
	}
	return nil
}

// UpdateDocument reads the value at redisKey into doc under a lock, calls
// update and writes back only the fields update changed, as a JSON merge
// patch over the stored value.
func (client *Client) UpdateDocument(redisKey string, doc interface{}, update func()) (err error) {
	releaseLock, err := client.Lock(redisKey)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := releaseLock(); err == nil {
			err = releaseErr
		}
	}()

	raw, err := client.getRaw(redisKey)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(raw, doc); err != nil {
		return fmt.Errorf("decode %s: %w", redisKey, err)
	}
	before, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	update()
	after, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	merged, err := mergeChanges(raw, before, after)
	if err != nil {
		return fmt.Errorf("merge %s: %w", redisKey, err)
	}
	return client.SetRaw(redisKey, merged)
}

func mergeChanges(raw []byte, before []byte, after []byte) ([]byte, error) {
	patch, err := jsonpatch.CreateMergePatch(before, after)
	if err != nil {
		return nil, err
	}
	return jsonpatch.MergePatch(raw, patch)
}

func (client *Client) Lock(redisKey string) (ReleaseLock, error) {
	locker := redislock.New(client.client)
	strategy := redislock.LimitRetry(redislock.LinearBackoff(time.Second), 20)
	lockKey := fmt.Sprintf("lock:%s", redisKey)
	lock, err := locker.Obtain(ctx, lockKey, client.lockExpiration, &redislock.Options{RetryStrategy: strategy})
	if err != nil {
		return nil, err
	}
	return func() error {
		return lock.Release(ctx)
	}, nil
}

// SaveDoc replaces the value at redisKey with doc.
func (client *Client) SaveDoc(redisKey string, doc interface{}) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return client.SetRaw(redisKey, b)
}

func (client *Client) SetRaw(redisKey string, value []byte) error {
	return client.client.Set(ctx, redisKey, value, 0).Err()
}

func (client *Client) Close() error {
	return client.client.Close()
}

func readEnvironment() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
