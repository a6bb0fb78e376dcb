package testutil

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// InMemoryRedisClient is a stateful xredis.Client for tests that assert cache
// behavior across calls (population, invalidation, ranking). TTLs are ignored
// since the invite cache never sets one.
type InMemoryRedisClient struct {
	mutex sync.Mutex
	objs  map[string]string
	zsets map[string]map[string]float64
}

func NewInMemoryRedisClient() *InMemoryRedisClient {
	return &InMemoryRedisClient{
		objs:  make(map[string]string),
		zsets: make(map[string]map[string]float64),
	}
}

func (c *InMemoryRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.objs[key]; ok {
		return true, nil
	}

	_, ok := c.zsets[key]
	return ok, nil
}

func (c *InMemoryRedisClient) Del(ctx context.Context, key ...string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, k := range key {
		delete(c.objs, k)
		delete(c.zsets, k)
	}

	return nil
}

func (c *InMemoryRedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var result []string
	for k := range c.objs {
		if ok, _ := path.Match(pattern, k); ok {
			result = append(result, k)
		}
	}

	for k := range c.zsets {
		if ok, _ := path.Match(pattern, k); ok {
			result = append(result, k)
		}
	}

	return result, nil
}

func (c *InMemoryRedisClient) ZAdd(ctx context.Context, key string, z redis.Z) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.zsets[key]; !ok {
		c.zsets[key] = make(map[string]float64)
	}

	c.zsets[key][z.Member.(string)] = z.Score
	return nil
}

func (c *InMemoryRedisClient) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]redis.Z, error) {
	all := c.sortedZ(key)
	if offset >= len(all) {
		return nil, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], nil
}

func (c *InMemoryRedisClient) ZRevRank(
	ctx context.Context, key string, member string,
) (uint64, error) {
	for i, z := range c.sortedZ(key) {
		if z.Member == member {
			return uint64(i), nil
		}
	}

	return 0, redis.Nil
}

func (c *InMemoryRedisClient) SetObj(
	ctx context.Context, key string, obj any, ttl time.Duration,
) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.objs[key] = string(b)
	return nil
}

func (c *InMemoryRedisClient) GetObj(ctx context.Context, key string, v any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	s, ok := c.objs[key]
	if !ok {
		return redis.Nil
	}

	return json.Unmarshal([]byte(s), v)
}

func (c *InMemoryRedisClient) sortedZ(key string) []redis.Z {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var result []redis.Z
	for member, score := range c.zsets[key] {
		result = append(result, redis.Z{Member: member, Score: score})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}

		// Redis breaks score ties by reverse lexical order of members.
		return result[i].Member.(string) > result[j].Member.(string)
	})

	return result
}
