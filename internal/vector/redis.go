package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	vectorKeyPrefix = "vectors:"
	namespaceSetKey = "vectors:namespaces"
)

// RedisStore persists vectors as JSON values in one hash per
// namespace, with a set tracking known namespaces. Similarity search
// loads the namespace and scores client-side; namespaces are bounded
// by the per-document page cap, so a full scan stays cheap.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func nsKey(namespace string) string {
	return vectorKeyPrefix + namespace
}

func (s *RedisStore) Upsert(ctx context.Context, namespace string, vectors []Vector) error {
	if len(vectors) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(vectors))
	for _, v := range vectors {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal vector %s: %w", v.ID, err)
		}
		fields[v.ID] = raw
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, nsKey(namespace), fields)
	pipe.SAdd(ctx, namespaceSetKey, namespace)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("upsert namespace %s: %w", namespace, err)
	}
	return nil
}

func (s *RedisStore) Query(ctx context.Context, namespace string, values []float32, topK int) ([]Match, error) {
	vectors, err := s.loadNamespace(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []Match{}, nil
	}

	matches := make([]Match, 0, len(vectors))
	for _, v := range vectors {
		matches = append(matches, Match{Vector: v, Score: CosineSimilarity(values, v.Values)})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Metadata.ChunkIndex < matches[j].Metadata.ChunkIndex
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *RedisStore) FetchOne(ctx context.Context, namespace string) (*Vector, error) {
	vectors, err := s.loadNamespace(ctx, namespace)
	if err != nil {
		return nil, err
	}
	// Pick the lowest chunk index for a stable answer.
	best := vectors[0]
	for _, v := range vectors[1:] {
		if v.Metadata.ChunkIndex < best.Metadata.ChunkIndex {
			best = v
		}
	}
	return &best, nil
}

func (s *RedisStore) Stats(ctx context.Context) ([]NamespaceStat, error) {
	namespaces, err := s.rdb.SMembers(ctx, namespaceSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	sort.Strings(namespaces)

	stats := make([]NamespaceStat, 0, len(namespaces))
	for _, ns := range namespaces {
		count, err := s.rdb.HLen(ctx, nsKey(ns)).Result()
		if err != nil {
			return nil, fmt.Errorf("count namespace %s: %w", ns, err)
		}
		if count == 0 {
			continue
		}
		stats = append(stats, NamespaceStat{Namespace: ns, VectorCount: int(count)})
	}
	return stats, nil
}

func (s *RedisStore) DeleteNamespace(ctx context.Context, namespace string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, nsKey(namespace))
	pipe.SRem(ctx, namespaceSetKey, namespace)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete namespace %s: %w", namespace, err)
	}
	return nil
}

func (s *RedisStore) loadNamespace(ctx context.Context, namespace string) ([]Vector, error) {
	raw, err := s.rdb.HGetAll(ctx, nsKey(namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("load namespace %s: %w", namespace, err)
	}
	if len(raw) == 0 {
		return nil, ErrNamespaceNotFound
	}

	vectors := make([]Vector, 0, len(raw))
	for id, val := range raw {
		var v Vector
		if err := json.Unmarshal([]byte(val), &v); err != nil {
			return nil, fmt.Errorf("unmarshal vector %s: %w", id, err)
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}
