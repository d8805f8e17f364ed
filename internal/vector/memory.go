package vector

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store used for local development and
// tests. Behavior mirrors RedisStore.
type MemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]Vector
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{namespaces: make(map[string]map[string]Vector)}
}

func (s *MemoryStore) Upsert(ctx context.Context, namespace string, vectors []Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]Vector, len(vectors))
		s.namespaces[namespace] = ns
	}
	for _, v := range vectors {
		ns[v.ID] = v
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, namespace string, values []float32, topK int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[namespace]
	if !ok || len(ns) == 0 {
		return nil, ErrNamespaceNotFound
	}
	if topK <= 0 {
		return []Match{}, nil
	}

	matches := make([]Match, 0, len(ns))
	for _, v := range ns {
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

func (s *MemoryStore) FetchOne(ctx context.Context, namespace string) (*Vector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[namespace]
	if !ok || len(ns) == 0 {
		return nil, ErrNamespaceNotFound
	}
	var best *Vector
	for _, v := range ns {
		v := v
		if best == nil || v.Metadata.ChunkIndex < best.Metadata.ChunkIndex {
			best = &v
		}
	}
	return best, nil
}

func (s *MemoryStore) Stats(ctx context.Context) ([]NamespaceStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make([]NamespaceStat, 0, len(s.namespaces))
	for ns, vectors := range s.namespaces {
		if len(vectors) == 0 {
			continue
		}
		stats = append(stats, NamespaceStat{Namespace: ns, VectorCount: len(vectors)})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Namespace < stats[j].Namespace })
	return stats, nil
}

func (s *MemoryStore) DeleteNamespace(ctx context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
	return nil
}
