package settings

import "sync"

// MemoryProgramCache is a concurrency-safe ProgramCache backed by sync.Map.
type MemoryProgramCache struct {
	programs sync.Map
}

// NewProgramCache returns an empty in-memory program cache.
func NewProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{}
}

func (c *MemoryProgramCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *MemoryProgramCache) Set(key string, value any) {
	c.programs.Store(key, value)
}
