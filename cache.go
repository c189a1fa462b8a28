package delta

import (
	"math"
	"sync"
)

// lcsCacheCapacity is the default number of memoized subsequence results
// held per differ.
const lcsCacheCapacity = 256

// FNV-1a constants.
const (
	fnvOffset = 14695981039346656037
	fnvPrime  = 1099511628211
)

// hashSampleLimit caps how many elements of an array contribute to its
// cache key.
const hashSampleLimit = 16

// lcsEntry is one memoized longest-common-subsequence result.
type lcsEntry struct {
	lenA, lenB int
	pairs      []lcsPair
}

// lcsCache memoizes subsequence results keyed by a sampling hash of the
// array pair, evicting the oldest entry when full. The hash is only a
// lookup key: callers verify a hit against the actual arrays before using
// it, so a collision can never corrupt a diff.
type lcsCache struct {
	capacity int
	items    map[uint64]*lcsEntry
	order    []uint64
	mutex    sync.RWMutex
}

func newLCSCache(capacity int) *lcsCache {
	if capacity <= 0 {
		capacity = lcsCacheCapacity
	}

	return &lcsCache{
		capacity: capacity,
		items:    make(map[uint64]*lcsEntry),
		order:    make([]uint64, 0, capacity),
	}
}

func (c *lcsCache) get(key uint64) (*lcsEntry, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if e, ok := c.items[key]; ok {
		return e, true
	}

	return nil, false
}

func (c *lcsCache) set(key uint64, e *lcsEntry) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.items[key]; !exists {
		if len(c.items) >= c.capacity {
			// Evict oldest entry.
			delete(c.items, c.order[0])
			c.order = c.order[1:]
		}

		c.order = append(c.order, key)
	}

	c.items[key] = e
}

func (c *lcsCache) clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[uint64]*lcsEntry)
	c.order = c.order[:0]
}

// pairHash derives the cache key for an array pair by FNV-1a hashing both
// lengths and a bounded, evenly spaced sample of each array's elements.
func pairHash(a, b []any) uint64 {
	h := uint64(fnvOffset)

	h = hashInt(h, len(a))
	h = hashInt(h, len(b))
	h = hashArray(h, a)
	h = hashByte(h, 0xff)
	h = hashArray(h, b)

	return h
}

func hashArray(h uint64, s []any) uint64 {
	if len(s) == 0 {
		return hashByte(h, 0)
	}

	step := 1
	if len(s) > hashSampleLimit {
		step = len(s) / hashSampleLimit
	}

	for i := 0; i < len(s); i += step {
		h = hashValue(h, s[i])
	}

	return h
}

// hashValue folds a shallow summary of one element into the hash: scalars
// contribute their value, containers only their kind and size.
func hashValue(h uint64, v any) uint64 {
	if v == nil {
		return hashByte(h, 'n')
	}

	if f, ok := numericValue(v); ok {
		return hashUint64(hashByte(h, 'd'), math.Float64bits(f))
	}

	switch t := v.(type) {
	case bool:
		if t {
			return hashByte(h, 't')
		}

		return hashByte(h, 'f')
	case string:
		h = hashByte(h, 's')
		h = hashInt(h, len(t))

		limit := len(t)
		if limit > hashSampleLimit {
			limit = hashSampleLimit
		}

		for i := 0; i < limit; i++ {
			h = hashByte(h, t[i])
		}

		return h
	case map[string]any:
		return hashInt(hashByte(h, 'm'), len(t))
	case []any:
		return hashInt(hashByte(h, 'a'), len(t))
	default:
		return hashByte(h, 'x')
	}
}

func hashByte(h uint64, b byte) uint64 {
	h ^= uint64(b)
	h *= fnvPrime

	return h
}

func hashUint64(h uint64, v uint64) uint64 {
	for i := 0; i < 8; i++ {
		h = hashByte(h, byte(v>>(8*i)))
	}

	return h
}

func hashInt(h uint64, v int) uint64 {
	return hashUint64(h, uint64(v))
}
