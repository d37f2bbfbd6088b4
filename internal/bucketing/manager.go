package bucketing

import (
	"fmt"
	"hash"
	"sync"

	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"

	"privacyguard/internal/config"
)

// BucketingManager assigns owners to Scylla partition buckets so that one
// very app-happy user cannot produce a hot partition. Bucket assignment must
// be stable for the lifetime of the deployment.
type BucketingManager struct {
	userBuckets int
	hasherPool  sync.Pool
}

func NewBucketingManager(cfg *config.Config) *BucketingManager {
	bm := &BucketingManager{
		userBuckets: cfg.Bucketing.UserBuckets,
	}

	// Pool of hash functions to avoid allocation overhead on the hot path
	bm.hasherPool = sync.Pool{
		New: func() interface{} {
			return murmur3.New64()
		},
	}

	return bm
}

// AppBucket returns the consistent bucket (0 to userBuckets-1) for an owner.
func (bm *BucketingManager) AppBucket(userID interface{}) int {
	var idStr string

	switch v := userID.(type) {
	case string:
		idStr = v
	case uuid.UUID:
		idStr = v.String()
	default:
		idStr = fmt.Sprintf("%v", v)
	}

	return bm.getBucket(idStr, bm.userBuckets)
}

func (bm *BucketingManager) UserBuckets() int {
	return bm.userBuckets
}

func (bm *BucketingManager) getBucket(key string, numBuckets int) int {
	if numBuckets <= 0 {
		return 0
	}
	return int(bm.getHash(key) % uint64(numBuckets))
}

func (bm *BucketingManager) getHash(key string) uint64 {
	hasher := bm.hasherPool.Get().(hash.Hash64)
	defer bm.hasherPool.Put(hasher)

	hasher.Reset()
	hasher.Write([]byte(key))
	return hasher.Sum64()
}
