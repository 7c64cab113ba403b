package utils

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmdatafocus/sales_backend/config"
)

var mutex sync.Mutex

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

/* Redis */

// GetSequence hands out the next document sequence number for T
// (orders, stock-ins, reconciliations...). The counter lives in Redis,
// seeded from MAX(sequence_no) in the table when cold; the mutex keeps
// the seed-and-increment step from racing within this process.
func GetSequence[T any](ctx context.Context) (int64, error) {
	var model T
	mutex.Lock()
	defer mutex.Unlock()
	cacheKey := strings.ToLower(GetTypeName[T]()) + "_seq"
	var seqNo int64
	var err error
	db := config.GetDB()

	seqNo, err = config.GetRedisCounter(ctx, cacheKey)
	if err != nil {
		return 0, err
	}
	// a cold counter returns 1; seed from the table so restarts don't reuse numbers
	if seqNo == 1 {
		var dbSeq *int64
		if err := db.WithContext(ctx).Model(&model).Select("max(sequence_no)").
			Scan(&dbSeq).Error; err != nil {
			return 0, err
		}
		if dbSeq != nil {
			seqNo = *dbSeq + 1
		}
		if err := config.SetRedisCounter(ctx, cacheKey, seqNo); err != nil {
			return 0, err
		}
	}
	return seqNo, nil
}

// debt balance cache, invalidated on every debt write
func DebtBalanceCacheKey(entityType string, entityId int) string {
	return "DebtBalance:" + entityType + ":" + fmt.Sprint(entityId)
}

func ClearDebtBalanceCache(entityType string, entityId int) error {
	return config.RemoveRedisKey(DebtBalanceCacheKey(entityType, entityId))
}
