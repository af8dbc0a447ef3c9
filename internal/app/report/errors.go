package report

import (
	"errors"

	"github.com/openctemio/scanhistory/internal/infra/redis"
)

func isCacheMiss(err error) bool {
	return errors.Is(err, redis.ErrCacheMiss)
}
