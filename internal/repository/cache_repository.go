package repository

import (
	"context"
	"time"
)

// ReportCache keeps serialized reports close to the API
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// LatestReportKey is the cache key of the most recent report payload
const LatestReportKey = "loan-analytics:report:latest"
