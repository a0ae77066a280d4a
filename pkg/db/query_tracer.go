package db

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskportal/pkg/metrics"
)

type queryStartKey struct{}

type queryStart struct {
	at  time.Time
	sql string
}

// QueryTracer 记录每条查询的耗时指标，并对慢查询输出警告日志
type QueryTracer struct {
	logger        *zap.Logger
	slowThreshold time.Duration
}

// NewQueryTracer 创建 Tracer，slowThreshold 为 0 时默认 100ms
func NewQueryTracer(logger *zap.Logger, slowThreshold time.Duration) *QueryTracer {
	if slowThreshold == 0 {
		slowThreshold = 100 * time.Millisecond
	}
	return &QueryTracer{
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{at: time.Now(), sql: data.SQL})
}

func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	duration := time.Since(start.at)

	operation, table := Classify(start.sql)
	metrics.RecordDBQueryDuration(operation, table, duration)

	if duration > t.slowThreshold {
		sql := start.sql
		if len(sql) > 200 {
			sql = sql[:200] + "..."
		}
		t.logger.Warn("slow-query",
			zap.String("sql", sql),
			zap.Duration("took", duration),
			zap.String("command_tag", data.CommandTag.String()),
		)
	}
}

// Classify extracts the statement verb and the first table it touches, for
// metric labels. Unknown shapes yield "other"/"unknown".
func Classify(sql string) (operation, table string) {
	fields := strings.Fields(strings.ToLower(sql))
	if len(fields) == 0 {
		return "other", "unknown"
	}

	operation = fields[0]
	marker := ""
	switch operation {
	case "select", "delete":
		marker = "from"
	case "insert":
		marker = "into"
	case "update":
		if len(fields) > 1 {
			return operation, strings.Trim(fields[1], `"(`)
		}
	default:
		return "other", "unknown"
	}

	for i, f := range fields {
		if f == marker && i+1 < len(fields) {
			return operation, strings.Trim(fields[i+1], `"(`)
		}
	}
	return operation, "unknown"
}
