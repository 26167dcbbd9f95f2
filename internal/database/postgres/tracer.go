package postgres

import (
	"context"
	"strings"
	"time"

	"unimarket/internal/metrics"
	"unimarket/internal/pkg/logger"

	"github.com/jackc/pgx/v5"
)

type traceStartKey struct{}

type traceStart struct {
	at  time.Time
	sql string
}

// queryTracer records statement latency by leading keyword and warns about
// statements slower than the threshold. A zero threshold disables the warning.
type queryTracer struct {
	slow   time.Duration
	logger logger.Logger
	now    func() time.Time
}

func newQueryTracer(slow time.Duration, log logger.Logger) *queryTracer {
	if log == nil {
		log = logger.Nop()
	}
	return &queryTracer{slow: slow, logger: log.With(logger.String("component", "postgres")), now: time.Now}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceStartKey{}, traceStart{at: t.now(), sql: data.SQL})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(traceStartKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := t.now().Sub(start.at)
	op := statementOp(start.sql)
	metrics.RecordDBQuery(op, elapsed, data.Err == nil)

	if t.slow > 0 && elapsed >= t.slow {
		t.logger.Warn("slow query",
			logger.String("op", op),
			logger.Duration("elapsed", elapsed),
			logger.String("sql", compactSQL(start.sql, 200)),
		)
	}
}

// statementOp returns the upper-cased leading keyword, or OTHER.
func statementOp(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "OTHER"
	}
	switch op := strings.ToUpper(fields[0]); op {
	case "SELECT", "INSERT", "UPDATE", "DELETE", "WITH", "BEGIN", "COMMIT", "ROLLBACK":
		return op
	}
	return "OTHER"
}

func compactSQL(sql string, limit int) string {
	s := strings.Join(strings.Fields(sql), " ")
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
