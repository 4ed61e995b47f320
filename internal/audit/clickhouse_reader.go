package audit

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

// Reader provides read access to the audit_events table for the query
// surface. It never mutates state.
type Reader struct {
	conn   driver.Conn
	logger *zap.Logger
}

// NewReader opens a ClickHouse connection for read queries against dsn.
func NewReader(dsn string, logger *zap.Logger) (*Reader, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("NewReader: %w", err)
	}
	if opts.TLS == nil {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("NewReader: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("NewReader: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{conn: conn, logger: logger}, nil
}

// Close closes the underlying connection.
func (r *Reader) Close() error {
	return r.conn.Close()
}

// ListEventsParams filters and paginates ListEvents.
type ListEventsParams struct {
	ToolID    *string
	Decision  *string
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	PageSize  int
}

// ListEvents returns paginated, filtered audit events and the total
// matching count.
func (r *Reader) ListEvents(ctx context.Context, params ListEventsParams) ([]Event, int, error) {
	conditions := []string{"1 = 1"}
	args := []any{}

	if params.ToolID != nil {
		conditions = append(conditions, "tool_id = @tool_id")
		args = append(args, clickhouse.Named("tool_id", *params.ToolID))
	}
	if params.Decision != nil {
		conditions = append(conditions, "decision = @decision")
		args = append(args, clickhouse.Named("decision", *params.Decision))
	}
	if params.StartTime != nil {
		conditions = append(conditions, "timestamp >= @start_time")
		args = append(args, clickhouse.Named("start_time", *params.StartTime))
	}
	if params.EndTime != nil {
		conditions = append(conditions, "timestamp <= @end_time")
		args = append(args, clickhouse.Named("end_time", *params.EndTime))
	}

	where := strings.Join(conditions, " AND ")
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	var total uint64
	countQuery := fmt.Sprintf("SELECT count() FROM audit_events WHERE %s", where)
	if err := r.conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListEvents count: %w", err)
	}

	dataQuery := fmt.Sprintf(
		"SELECT id, timestamp, tool_id, project_id, stage, decision, denial_reason, detail, exit_code, duration_ms "+
			"FROM audit_events WHERE %s ORDER BY timestamp DESC LIMIT @limit OFFSET @offset",
		where,
	)
	args = append(args,
		clickhouse.Named("limit", uint32(pageSize)),
		clickhouse.Named("offset", uint32(offset)),
	)

	rows, err := r.conn.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ListEvents query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.ToolID, &e.ProjectID, &e.Stage,
			&e.Decision, &e.DenialReason, &e.Detail, &e.ExitCode, &e.DurationMs,
		); err != nil {
			return nil, 0, fmt.Errorf("ListEvents scan: %w", err)
		}
		events = append(events, e)
	}

	return events, int(total), rows.Err()
}
