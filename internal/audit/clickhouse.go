package audit

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

const (
	bufferSize    = 10_000
	flushInterval = 100 * time.Millisecond
	flushBatch    = 1000
	drainTimeout  = 2 * time.Second
)

// ClickHouseWriter writes audit events asynchronously. Write queues the
// event and returns immediately; a background goroutine batches and
// inserts on a fixed interval or once flushBatch events have queued.
type ClickHouseWriter struct {
	conn    driver.Conn
	buffer  chan *Event
	done    chan struct{}
	flushed chan struct{}
	logger  *zap.Logger
}

// NewClickHouseWriter opens conn against dsn and starts the flush loop.
func NewClickHouseWriter(dsn string, logger *zap.Logger) (*ClickHouseWriter, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	if opts.TLS == nil {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	w := &ClickHouseWriter{
		conn:    conn,
		buffer:  make(chan *Event, bufferSize),
		done:    make(chan struct{}),
		flushed: make(chan struct{}),
		logger:  logger,
	}
	go w.flushLoop()
	return w, nil
}

// Write queues event for async insertion. Non-blocking: drops the event
// and logs a warning if the buffer is full.
func (w *ClickHouseWriter) Write(event *Event) {
	select {
	case w.buffer <- event:
	default:
		w.logger.Warn("audit buffer full, dropping event", zap.String("id", event.ID.String()))
	}
}

// Close signals the flush loop to drain remaining events and blocks until
// it has.
func (w *ClickHouseWriter) Close() {
	close(w.done)
	<-w.flushed
}

func (w *ClickHouseWriter) flushLoop() {
	defer close(w.flushed)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*Event, 0, flushBatch)

	for {
		select {
		case event := <-w.buffer:
			batch = append(batch, event)
			if len(batch) >= flushBatch {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-w.done:
			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			defer cancel()
		drainLoop:
			for {
				select {
				case event := <-w.buffer:
					batch = append(batch, event)
				case <-drainCtx.Done():
					break drainLoop
				default:
					break drainLoop
				}
			}
			if len(batch) > 0 {
				w.flush(batch)
			}
			return
		}
	}
}

func (w *ClickHouseWriter) flush(events []*Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batch, err := w.conn.PrepareBatch(ctx, `
		INSERT INTO audit_events (
			id, timestamp, tool_id, project_id, stage,
			decision, denial_reason, detail, exit_code, duration_ms
		)
	`)
	if err != nil {
		w.logger.Error("clickhouse prepare batch failed", zap.Error(err))
		return
	}

	for _, e := range events {
		if err := batch.Append(
			e.ID,
			e.Timestamp,
			e.ToolID,
			e.ProjectID,
			e.Stage,
			e.Decision,
			e.DenialReason,
			e.Detail,
			e.ExitCode,
			e.DurationMs,
		); err != nil {
			w.logger.Error("clickhouse append event failed", zap.String("id", e.ID.String()), zap.Error(err))
		}
	}

	if err := batch.Send(); err != nil {
		w.logger.Error("clickhouse batch send failed", zap.Int("batch_size", len(events)), zap.Error(err))
	}
}
