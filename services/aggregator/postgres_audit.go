package aggregator

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/service_layer/internal/aggregator/event"
	"github.com/R3E-Network/service_layer/internal/aggregator/state"
)

// AuditStore persists an append-only audit trail of comments and receipts
// to Postgres, off the critical ingestion path: every write is best-effort
// and failures are logged, never propagated back into the Applier.
type AuditStore struct {
	db  *sql.DB
	log *logrus.Entry
}

// OpenAuditStore opens a Postgres connection pool for dsn. Callers should
// Close it on shutdown.
func OpenAuditStore(dsn string) (*AuditStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &AuditStore{db: db, log: logrus.WithField("component", "aggregator-audit-store")}, nil
}

// RecordComment appends one comment to the audit trail for asset.
func (a *AuditStore) RecordComment(ctx context.Context, asset event.Public, c state.Comment) {
	metadataJSON, err := json.Marshal(c)
	if err != nil {
		a.log.WithError(err).Error("marshal comment audit record failed")
		return
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO aggregator_comment_audit (id, asset, user_addr, index, text, created_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.NewString(), asset.String(), c.User.String(), c.Index, c.Text, time.Unix(int64(c.Timestamp), 0).UTC(), metadataJSON)
	if err != nil {
		a.log.WithError(err).Error("insert comment audit record failed")
	}
}

// RecordReceipt appends one deposit/withdrawal/burn receipt to the audit
// trail, keyed by its 32-byte on-chain receipt id.
func (a *AuditStore) RecordReceipt(ctx context.Context, kind string, id [32]byte, payload interface{}) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		a.log.WithError(err).Error("marshal receipt audit record failed")
		return
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO aggregator_receipt_audit (id, kind, receipt_id, created_at, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), kind, id[:], time.Now().UTC(), payloadJSON)
	if err != nil {
		a.log.WithError(err).Error("insert receipt audit record failed")
	}
}

// Close closes the underlying connection pool.
func (a *AuditStore) Close() error {
	return a.db.Close()
}
