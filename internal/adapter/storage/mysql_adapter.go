package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rl1809/order-reconciler/internal/core/domain"
	"github.com/rl1809/order-reconciler/internal/core/merge"
)

var ErrOptimisticLock = errors.New("optimistic lock conflict")

const schema = `
CREATE TABLE IF NOT EXISTS store_records (
	store_name VARCHAR(64)  NOT NULL,
	seq        INT          NOT NULL,
	order_id   VARCHAR(128) NOT NULL DEFAULT '',
	version    BIGINT       NOT NULL DEFAULT 1,
	payload    JSON         NOT NULL,
	updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	PRIMARY KEY (store_name, seq),
	KEY idx_store_order (store_name, order_id)
)`

// MySQLAdapter stores every collection element as one row of store_records,
// in collection order.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create store_records: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) LoadCollection(ctx context.Context, name string) ([]any, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT payload FROM store_records
		WHERE store_name = ? ORDER BY seq`, name,
	)
	if err != nil {
		return nil, fmt.Errorf("query store %s: %w", name, err)
	}
	defer rows.Close()

	elems := []any{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan store %s: %w", name, err)
		}
		var elem any
		if err := decodeJSON(payload, &elem); err != nil {
			// kept as text so validation reports it as malformed
			elem = string(payload)
		}
		elems = append(elems, elem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read store %s: %w", name, err)
	}
	return elems, nil
}

// SaveCollection replaces the whole collection in one transaction.
func (m *MySQLAdapter) SaveCollection(ctx context.Context, name string, elems []any) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM store_records WHERE store_name = ?`, name); err != nil {
		return fmt.Errorf("clear store %s: %w", name, err)
	}

	for i, elem := range elems {
		payload, err := json.Marshal(elem)
		if err != nil {
			return fmt.Errorf("encode %s[%d]: %w", name, i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO store_records (store_name, seq, order_id, version, payload)
			VALUES (?, ?, ?, 1, ?)`,
			name, i, identityOf(elem), payload,
		)
		if err != nil {
			return fmt.Errorf("insert %s[%d]: %w", name, i, err)
		}
	}

	return tx.Commit()
}

// RecordVersion returns the row version of an order in a store, or 0 when the
// store holds no row for it.
func (m *MySQLAdapter) RecordVersion(ctx context.Context, store, id string) (int64, error) {
	var version int64
	err := m.db.QueryRowContext(ctx, `
		SELECT version FROM store_records
		WHERE store_name = ? AND order_id = ? ORDER BY seq LIMIT 1`, store, id,
	).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query version: %w", err)
	}
	return version, nil
}

// PutRecord writes one order with compare-and-swap on its row version.
// expectedVersion 0 means the row must not exist yet; it is appended at the
// end of the collection.
func (m *MySQLAdapter) PutRecord(ctx context.Context, store, id string, payload json.RawMessage, expectedVersion int64) error {
	if expectedVersion > 0 {
		result, err := m.db.ExecContext(ctx, `
			UPDATE store_records
			SET payload = ?, version = version + 1
			WHERE store_name = ? AND order_id = ? AND version = ?`,
			[]byte(payload), store, id, expectedVersion,
		)
		if err != nil {
			return fmt.Errorf("update record: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update record: rows affected: %w", err)
		}
		if rows == 0 {
			return ErrOptimisticLock
		}
		return nil
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM store_records
		WHERE store_name = ? AND order_id = ? FOR UPDATE`, store, id,
	).Scan(&existing)
	if err != nil {
		return fmt.Errorf("query record: %w", err)
	}
	if existing > 0 {
		return ErrOptimisticLock
	}

	var next int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq) + 1, 0) FROM store_records
		WHERE store_name = ?`, store,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("query seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO store_records (store_name, seq, order_id, version, payload)
		VALUES (?, ?, ?, 1, ?)`,
		store, next, id, []byte(payload),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	return tx.Commit()
}

func identityOf(elem any) string {
	rec, ok := domain.AsRecord(elem)
	if !ok {
		return ""
	}
	return merge.IdentityOf(rec)
}
