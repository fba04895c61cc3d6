package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/omahs/claims-hatter/internal/model"
)

// gateColumns is the column list used for SELECT statements on the gates table.
const gateColumns = `id, hat, factory, self, oracle_url,
	claim_for_enabled, created_at, created_by, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateGate(ctx context.Context, db executor, g *model.Gate) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO gates (
			id, hat, factory, self, oracle_url,
			claim_for_enabled, created_at, created_by, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)`,
		g.ID,
		string(g.Hat),
		g.Factory,
		g.Self,
		nullString(g.OracleURL),
		g.ClaimForEnabled,
		g.CreatedAt,
		nullString(g.CreatedBy),
		g.UpdatedAt,
	)
	return err
}

func queryGetGate(ctx context.Context, db executor, id string) (*model.Gate, error) {
	row := db.QueryRowContext(ctx, `SELECT `+gateColumns+` FROM gates WHERE id = $1`, id)
	return scanGate(row)
}

func queryGetGateByHat(ctx context.Context, db executor, hat model.HatID) (*model.Gate, error) {
	row := db.QueryRowContext(ctx, `SELECT `+gateColumns+` FROM gates WHERE hat = $1`, string(hat))
	return scanGate(row)
}

func queryListGates(ctx context.Context, db executor, filter model.GateFilter) ([]*model.Gate, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.Hat != "" {
		whereClauses = append(whereClauses, "hat = "+nextArg())
		args = append(args, string(filter.Hat))
	}

	if filter.AdminOf != "" {
		// Matches the subtree: the hat itself or anything below it.
		p := nextArg()
		whereClauses = append(whereClauses, fmt.Sprintf("(hat = %s OR hat LIKE %s || '.%%')", p, p))
		args = append(args, string(filter.AdminOf))
	}

	if filter.Enabled != nil {
		whereClauses = append(whereClauses, "claim_for_enabled = "+nextArg())
		args = append(args, *filter.Enabled)
	}

	if filter.CreatedBy != "" {
		whereClauses = append(whereClauses, "created_by = "+nextArg())
		args = append(args, filter.CreatedBy)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + gateColumns + " FROM gates" + whereSQL + " ORDER BY " + parseSortClause(filter.Sort)

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list gates: %w", err)
	}
	defer rows.Close()

	var gates []*model.Gate
	var total int
	for rows.Next() {
		g, t, err := scanGateWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan gates: %w", err)
		}
		total = t
		gates = append(gates, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan gates: %w", err)
	}

	return gates, total, nil
}

func querySetClaimForEnabled(ctx context.Context, db executor, id string, enabled bool) error {
	res, err := db.ExecContext(ctx, `
		UPDATE gates
		SET claim_for_enabled = $2, updated_at = NOW()
		WHERE id = $1`,
		id, enabled,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryDeleteGate(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM gates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryRecordEvent(ctx context.Context, db executor, e *model.AuditEvent) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO audit_events (topic, gate_id, actor, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.Topic, e.GateID, e.Actor, []byte(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}

func queryGetEvents(ctx context.Context, db executor, gateID string) ([]*model.AuditEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, gate_id, actor, payload, created_at
		FROM audit_events
		WHERE gate_id = $1
		ORDER BY id ASC`,
		gateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func queryListEvents(ctx context.Context, db executor, afterID int64, limit int) ([]*model.AuditEvent, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, gate_id, actor, payload, created_at
		FROM audit_events
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2`,
		afterID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func parseSortClause(sort string) string {
	if sort == "" {
		return "created_at DESC"
	}
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	allowed := map[string]bool{
		"hat": true, "created_at": true, "updated_at": true, "id": true,
	}
	if !allowed[col] {
		return "created_at DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
