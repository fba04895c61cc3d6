package postgres

import (
	"database/sql"
	"encoding/json"

	"github.com/omahs/claims-hatter/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanGate scans a single row into a model.Gate.
// The row must contain columns in the order defined by gateColumns.
func scanGate(row scannable) (*model.Gate, error) {
	var g model.Gate
	var (
		oracleURL sql.NullString
		createdBy sql.NullString
	)

	err := row.Scan(
		&g.ID,
		&g.Hat,
		&g.Factory,
		&g.Self,
		&oracleURL,
		&g.ClaimForEnabled,
		&g.CreatedAt,
		&createdBy,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.OracleURL = oracleURL.String
	g.CreatedBy = createdBy.String
	return &g, nil
}

// scanGateWithTotal scans a row that has a leading total_count column
// followed by the standard gate columns. Used by queryListGates with
// COUNT(*) OVER().
func scanGateWithTotal(row scannable) (*model.Gate, int, error) {
	var total int
	var g model.Gate
	var (
		oracleURL sql.NullString
		createdBy sql.NullString
	)

	err := row.Scan(
		&total,
		&g.ID,
		&g.Hat,
		&g.Factory,
		&g.Self,
		&oracleURL,
		&g.ClaimForEnabled,
		&g.CreatedAt,
		&createdBy,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	g.OracleURL = oracleURL.String
	g.CreatedBy = createdBy.String
	return &g, total, nil
}

// scanEvent scans a single row into a model.AuditEvent.
func scanEvent(row scannable) (*model.AuditEvent, error) {
	var e model.AuditEvent
	var (
		actor   sql.NullString
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.GateID, &actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

// scanEvents scans multiple rows into a slice of model.AuditEvent pointers.
func scanEvents(rows *sql.Rows) ([]*model.AuditEvent, error) {
	var events []*model.AuditEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
