package calllog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// PostgresRepo persists call logs in the call_logs table.
//
// Expected schema:
//
//	CREATE TABLE call_logs (
//	    external_call_id    TEXT PRIMARY KEY,
//	    assistant_id        TEXT,
//	    organization_id     TEXT,
//	    conversation_id     TEXT,
//	    phone_number        TEXT,
//	    caller_phone_number TEXT,
//	    customer_number     TEXT,
//	    start_time          TIMESTAMPTZ,
//	    end_time            TIMESTAMPTZ,
//	    duration            INT NOT NULL DEFAULT 0,
//	    status              TEXT,
//	    direction           TEXT,
//	    call_type           TEXT,
//	    transcript          TEXT,
//	    recording_url       TEXT,
//	    cost                NUMERIC,
//	    ended_reason        TEXT,
//	    success_evaluation  TEXT,
//	    lead_id             TEXT,
//	    metadata            JSONB,
//	    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const callLogColumns = `
external_call_id, assistant_id, organization_id, conversation_id,
phone_number, caller_phone_number, customer_number,
start_time, end_time, duration,
status, direction, call_type,
transcript, recording_url, cost,
ended_reason, success_evaluation, lead_id, metadata,
created_at, updated_at`

func (r *PostgresRepo) GetByExternalID(ctx context.Context, externalCallID string) (CallLog, error) {
	q := `SELECT ` + callLogColumns + ` FROM call_logs WHERE external_call_id = $1`
	rec, err := scanCallLog(r.db.QueryRowContext(ctx, q, externalCallID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallLog{}, ErrNotFound
		}
		return CallLog{}, fmt.Errorf("get call log: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, record CallLog) error {
	meta, err := marshalMetadata(record.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	const q = `
INSERT INTO call_logs (
    external_call_id, assistant_id, organization_id, conversation_id,
    phone_number, caller_phone_number, customer_number,
    start_time, end_time, duration,
    status, direction, call_type,
    transcript, recording_url, cost,
    ended_reason, success_evaluation, lead_id, metadata
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
`
	_, err = r.db.ExecContext(ctx, q,
		record.ExternalCallID,
		nullString(record.AssistantID),
		nullString(record.OrganizationID),
		nullString(record.ConversationID),
		nullString(record.PhoneNumber),
		nullString(record.CallerPhoneNumber),
		nullString(record.CustomerNumber),
		record.StartTime,
		record.EndTime,
		record.DurationSeconds,
		nullString(record.Status),
		nullString(record.Direction),
		nullString(record.CallType),
		nullString(record.Transcript),
		nullString(record.RecordingURL),
		record.Cost,
		nullString(record.EndedReason),
		nullString(record.SuccessEvaluation),
		nullString(record.LeadID),
		meta,
	)
	if err != nil {
		return fmt.Errorf("insert call log: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Update(ctx context.Context, record CallLog) error {
	meta, err := marshalMetadata(record.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	const q = `
UPDATE call_logs SET
    assistant_id = $2,
    organization_id = $3,
    conversation_id = $4,
    phone_number = $5,
    caller_phone_number = $6,
    customer_number = $7,
    start_time = $8,
    end_time = $9,
    duration = $10,
    status = $11,
    direction = $12,
    call_type = $13,
    transcript = $14,
    recording_url = $15,
    cost = $16,
    ended_reason = $17,
    success_evaluation = $18,
    lead_id = $19,
    metadata = $20,
    updated_at = now()
WHERE external_call_id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		record.ExternalCallID,
		nullString(record.AssistantID),
		nullString(record.OrganizationID),
		nullString(record.ConversationID),
		nullString(record.PhoneNumber),
		nullString(record.CallerPhoneNumber),
		nullString(record.CustomerNumber),
		record.StartTime,
		record.EndTime,
		record.DurationSeconds,
		nullString(record.Status),
		nullString(record.Direction),
		nullString(record.CallType),
		nullString(record.Transcript),
		nullString(record.RecordingURL),
		record.Cost,
		nullString(record.EndedReason),
		nullString(record.SuccessEvaluation),
		nullString(record.LeadID),
		meta,
	)
	if err != nil {
		return fmt.Errorf("update call log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update call log: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, filter ListFilter) ([]CallLog, error) {
	q := `SELECT ` + callLogColumns + ` FROM call_logs WHERE 1=1`
	args := []any{}
	idx := 1
	if !filter.From.IsZero() {
		q += fmt.Sprintf(" AND start_time >= $%d", idx)
		args = append(args, filter.From)
		idx++
	}
	if !filter.To.IsZero() {
		q += fmt.Sprintf(" AND start_time <= $%d", idx)
		args = append(args, filter.To)
		idx++
	}
	if filter.Direction != "" {
		q += fmt.Sprintf(" AND direction = $%d", idx)
		args = append(args, filter.Direction)
		idx++
	}
	q += " ORDER BY start_time DESC NULLS LAST"
	if filter.Limit > 0 {
		q += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list call logs: %w", err)
	}
	defer rows.Close()

	var out []CallLog
	for rows.Next() {
		rec, err := scanCallLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call log: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list call logs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCallLog(row rowScanner) (CallLog, error) {
	var (
		rec                                        CallLog
		assistantID, orgID, convID                 sql.NullString
		phone, caller, customer                    sql.NullString
		startTime, endTime                         sql.NullTime
		status, direction, callType                sql.NullString
		transcript, recordingURL                   sql.NullString
		cost                                       sql.NullFloat64
		endedReason, successEvaluation, leadID     sql.NullString
		meta                                       []byte
	)
	if err := row.Scan(
		&rec.ExternalCallID,
		&assistantID, &orgID, &convID,
		&phone, &caller, &customer,
		&startTime, &endTime, &rec.DurationSeconds,
		&status, &direction, &callType,
		&transcript, &recordingURL, &cost,
		&endedReason, &successEvaluation, &leadID, &meta,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return CallLog{}, err
	}

	rec.AssistantID = assistantID.String
	rec.OrganizationID = orgID.String
	rec.ConversationID = convID.String
	rec.PhoneNumber = phone.String
	rec.CallerPhoneNumber = caller.String
	rec.CustomerNumber = customer.String
	rec.Status = status.String
	rec.Direction = direction.String
	rec.CallType = callType.String
	rec.Transcript = transcript.String
	rec.RecordingURL = recordingURL.String
	rec.EndedReason = endedReason.String
	rec.SuccessEvaluation = successEvaluation.String
	rec.LeadID = leadID.String
	if startTime.Valid {
		t := startTime.Time
		rec.StartTime = &t
	}
	if endTime.Valid {
		t := endTime.Time
		rec.EndTime = &t
	}
	if cost.Valid {
		c := cost.Float64
		rec.Cost = &c
	}
	if len(meta) > 0 {
		// A row with unreadable metadata is still a valid call log; keep the
		// record and surface the poisoned column for operators.
		if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
			slog.Warn("dropping unreadable call log metadata", "external_call_id", rec.ExternalCallID, "err", err)
			rec.Metadata = nil
		}
	}
	return rec, nil
}

func marshalMetadata(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func nullString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
