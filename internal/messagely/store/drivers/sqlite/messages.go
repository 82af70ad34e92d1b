package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/messagely/messagely/internal/messagely/domain"
	"github.com/messagely/messagely/internal/messagely/store"
)

type messagesRepo struct {
	db dbtx
}

// messageColumns joins each message with its sender and recipient summaries
// so policy and presentation code never see a bare username where a user is
// expected.
const messageColumns = `
	m.id, m.from_username, m.to_username, m.body, m.sent_at, m.read_at,
	f.username, f.first_name, f.last_name, f.phone,
	t.username, t.first_name, t.last_name, t.phone
`

const messageJoins = `
	FROM messages m
	JOIN users f ON f.username = m.from_username
	JOIN users t ON t.username = m.to_username
`

func (r *messagesRepo) CreateMessage(ctx context.Context, m domain.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, from_username, to_username, body, sent_at, read_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.FromUsername,
		m.ToUsername,
		m.Body,
		m.SentAt,
		mapOptionalTime(m.ReadAt),
	)
	return mapConstraint(err)
}

func (r *messagesRepo) GetMessageByID(ctx context.Context, id string) (domain.Message, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+messageJoins+`WHERE m.id = ?`, id)

	m, err := scanMessage(row)
	if err != nil {
		return domain.Message{}, mapNotFound(err)
	}
	return m, nil
}

func (r *messagesRepo) MarkMessageRead(ctx context.Context, id string, at time.Time) error {
	// Conditional update: only the first writer ever sets read_at, later
	// calls (concurrent or not) touch zero rows.
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages SET read_at = ? WHERE id = ? AND read_at IS NULL`, at, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Zero rows: either already read (fine) or the id is unknown.
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM messages WHERE id = ?`, id)
	var count int
	if err := row.Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *messagesRepo) ListMessagesFrom(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, `WHERE m.from_username = ?`, username)
}

func (r *messagesRepo) ListMessagesTo(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, `WHERE m.to_username = ?`, username)
}

func (r *messagesRepo) list(ctx context.Context, where, username string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageColumns+messageJoins+where+` ORDER BY m.id`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (domain.Message, error) {
	var m domain.Message
	var readAt sql.NullTime
	err := s.Scan(
		&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &m.SentAt, &readAt,
		&m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone,
		&m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone,
	)
	if err != nil {
		return domain.Message{}, err
	}
	m.ReadAt = mapNullTimePtr(readAt)
	return m, nil
}
