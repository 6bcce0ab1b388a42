package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
	"github.com/AnshRaj112/portfolio-backend/internal/models"
)

// ContactPostgres keeps visitor messages in the contact_messages table.
// Ids are ObjectID hex strings so both stores share one id format.
type ContactPostgres struct {
	db *sql.DB
}

func NewContactPostgres(db *sql.DB) *ContactPostgres {
	return &ContactPostgres{db: db}
}

const contactColumns = `id, name, email, subject, message, status, ip_address, user_agent, created_at, updated_at`

func (c *ContactPostgres) Insert(ctx context.Context, msg *models.ContactMessage) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO contact_messages (`+contactColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, msg.ID.Hex(), msg.Name, msg.Email, msg.Subject, msg.Message, string(msg.Status),
		nullString(msg.IPAddress), nullString(msg.UserAgent), msg.CreatedAt, msg.UpdatedAt)
	return translatePG(err)
}

func (c *ContactPostgres) List(ctx context.Context, status models.ContactStatus, skip, limit int64) ([]models.ContactMessage, int64, error) {
	var total int64
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM contact_messages WHERE ($1 = '' OR status = $1)
	`, string(status)).Scan(&total)
	if err != nil {
		return nil, 0, translatePG(err)
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contact_messages
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`, string(status), skip, limit)
	if err != nil {
		return nil, 0, translatePG(err)
	}
	defer rows.Close()

	msgs := []models.ContactMessage{}
	for rows.Next() {
		msg, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		msgs = append(msgs, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translatePG(err)
	}
	return msgs, total, nil
}

func (c *ContactPostgres) Find(ctx context.Context, id primitive.ObjectID) (*models.ContactMessage, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE id = $1`, id.Hex())
	return scanContact(row)
}

func (c *ContactPostgres) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ContactStatus, now time.Time) (*models.ContactMessage, error) {
	row := c.db.QueryRowContext(ctx, `
		UPDATE contact_messages SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+contactColumns,
		id.Hex(), string(status), now)
	return scanContact(row)
}

func (c *ContactPostgres) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = $1`, id.Hex())
	if err != nil {
		return translatePG(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translatePG(err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (c *ContactPostgres) CountByStatus(ctx context.Context) (map[models.ContactStatus]int64, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM contact_messages GROUP BY status`)
	if err != nil {
		return nil, translatePG(err)
	}
	defer rows.Close()

	counts := map[models.ContactStatus]int64{}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, translatePG(err)
		}
		counts[models.ContactStatus(status)] = n
	}
	return counts, translatePG(rows.Err())
}

func (c *ContactPostgres) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages WHERE created_at >= $1`, since).Scan(&n)
	return n, translatePG(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.ContactMessage, error) {
	var (
		msg    models.ContactMessage
		id     string
		status string
		ip, ua sql.NullString
	)
	err := row.Scan(&id, &msg.Name, &msg.Email, &msg.Subject, &msg.Message, &status, &ip, &ua, &msg.CreatedAt, &msg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, translatePG(err)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	msg.ID = oid
	msg.Status = models.ContactStatus(status)
	msg.IPAddress = ip.String
	msg.UserAgent = ua.String
	return &msg, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
