package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/liliang-cn/finsight/internal/domain"
)

// ConversationRepository stores the displayed conversation log
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// CreateSession creates a new session
func (r *ConversationRepository) CreateSession(session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO sessions (id, document_digest, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.DocumentDigest, session.CreatedAt, session.UpdatedAt)

	return err
}

// GetSession retrieves a session by ID
func (r *ConversationRepository) GetSession(id string) (*domain.Session, error) {
	session := &domain.Session{}

	err := r.db.QueryRow(`
		SELECT id, document_digest, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.DocumentDigest, &session.CreatedAt, &session.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// DeleteSession removes a session and all of its turns
func (r *ConversationRepository) DeleteSession(id string) error {
	// foreign_keys is per connection, so do not rely on the cascade alone
	if _, err := r.db.Exec(`DELETE FROM turns WHERE session_id = ?`, id); err != nil {
		return err
	}
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// AppendTurn adds a turn to a session
func (r *ConversationRepository) AppendTurn(turn *domain.Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	turn.CreatedAt = time.Now()

	_, err := r.db.Exec(`
		INSERT INTO turns (id, session_id, role, content, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, turn.ID, turn.SessionID, turn.Role, turn.Content, string(turn.Kind), turn.CreatedAt)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`, turn.CreatedAt, turn.SessionID)
	return err
}

// ListTurns retrieves all turns for a session in insertion order
func (r *ConversationRepository) ListTurns(sessionID string) ([]domain.Turn, error) {
	rows, err := r.db.Query(`
		SELECT id, session_id, role, content, kind, created_at
		FROM turns WHERE session_id = ?
		ORDER BY rowid ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []domain.Turn{}
	for rows.Next() {
		var turn domain.Turn
		var kind sql.NullString

		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Role,
			&turn.Content, &kind, &turn.CreatedAt); err != nil {
			return nil, err
		}
		if kind.Valid {
			turn.Kind = domain.Kind(kind.String)
		}
		turns = append(turns, turn)
	}

	return turns, rows.Err()
}
