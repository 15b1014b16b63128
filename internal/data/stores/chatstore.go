package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/tasktalk/internal/core/chatlog"
	"github.com/colonyops/tasktalk/internal/data/db"
)

// ChatStore implements chatlog.Persister using SQLite. Only the newest
// retain messages are kept; older rows are pruned on every append.
type ChatStore struct {
	db     *db.DB
	retain int
}

var _ chatlog.Persister = (*ChatStore)(nil)

// NewChatStore creates a chat store keeping at most retain messages. Zero
// or less keeps everything.
func NewChatStore(db *db.DB, retain int) *ChatStore {
	return &ChatStore{db: db, retain: retain}
}

// Append stores msg and prunes anything beyond the retention limit.
func (s *ChatStore) Append(ctx context.Context, msg chatlog.Message) error {
	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO chat_messages (id, role, text, created_at)
		VALUES (?, ?, ?, ?)`,
		msg.ID, string(msg.Role), msg.Text, msg.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}

	if s.retain <= 0 {
		return nil
	}

	_, err = s.db.Conn().ExecContext(ctx, `
		DELETE FROM chat_messages
		WHERE seq <= (SELECT seq FROM chat_messages ORDER BY seq DESC LIMIT 1 OFFSET ?)`,
		s.retain,
	)
	if err != nil {
		return fmt.Errorf("prune chat messages: %w", err)
	}
	return nil
}

// Recent returns up to limit of the newest messages, oldest first.
func (s *ChatStore) Recent(ctx context.Context, limit int) ([]chatlog.Message, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, role, text, created_at FROM (
			SELECT seq, id, role, text, created_at FROM chat_messages
			ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	msgs := []chatlog.Message{}
	for rows.Next() {
		var (
			msg       chatlog.Message
			role      string
			createdAt int64
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msg.Role = chatlog.Role(role)
		msg.CreatedAt = time.Unix(0, createdAt)
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}
	return msgs, nil
}

// Clear removes every stored message.
func (s *ChatStore) Clear(ctx context.Context) error {
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("clear chat messages: %w", err)
	}
	return nil
}

// Count returns the number of stored messages.
func (s *ChatStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chat messages: %w", err)
	}
	return n, nil
}
