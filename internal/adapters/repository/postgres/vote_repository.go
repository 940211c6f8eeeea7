package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/buildvote/bot/internal/core/domain"
	"github.com/buildvote/bot/internal/core/ports"
)

type VoteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &VoteRepository{db: db}
}

const voteColumns = `id, title, image_name, image_url, json_data, channel_id, message_id,
	created_by, coord_x, coord_z, vote_count, session_id, is_active, created_at, updated_at`

func (r *VoteRepository) Create(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (title, image_name, image_url, json_data, channel_id, message_id,
			created_by, coord_x, coord_z, session_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, vote_count, created_at, updated_at
	`
	var jsonData any
	if len(vote.JSONData) > 0 {
		jsonData = []byte(vote.JSONData)
	}
	err := r.db.QueryRowContext(ctx, query,
		vote.Title, vote.ImageName, vote.ImageURL, jsonData, vote.ChannelID, vote.MessageID,
		vote.CreatedBy, vote.CoordX, vote.CoordZ, vote.SessionID, vote.IsActive,
	).Scan(&vote.ID, &vote.VoteCount, &vote.CreatedAt, &vote.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

func (r *VoteRepository) ListActive(ctx context.Context, order ports.VoteOrder) ([]domain.Vote, error) {
	orderBy := "id ASC"
	if order == ports.OrderByTally {
		orderBy = "vote_count DESC, created_at ASC, id ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM votes WHERE is_active = true ORDER BY %s`, voteColumns, orderBy)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		vote, err := scanVote(rows)
		if err != nil {
			return nil, err
		}
		votes = append(votes, *vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

func (r *VoteRepository) SetTally(ctx context.Context, voteID int64, count int) error {
	query := `UPDATE votes SET vote_count = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, count, voteID); err != nil {
		return fmt.Errorf("failed to set tally: %w", err)
	}
	return nil
}

func (r *VoteRepository) SetTallyByMessage(ctx context.Context, channelID, messageID string, count int) (bool, error) {
	query := `
		UPDATE votes
		SET vote_count = $1, updated_at = CURRENT_TIMESTAMP
		WHERE channel_id = $2 AND message_id = $3 AND is_active = true
	`
	res, err := r.db.ExecContext(ctx, query, count, channelID, messageID)
	if err != nil {
		return false, fmt.Errorf("failed to set tally by message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// Winner picks the active vote with the highest tally. Ties break on the
// earliest creation time, then the lowest id.
func (r *VoteRepository) Winner(ctx context.Context) (*domain.Vote, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM votes
		WHERE is_active = true
		ORDER BY vote_count DESC, created_at ASC, id ASC
		LIMIT 1
	`, voteColumns)

	vote, err := scanVote(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return vote, nil
}

func (r *VoteRepository) Archive(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes_pattern (title, image_name, image_url, json_data, coord_x, coord_z, vote_count, original_vote_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (original_vote_id) DO NOTHING
	`
	var jsonData any
	if len(vote.JSONData) > 0 {
		jsonData = []byte(vote.JSONData)
	}
	_, err := r.db.ExecContext(ctx, query,
		vote.Title, vote.ImageName, vote.ImageURL, jsonData, vote.CoordX, vote.CoordZ, vote.VoteCount, vote.ID)
	if err != nil {
		return fmt.Errorf("failed to archive vote: %w", err)
	}
	return nil
}

func (r *VoteRepository) DeactivateSession(ctx context.Context, sessionID int64) (int64, error) {
	query := `
		UPDATE votes
		SET is_active = false, updated_at = CURRENT_TIMESTAMP
		WHERE session_id = $1 AND is_active = true
	`
	res, err := r.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate session votes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVote(row rowScanner) (*domain.Vote, error) {
	vote := &domain.Vote{}
	var jsonData []byte
	err := row.Scan(
		&vote.ID, &vote.Title, &vote.ImageName, &vote.ImageURL, &jsonData,
		&vote.ChannelID, &vote.MessageID, &vote.CreatedBy, &vote.CoordX, &vote.CoordZ,
		&vote.VoteCount, &vote.SessionID, &vote.IsActive, &vote.CreatedAt, &vote.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan vote: %w", err)
	}
	vote.JSONData = jsonData
	return vote, nil
}
