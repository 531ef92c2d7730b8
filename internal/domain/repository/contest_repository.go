package repository

import (
	"contest_hub/internal/common"
	"contest_hub/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type ContestRepository interface {
	Create(ctx context.Context, contest *model.Contest) error
	FindByID(ctx context.Context, id string) (*model.Contest, error) // Includes registered users
	List(ctx context.Context, filter model.ContestFilter) ([]model.Contest, error)
	ListApprovedTypes(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, upd model.ContestUpdate) (*model.Contest, error)
	Delete(ctx context.Context, id string) error

	// AddSubmission reports false when an identical entry already exists.
	AddSubmission(ctx context.Context, sub *model.Submission) (bool, error)
	ListSubmissions(ctx context.Context, contestID string) ([]model.Submission, error)
	// SetWinner only writes when the contest has no winner yet and reports whether it did.
	SetWinner(ctx context.Context, contestID string, winner *model.Winner) (bool, error)

	// Profile & leaderboard
	ListByWinner(ctx context.Context, email string) ([]model.Contest, error)
	ListWithWinner(ctx context.Context) ([]model.Contest, error) // Oldest first
	ListParticipated(ctx context.Context, email string) ([]model.Contest, error)
	CountWins(ctx context.Context, email string) (int, error)
}

type pgContestRepository struct {
	db *sql.DB
}

func NewPgContestRepository(db *sql.DB) ContestRepository {
	return &pgContestRepository{db: db}
}

const contestColumns = `c.id, c.slug, c.name, c.image, c.description, c.price, c.prize_money, c.task_instruction,
	c.contest_type, c.deadline, c.creator_email, c.status, c.participants,
	c.winner_name, c.winner_email, c.winner_photo, c.winner_task_info, c.created_at, c.updated_at`

func scanContest(row rowScanner) (*model.Contest, error) {
	c := &model.Contest{}
	var winnerName, winnerEmail, winnerPhoto, winnerTaskInfo sql.NullString
	err := row.Scan(
		&c.ID, &c.Slug, &c.Name, &c.Image, &c.Description, &c.Price, &c.PrizeMoney, &c.TaskInstruction,
		&c.ContestType, &c.Deadline, &c.CreatorEmail, &c.Status, &c.Participants,
		&winnerName, &winnerEmail, &winnerPhoto, &winnerTaskInfo, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if winnerEmail.Valid {
		c.Winner = &model.Winner{
			Name:     winnerName.String,
			Email:    winnerEmail.String,
			Photo:    winnerPhoto.String,
			TaskInfo: winnerTaskInfo.String,
		}
	}
	return c, nil
}

func (r *pgContestRepository) queryContests(ctx context.Context, op, query string, args ...interface{}) ([]model.Contest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.%s: %w", op, err)
	}
	defer rows.Close()

	contests := []model.Contest{}
	for rows.Next() {
		c, err := scanContest(rows)
		if err != nil {
			return nil, fmt.Errorf("pgContestRepository.%s scan: %w", op, err)
		}
		contests = append(contests, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgContestRepository.%s rows: %w", op, err)
	}
	return contests, nil
}

func (r *pgContestRepository) Create(ctx context.Context, c *model.Contest) error {
	query := `INSERT INTO contests (id, slug, name, image, description, price, prize_money, task_instruction,
	              contest_type, deadline, creator_email, status, participants, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Slug, c.Name, c.Image, c.Description, c.Price, c.PrizeMoney, c.TaskInstruction,
		c.ContestType, c.Deadline, c.CreatorEmail, c.Status, c.Participants, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Create: %w", err)
	}
	c.UpdatedAt = c.CreatedAt
	return nil
}

func (r *pgContestRepository) FindByID(ctx context.Context, id string) (*model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests c WHERE c.id = $1`
	contest, err := scanContest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgContestRepository.FindByID: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT email FROM contest_registrations WHERE contest_id = $1 ORDER BY registered_at, email`, id)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.FindByID registrations: %w", err)
	}
	defer rows.Close()

	contest.RegisteredUsers = []string{}
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("pgContestRepository.FindByID registrations scan: %w", err)
		}
		contest.RegisteredUsers = append(contest.RegisteredUsers, email)
	}
	return contest, rows.Err()
}

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *pgContestRepository) List(ctx context.Context, f model.ContestFilter) ([]model.Contest, error) {
	var conds []string
	var args []interface{}
	if f.CreatorEmail != "" {
		args = append(args, f.CreatorEmail)
		conds = append(conds, fmt.Sprintf("c.creator_email = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, "%"+escapeLike(f.Type)+"%")
		conds = append(conds, fmt.Sprintf("c.contest_type ILIKE $%d ESCAPE '\\'", len(args)))
	}

	query := `SELECT ` + contestColumns + ` FROM contests c`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	if f.Top {
		query += fmt.Sprintf(` ORDER BY c.participants DESC, c.created_at DESC LIMIT %d`, model.TopContestsLimit)
	} else {
		query += ` ORDER BY c.created_at DESC`
	}
	return r.queryContests(ctx, "List", query, args...)
}

func (r *pgContestRepository) ListApprovedTypes(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT contest_type FROM contests
	          WHERE status = $1 AND contest_type <> '' ORDER BY contest_type`
	rows, err := r.db.QueryContext(ctx, query, model.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.ListApprovedTypes: %w", err)
	}
	defer rows.Close()

	types := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("pgContestRepository.ListApprovedTypes scan: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *pgContestRepository) Update(ctx context.Context, id string, upd model.ContestUpdate) (*model.Contest, error) {
	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Slug != nil {
		add("slug", *upd.Slug)
	}
	if upd.Image != nil {
		add("image", *upd.Image)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.PrizeMoney != nil {
		add("prize_money", *upd.PrizeMoney)
	}
	if upd.TaskInstruction != nil {
		add("task_instruction", *upd.TaskInstruction)
	}
	if upd.ContestType != nil {
		add("contest_type", *upd.ContestType)
	}
	if upd.Deadline != nil {
		add("deadline", *upd.Deadline)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	query := `UPDATE contests SET ` + strings.Join(sets, ", ") +
		fmt.Sprintf(`, updated_at = CURRENT_TIMESTAMP WHERE id = $%d`, len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, common.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *pgContestRepository) Delete(ctx context.Context, id string) error {
	// Registrations and submissions cascade; payments are kept.
	res, err := r.db.ExecContext(ctx, `DELETE FROM contests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgContestRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgContestRepository) AddSubmission(ctx context.Context, s *model.Submission) (bool, error) {
	query := `INSERT INTO contest_submissions (contest_id, name, email, photo, task_info, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, s.ContestID, s.Name, s.Email, s.Photo, s.TaskInfo, s.SubmittedAt)
	if err != nil {
		return false, fmt.Errorf("pgContestRepository.AddSubmission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgContestRepository.AddSubmission rows: %w", err)
	}
	return n == 1, nil
}

func (r *pgContestRepository) ListSubmissions(ctx context.Context, contestID string) ([]model.Submission, error) {
	query := `SELECT contest_id, name, email, photo, task_info, submitted_at
	          FROM contest_submissions WHERE contest_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.ListSubmissions: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ContestID, &s.Name, &s.Email, &s.Photo, &s.TaskInfo, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("pgContestRepository.ListSubmissions scan: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *pgContestRepository) SetWinner(ctx context.Context, contestID string, w *model.Winner) (bool, error) {
	query := `UPDATE contests
	          SET winner_name = $2, winner_email = $3, winner_photo = $4, winner_task_info = $5,
	              updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1 AND winner_email IS NULL`
	res, err := r.db.ExecContext(ctx, query, contestID, w.Name, w.Email, w.Photo, w.TaskInfo)
	if err != nil {
		return false, fmt.Errorf("pgContestRepository.SetWinner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgContestRepository.SetWinner rows: %w", err)
	}
	return n == 1, nil
}

func (r *pgContestRepository) ListByWinner(ctx context.Context, email string) ([]model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests c WHERE c.winner_email = $1 ORDER BY c.deadline DESC`
	return r.queryContests(ctx, "ListByWinner", query, email)
}

func (r *pgContestRepository) ListWithWinner(ctx context.Context) ([]model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests c WHERE c.winner_email IS NOT NULL ORDER BY c.created_at, c.id`
	return r.queryContests(ctx, "ListWithWinner", query)
}

func (r *pgContestRepository) ListParticipated(ctx context.Context, email string) ([]model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests c
	          WHERE c.id IN (SELECT p.contest_id FROM payments p WHERE p.email = $1)
	          ORDER BY c.deadline ASC`
	return r.queryContests(ctx, "ListParticipated", query, email)
}

func (r *pgContestRepository) CountWins(ctx context.Context, email string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contests WHERE winner_email = $1`, email).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pgContestRepository.CountWins: %w", err)
	}
	return n, nil
}
