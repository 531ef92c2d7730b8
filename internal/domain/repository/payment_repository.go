package repository

import (
	"contest_hub/internal/common"
	"contest_hub/internal/domain/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PaymentRepository interface {
	// RecordConfirmed stores p and, only if p is new, registers the payer and bumps the
	// participant count. All writes share one transaction keyed by p.SessionID.
	RecordConfirmed(ctx context.Context, p *model.Payment) (model.ConfirmationResult, error)
	FindBySessionID(ctx context.Context, sessionID string) (*model.Payment, error)
	CountContestsByEmail(ctx context.Context, email string) (int, error)
}

type pgPaymentRepository struct {
	db *sql.DB
}

func NewPgPaymentRepository(db *sql.DB) PaymentRepository {
	return &pgPaymentRepository{db: db}
}

func (r *pgPaymentRepository) RecordConfirmed(ctx context.Context, p *model.Payment) (model.ConfirmationResult, error) {
	var result model.ConfirmationResult

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("pgPaymentRepository.RecordConfirmed begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (id, contest_id, email, amount, currency, session_id, paid_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (session_id) DO NOTHING`,
		p.ID, p.ContestID, p.Email, p.Amount, p.Currency, p.SessionID, p.PaidAt,
	)
	if err != nil {
		return result, fmt.Errorf("pgPaymentRepository.RecordConfirmed insert payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return result, nil // Replay of an already confirmed session
	}
	result.PaymentRecorded = true

	res, err = tx.ExecContext(ctx,
		`INSERT INTO contest_registrations (contest_id, email, registered_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		p.ContestID, p.Email, p.PaidAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			// Contest deleted since it was checked; the payment insert rolls back too.
			return model.ConfirmationResult{}, fmt.Errorf("contest %s: %w", p.ContestID, common.ErrNotFound)
		}
		return result, fmt.Errorf("pgPaymentRepository.RecordConfirmed register: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		result.Registered = true
		res, err = tx.ExecContext(ctx,
			`UPDATE contests SET participants = participants + 1, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
			p.ContestID,
		)
		if err != nil {
			return result, fmt.Errorf("pgPaymentRepository.RecordConfirmed participants: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return model.ConfirmationResult{}, fmt.Errorf("contest %s: %w", p.ContestID, common.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.ConfirmationResult{}, fmt.Errorf("pgPaymentRepository.RecordConfirmed commit: %w", err)
	}
	return result, nil
}

func (r *pgPaymentRepository) FindBySessionID(ctx context.Context, sessionID string) (*model.Payment, error) {
	query := `SELECT id, contest_id, email, amount, currency, session_id, paid_at FROM payments WHERE session_id = $1`
	p := &model.Payment{}
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&p.ID, &p.ContestID, &p.Email, &p.Amount, &p.Currency, &p.SessionID, &p.PaidAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPaymentRepository.FindBySessionID: %w", err)
	}
	return p, nil
}

func (r *pgPaymentRepository) CountContestsByEmail(ctx context.Context, email string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT contest_id) FROM payments WHERE email = $1`, email).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pgPaymentRepository.CountContestsByEmail: %w", err)
	}
	return n, nil
}
