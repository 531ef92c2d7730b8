package service

import (
	"contest_hub/internal/common"
	"contest_hub/internal/domain/model"
	"contest_hub/internal/domain/repository"
	"contest_hub/internal/platform/queue"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

type ContestService struct {
	contestRepo repository.ContestRepository
	userRepo    repository.UserRepository // For admin checks
	events      queue.EventPublisher
}

func NewContestService(
	contestRepo repository.ContestRepository,
	userRepo repository.UserRepository,
	events queue.EventPublisher,
) *ContestService {
	return &ContestService{
		contestRepo: contestRepo,
		userRepo:    userRepo,
		events:      events,
	}
}

type CreateContestRequest struct {
	Name            string          `json:"name" validate:"required"`
	Image           string          `json:"image"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	PrizeMoney      decimal.Decimal `json:"prize_money"`
	TaskInstruction string          `json:"task_instruction"`
	ContestType     string          `json:"contest_type" validate:"required"`
	Deadline        *time.Time      `json:"deadline" validate:"required"`
}

// UpdateContestRequest lists every field a client may change. Anything else in the
// body is rejected by DecodeContestUpdate.
type UpdateContestRequest struct {
	Name            *string              `json:"name,omitempty"`
	Image           *string              `json:"image,omitempty"`
	Description     *string              `json:"description,omitempty"`
	Price           *decimal.Decimal     `json:"price,omitempty"`
	PrizeMoney      *decimal.Decimal     `json:"prize_money,omitempty"`
	TaskInstruction *string              `json:"task_instruction,omitempty"`
	ContestType     *string              `json:"contest_type,omitempty"`
	Deadline        *time.Time           `json:"deadline,omitempty"`
	Status          *model.ContestStatus `json:"status,omitempty"`
}

type ListContestsQuery struct {
	Email  string
	Type   string
	Status string
	Sort   string
}

type SubmitTaskRequest struct {
	Name     string `json:"name"`
	Photo    string `json:"photo"`
	TaskInfo string `json:"task_info" validate:"required"`
}

type DeclareWinnerRequest struct {
	WinnerEmail string `json:"winner_email" validate:"required,email"`
}

// DecodeContestUpdate reads an update body, refusing fields outside UpdateContestRequest
// (winner, participants, registered_users, creator_email, ...).
func DecodeContestUpdate(r io.Reader) (UpdateContestRequest, error) {
	var req UpdateContestRequest
	if err := decodeStrict(r, &req); err != nil {
		return req, err
	}
	return req, nil
}

func decodeStrict(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return common.Errorf("empty request body: %w", common.ErrBadRequest)
		}
		return common.Errorf("invalid request payload: %v: %w", err, common.ErrBadRequest)
	}
	return nil
}

func (s *ContestService) CreateContest(ctx context.Context, creatorEmail string, req CreateContestRequest) (*model.Contest, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() || req.PrizeMoney.IsNegative() {
		return nil, common.Errorf("price and prize_money must not be negative: %w", common.ErrValidation)
	}

	contest := &model.Contest{
		ID:              uuid.NewString(),
		Slug:            slug.Make(req.Name),
		Name:            strings.TrimSpace(req.Name),
		Image:           req.Image,
		Description:     req.Description,
		Price:           req.Price,
		PrizeMoney:      req.PrizeMoney,
		TaskInstruction: req.TaskInstruction,
		ContestType:     strings.TrimSpace(req.ContestType),
		Deadline:        req.Deadline.UTC(),
		CreatorEmail:    model.NormalizeEmail(creatorEmail),
		Status:          model.StatusPending, // Always starts unapproved
		Participants:    0,
		Winner:          nil,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.contestRepo.Create(ctx, contest); err != nil {
		return nil, common.Errorf("failed to create contest: %w", err)
	}
	log.Printf("INFO: Contest %s created by %s", contest.ID, contest.CreatorEmail)
	return contest, nil
}

func (s *ContestService) ListContests(ctx context.Context, q ListContestsQuery) ([]model.Contest, error) {
	filter := model.ContestFilter{
		CreatorEmail: model.NormalizeEmail(q.Email),
		Type:         strings.TrimSpace(q.Type),
		Top:          q.Sort != "",
	}
	if q.Status != "" {
		status := model.ContestStatus(q.Status)
		if !status.IsValid() {
			return nil, common.Errorf("unknown status %q: %w", q.Status, common.ErrValidation)
		}
		filter.Status = status
	}
	return s.contestRepo.List(ctx, filter)
}

func (s *ContestService) ContestTypes(ctx context.Context) ([]string, error) {
	return s.contestRepo.ListApprovedTypes(ctx)
}

func (s *ContestService) GetContest(ctx context.Context, id string) (*model.Contest, error) {
	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, common.Errorf("contest %s: %w", id, err)
	}
	return contest, nil
}

// canManage reports whether email may edit or delete contest: its creator or an admin.
func (s *ContestService) canManage(ctx context.Context, contest *model.Contest, email string) (bool, error) {
	if contest.IsCreator(email) {
		return true, nil
	}
	user, err := s.userRepo.FindByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Role == model.RoleAdmin, nil
}

func (s *ContestService) UpdateContest(ctx context.Context, callerEmail, id string, req UpdateContestRequest) (*model.Contest, error) {
	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, common.Errorf("contest %s: %w", id, err)
	}
	ok, err := s.canManage(ctx, contest, callerEmail)
	if err != nil {
		return nil, common.Errorf("failed to check contest permissions: %w", err)
	}
	if !ok {
		return nil, common.Errorf("only the creator or an admin may update this contest: %w", common.ErrForbidden)
	}

	upd := model.ContestUpdate{
		Image:           req.Image,
		Description:     req.Description,
		TaskInstruction: req.TaskInstruction,
		Price:           req.Price,
		PrizeMoney:      req.PrizeMoney,
		Status:          req.Status,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, common.Errorf("name must not be empty: %w", common.ErrValidation)
		}
		newSlug := slug.Make(name)
		upd.Name, upd.Slug = &name, &newSlug
	}
	if req.ContestType != nil {
		contestType := strings.TrimSpace(*req.ContestType)
		if contestType == "" {
			return nil, common.Errorf("contest_type must not be empty: %w", common.ErrValidation)
		}
		upd.ContestType = &contestType
	}
	if req.Deadline != nil {
		if contest.HasWinner() {
			return nil, common.Errorf("deadline cannot change once a winner is declared: %w", common.ErrInvalidState)
		}
		deadline := req.Deadline.UTC()
		upd.Deadline = &deadline
	}
	if (req.Price != nil && req.Price.IsNegative()) || (req.PrizeMoney != nil && req.PrizeMoney.IsNegative()) {
		return nil, common.Errorf("price and prize_money must not be negative: %w", common.ErrValidation)
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, common.Errorf("unknown status %q: %w", *req.Status, common.ErrValidation)
	}
	if upd.IsEmpty() {
		return nil, common.Errorf("no updatable fields supplied: %w", common.ErrBadRequest)
	}

	updated, err := s.contestRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, common.Errorf("failed to update contest %s: %w", id, err)
	}
	if req.Status != nil && *req.Status != contest.Status {
		log.Printf("INFO: Contest %s status %s -> %s by %s", id, contest.Status, *req.Status, callerEmail)
	}
	return updated, nil
}

func (s *ContestService) DeleteContest(ctx context.Context, callerEmail, id string) error {
	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return common.Errorf("contest %s: %w", id, err)
	}
	ok, err := s.canManage(ctx, contest, callerEmail)
	if err != nil {
		return common.Errorf("failed to check contest permissions: %w", err)
	}
	if !ok {
		return common.Errorf("only the creator or an admin may delete this contest: %w", common.ErrForbidden)
	}
	if err := s.contestRepo.Delete(ctx, id); err != nil {
		return common.Errorf("failed to delete contest %s: %w", id, err)
	}
	log.Printf("INFO: Contest %s deleted by %s", id, callerEmail)

	// A decided contest takes its win off the leaderboard.
	if contest.HasWinner() {
		if err := s.events.Publish(ctx, model.EventContestDeleted, id, contest.Winner.Email); err != nil {
			log.Printf("WARN: Failed to publish delete event for contest %s: %v", id, err)
		}
	}
	return nil
}

// SubmitTask records the caller's entry. The boolean is false when the identical entry
// was already on file.
func (s *ContestService) SubmitTask(ctx context.Context, email, contestID string, req SubmitTaskRequest) (*model.Submission, bool, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, false, err
	}
	email = model.NormalizeEmail(email)

	contest, err := s.contestRepo.FindByID(ctx, contestID)
	if err != nil {
		return nil, false, common.Errorf("contest %s: %w", contestID, err)
	}
	// Registration is checked before the deadline so unpaid callers always get 403.
	if !contest.IsRegistered(email) {
		return nil, false, common.Errorf("you must register for this contest before submitting: %w", common.ErrForbidden)
	}
	if contest.HasWinner() {
		return nil, false, common.Errorf("contest is already decided: %w", common.ErrInvalidState)
	}
	now := time.Now().UTC()
	if contest.DeadlinePassed(now) {
		return nil, false, common.Errorf("contest deadline has passed: %w", common.ErrInvalidState)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		if user, err := s.userRepo.FindByEmail(ctx, email); err == nil {
			name = user.Name
		}
	}
	sub := &model.Submission{
		ContestID:   contestID,
		Name:        name,
		Email:       email,
		Photo:       req.Photo,
		TaskInfo:    req.TaskInfo,
		SubmittedAt: now,
	}
	created, err := s.contestRepo.AddSubmission(ctx, sub)
	if err != nil {
		return nil, false, common.Errorf("failed to save submission: %w", err)
	}
	if created {
		return sub, true, nil
	}

	// Identical entry already on file; answer with the stored one.
	subs, err := s.contestRepo.ListSubmissions(ctx, contestID)
	if err != nil {
		return nil, false, common.Errorf("failed to load submissions: %w", err)
	}
	for i := range subs {
		if subs[i].SameEntry(*sub) {
			return &subs[i], false, nil
		}
	}
	return nil, false, common.Errorf("identical submission vanished for contest %s: %w", contestID, common.ErrConflict)
}

func (s *ContestService) ListSubmissions(ctx context.Context, callerEmail, contestID string) ([]model.Submission, error) {
	contest, err := s.contestRepo.FindByID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("contest %s: %w", contestID, err)
	}
	if !contest.IsCreator(callerEmail) {
		return nil, common.Errorf("only the contest creator can view submissions: %w", common.ErrForbidden)
	}
	return s.contestRepo.ListSubmissions(ctx, contestID)
}

func (s *ContestService) DeclareWinner(ctx context.Context, callerEmail, contestID string, req DeclareWinnerRequest) (*model.Contest, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}
	winnerEmail := model.NormalizeEmail(req.WinnerEmail)

	contest, err := s.contestRepo.FindByID(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("contest %s: %w", contestID, err)
	}
	if !contest.IsCreator(callerEmail) {
		return nil, common.Errorf("only the contest creator can declare a winner: %w", common.ErrForbidden)
	}
	if contest.HasWinner() {
		return nil, common.Errorf("winner already declared: %w", common.ErrInvalidState)
	}
	if !contest.DeadlinePassed(time.Now().UTC()) {
		return nil, common.Errorf("cannot declare a winner before the deadline: %w", common.ErrInvalidState)
	}

	subs, err := s.contestRepo.ListSubmissions(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("failed to load submissions: %w", err)
	}
	var winner *model.Winner
	for _, sub := range subs {
		if sub.Email == winnerEmail {
			winner = model.WinnerFromSubmission(sub)
			break
		}
	}
	if winner == nil {
		return nil, common.Errorf("%s has no submission for this contest: %w", winnerEmail, common.ErrInvalidState)
	}

	set, err := s.contestRepo.SetWinner(ctx, contestID, winner)
	if err != nil {
		return nil, common.Errorf("failed to set winner: %w", err)
	}
	if !set {
		// Another declaration won the race.
		return nil, common.Errorf("winner already declared: %w", common.ErrInvalidState)
	}
	contest.Winner = winner
	log.Printf("INFO: Contest %s winner declared: %s", contestID, winner.Email)

	if err := s.events.Publish(ctx, model.EventWinnerDeclared, contestID, winner.Email); err != nil {
		log.Printf("WARN: Failed to publish winner event for contest %s: %v", contestID, err)
	}
	return contest, nil
}
