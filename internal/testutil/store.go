// Package testutil holds in-memory stand-ins for the storage, cache and queue layers.
package testutil

import (
	"contest_hub/internal/common"
	"contest_hub/internal/domain/model"
	"context"
	"sort"
	"strings"
	"sync"
)

// Store backs the fake repositories with shared state, so a confirmed payment registers the
// payer the same way the database transaction does.
type Store struct {
	mu          sync.Mutex
	users       map[string]*model.User // by email
	contests    map[string]*model.Contest
	submissions map[string][]model.Submission
	payments    map[string]*model.Payment // by session id

	Users    *UserRepo
	Contests *ContestRepo
	Payments *PaymentRepo
}

func NewStore() *Store {
	s := &Store{
		users:       make(map[string]*model.User),
		contests:    make(map[string]*model.Contest),
		submissions: make(map[string][]model.Submission),
		payments:    make(map[string]*model.Payment),
	}
	s.Users = &UserRepo{s: s}
	s.Contests = &ContestRepo{s: s}
	s.Payments = &PaymentRepo{s: s}
	return s
}

func copyContest(c *model.Contest) *model.Contest {
	cp := *c
	cp.RegisteredUsers = append([]string(nil), c.RegisteredUsers...)
	if c.Winner != nil {
		w := *c.Winner
		cp.Winner = &w
	}
	return &cp
}

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.Email]; ok {
		return common.ErrConflict
	}
	for _, u := range r.s.users {
		if u.ID == user.ID {
			return common.ErrConflict
		}
	}
	cp := *user
	r.s.users[user.Email] = &cp
	return nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *UserRepo) ListRecent(ctx context.Context, limit int) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].Email < users[j].Email
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, id, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID == id {
			u.Role = role
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *UserRepo) UpdateProfile(ctx context.Context, email string, upd model.ProfileUpdate) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Photo != nil {
		u.Photo = *upd.Photo
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	cp := *u
	return &cp, nil
}

type ContestRepo struct{ s *Store }

func (r *ContestRepo) Create(ctx context.Context, contest *model.Contest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contests[contest.ID]; ok {
		return common.ErrConflict
	}
	r.s.contests[contest.ID] = copyContest(contest)
	return nil
}

func (r *ContestRepo) FindByID(ctx context.Context, id string) (*model.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return copyContest(c), nil
}

func (r *ContestRepo) List(ctx context.Context, filter model.ContestFilter) ([]model.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Contest
	for _, c := range r.s.contests {
		if filter.CreatorEmail != "" && c.CreatorEmail != filter.CreatorEmail {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Type != "" && !strings.Contains(strings.ToLower(c.ContestType), strings.ToLower(filter.Type)) {
			continue
		}
		cp := copyContest(c)
		cp.RegisteredUsers = nil
		out = append(out, *cp)
	}
	if filter.Top {
		sort.Slice(out, func(i, j int) bool {
			if out[i].Participants != out[j].Participants {
				return out[i].Participants > out[j].Participants
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
		if len(out) > model.TopContestsLimit {
			out = out[:model.TopContestsLimit]
		}
		return out, nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ContestRepo) ListApprovedTypes(ctx context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[string]bool)
	var types []string
	for _, c := range r.s.contests {
		if c.Status == model.StatusApproved && !seen[c.ContestType] {
			seen[c.ContestType] = true
			types = append(types, c.ContestType)
		}
	}
	sort.Strings(types)
	return types, nil
}

func (r *ContestRepo) Update(ctx context.Context, id string, upd model.ContestUpdate) (*model.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Slug != nil {
		c.Slug = *upd.Slug
	}
	if upd.Image != nil {
		c.Image = *upd.Image
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.Price != nil {
		c.Price = *upd.Price
	}
	if upd.PrizeMoney != nil {
		c.PrizeMoney = *upd.PrizeMoney
	}
	if upd.TaskInstruction != nil {
		c.TaskInstruction = *upd.TaskInstruction
	}
	if upd.ContestType != nil {
		c.ContestType = *upd.ContestType
	}
	if upd.Deadline != nil {
		c.Deadline = *upd.Deadline
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	return copyContest(c), nil
}

func (r *ContestRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contests[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.contests, id)
	delete(r.s.submissions, id)
	return nil
}

func (r *ContestRepo) AddSubmission(ctx context.Context, sub *model.Submission) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contests[sub.ContestID]; !ok {
		return false, common.ErrNotFound
	}
	for _, existing := range r.s.submissions[sub.ContestID] {
		if existing.SameEntry(*sub) {
			return false, nil
		}
	}
	r.s.submissions[sub.ContestID] = append(r.s.submissions[sub.ContestID], *sub)
	return true, nil
}

func (r *ContestRepo) ListSubmissions(ctx context.Context, contestID string) ([]model.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]model.Submission(nil), r.s.submissions[contestID]...), nil
}

func (r *ContestRepo) SetWinner(ctx context.Context, contestID string, winner *model.Winner) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[contestID]
	if !ok || c.Winner != nil {
		return false, nil
	}
	w := *winner
	c.Winner = &w
	return true, nil
}

func (r *ContestRepo) filtered(keep func(*model.Contest) bool, less func(a, b *model.Contest) bool) []model.Contest {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ptrs []*model.Contest
	for _, c := range r.s.contests {
		if keep(c) {
			ptrs = append(ptrs, copyContest(c))
		}
	}
	sort.Slice(ptrs, func(i, j int) bool { return less(ptrs[i], ptrs[j]) })
	out := make([]model.Contest, 0, len(ptrs))
	for _, c := range ptrs {
		out = append(out, *c)
	}
	return out
}

func (r *ContestRepo) ListByWinner(ctx context.Context, email string) ([]model.Contest, error) {
	return r.filtered(
		func(c *model.Contest) bool { return c.Winner != nil && c.Winner.Email == email },
		func(a, b *model.Contest) bool { return a.Deadline.After(b.Deadline) },
	), nil
}

func (r *ContestRepo) ListWithWinner(ctx context.Context) ([]model.Contest, error) {
	return r.filtered(
		func(c *model.Contest) bool { return c.Winner != nil },
		func(a, b *model.Contest) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		},
	), nil
}

func (r *ContestRepo) ListParticipated(ctx context.Context, email string) ([]model.Contest, error) {
	r.s.mu.Lock()
	paid := make(map[string]bool)
	for _, p := range r.s.payments {
		if p.Email == email {
			paid[p.ContestID] = true
		}
	}
	r.s.mu.Unlock()
	return r.filtered(
		func(c *model.Contest) bool { return paid[c.ID] },
		func(a, b *model.Contest) bool { return a.Deadline.Before(b.Deadline) },
	), nil
}

func (r *ContestRepo) CountWins(ctx context.Context, email string) (int, error) {
	wins, _ := r.ListByWinner(ctx, email)
	return len(wins), nil
}

type PaymentRepo struct{ s *Store }

func (r *PaymentRepo) RecordConfirmed(ctx context.Context, p *model.Payment) (model.ConfirmationResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res model.ConfirmationResult
	if _, ok := r.s.payments[p.SessionID]; ok {
		return res, nil
	}
	cp := *p
	r.s.payments[p.SessionID] = &cp
	res.PaymentRecorded = true

	c, ok := r.s.contests[p.ContestID]
	if !ok {
		return res, nil
	}
	for _, e := range c.RegisteredUsers {
		if e == p.Email {
			return res, nil
		}
	}
	c.RegisteredUsers = append(c.RegisteredUsers, p.Email)
	c.Participants++
	res.Registered = true
	return res, nil
}

func (r *PaymentRepo) FindBySessionID(ctx context.Context, sessionID string) (*model.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[sessionID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PaymentRepo) CountContestsByEmail(ctx context.Context, email string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[string]bool)
	for _, p := range r.s.payments {
		if p.Email == email {
			seen[p.ContestID] = true
		}
	}
	return len(seen), nil
}

// PaymentCount is the number of recorded payments.
func (r *PaymentRepo) PaymentCount() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.payments)
}
