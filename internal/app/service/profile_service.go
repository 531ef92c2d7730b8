package service

import (
	"contest_hub/internal/common"
	"contest_hub/internal/domain/model"
	"contest_hub/internal/domain/repository"
	"context"
	"log"
	"math"
	"sort"
)

type ProfileService struct {
	userRepo    repository.UserRepository
	contestRepo repository.ContestRepository
	paymentRepo repository.PaymentRepository
	cache       repository.LeaderboardCache
}

func NewProfileService(
	userRepo repository.UserRepository,
	contestRepo repository.ContestRepository,
	paymentRepo repository.PaymentRepository,
	cache repository.LeaderboardCache,
) *ProfileService {
	return &ProfileService{
		userRepo:    userRepo,
		contestRepo: contestRepo,
		paymentRepo: paymentRepo,
		cache:       cache,
	}
}

func (s *ProfileService) ParticipatedContests(ctx context.Context, email string) ([]model.Contest, error) {
	return s.contestRepo.ListParticipated(ctx, model.NormalizeEmail(email))
}

func (s *ProfileService) WinningContests(ctx context.Context, email string) ([]model.Contest, error) {
	return s.contestRepo.ListByWinner(ctx, model.NormalizeEmail(email))
}

func (s *ProfileService) Summary(ctx context.Context, email string) (*model.ProfileSummary, error) {
	email = model.NormalizeEmail(email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, common.Errorf("user %s: %w", email, err)
	}
	participated, err := s.paymentRepo.CountContestsByEmail(ctx, email)
	if err != nil {
		return nil, common.Errorf("failed to count participations: %w", err)
	}
	wins, err := s.contestRepo.CountWins(ctx, email)
	if err != nil {
		return nil, common.Errorf("failed to count wins: %w", err)
	}
	return &model.ProfileSummary{
		User:          user,
		Participated:  participated,
		Wins:          wins,
		WinPercentage: WinPercentage(wins, participated),
	}, nil
}

// WinPercentage is wins/participated as a rounded whole percentage, 0 with no participation.
func WinPercentage(wins, participated int) int {
	if participated <= 0 {
		return 0
	}
	return int(math.Round(float64(wins) * 100 / float64(participated)))
}

// Leaderboard serves the cached ranking when present and rebuilds it otherwise.
// Cache failures only cost a rebuild.
func (s *ProfileService) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	if s.cache != nil {
		entries, ok, err := s.cache.Get(ctx)
		if err != nil {
			log.Printf("WARN: Leaderboard cache read failed: %v", err)
		} else if ok {
			return entries, nil
		}
	}

	contests, err := s.contestRepo.ListWithWinner(ctx)
	if err != nil {
		return nil, common.Errorf("failed to load decided contests: %w", err)
	}
	entries := BuildLeaderboard(contests, model.LeaderboardLimit)

	if s.cache != nil {
		if err := s.cache.Set(ctx, entries); err != nil {
			log.Printf("WARN: Leaderboard cache write failed: %v", err)
		}
	}
	return entries, nil
}

// BuildLeaderboard counts wins per email over contests given oldest first. Name and photo
// come from each email's earliest win. Ties break by email ascending.
func BuildLeaderboard(contests []model.Contest, limit int) []model.LeaderboardEntry {
	byEmail := make(map[string]*model.LeaderboardEntry)
	for _, c := range contests {
		if c.Winner == nil {
			continue
		}
		email := model.NormalizeEmail(c.Winner.Email)
		entry, ok := byEmail[email]
		if !ok {
			entry = &model.LeaderboardEntry{Email: email, Name: c.Winner.Name, Photo: c.Winner.Photo}
			byEmail[email] = entry
		}
		entry.Wins++
	}

	entries := make([]model.LeaderboardEntry, 0, len(byEmail))
	for _, e := range byEmail {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].Email < entries[j].Email
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
