package service

import (
	"contest_hub/internal/common"
	"contest_hub/internal/domain/model"
	"contest_hub/internal/testutil"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const (
	creator  = "creator@example.com"
	player   = "player@example.com"
	outsider = "outsider@example.com"
	admin    = "admin@example.com"
)

func newContestFixture(t *testing.T) (*ContestService, *testutil.Store, *testutil.Publisher) {
	t.Helper()
	store := testutil.NewStore()
	pub := &testutil.Publisher{}
	ctx := context.Background()
	if err := store.Users.Create(ctx, &model.User{ID: "u-admin", Email: admin, Role: model.RoleAdmin}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return NewContestService(store.Contests, store.Users, pub), store, pub
}

func seedContest(t *testing.T, store *testutil.Store, id string, deadline time.Time, registered ...string) {
	t.Helper()
	c := &model.Contest{
		ID:              id,
		Name:            "Contest " + id,
		Price:           decimal.RequireFromString("10"),
		PrizeMoney:      decimal.RequireFromString("100"),
		ContestType:     "Art",
		Deadline:        deadline,
		CreatorEmail:    creator,
		Status:          model.StatusApproved,
		RegisteredUsers: registered,
		Participants:    len(registered),
		CreatedAt:       time.Now().UTC(),
	}
	if err := store.Contests.Create(context.Background(), c); err != nil {
		t.Fatalf("seed contest: %v", err)
	}
}

func TestCreateContestDefaults(t *testing.T) {
	svc, store, _ := newContestFixture(t)
	deadline := time.Now().Add(48 * time.Hour)

	contest, err := svc.CreateContest(context.Background(), "Creator@Example.com", CreateContestRequest{
		Name:        "Logo Design Sprint",
		ContestType: "Art",
		Price:       decimal.RequireFromString("12.50"),
		Deadline:    &deadline,
	})
	if err != nil {
		t.Fatalf("CreateContest failed: %v", err)
	}

	if contest.Status != model.StatusPending {
		t.Errorf("Expected status pending, got %s", contest.Status)
	}
	if contest.Participants != 0 || contest.Winner != nil {
		t.Errorf("Expected no participants and no winner, got %d / %+v", contest.Participants, contest.Winner)
	}
	if contest.CreatorEmail != creator {
		t.Errorf("Expected creator %s, got %s", creator, contest.CreatorEmail)
	}
	if contest.Slug != "logo-design-sprint" {
		t.Errorf("Expected slug logo-design-sprint, got %s", contest.Slug)
	}
	if _, err := store.Contests.FindByID(context.Background(), contest.ID); err != nil {
		t.Errorf("Expected contest to be stored: %v", err)
	}
}

func TestCreateContestValidation(t *testing.T) {
	svc, _, _ := newContestFixture(t)
	deadline := time.Now().Add(time.Hour)

	tests := []struct {
		name string
		req  CreateContestRequest
	}{
		{"missing name", CreateContestRequest{ContestType: "Art", Deadline: &deadline}},
		{"missing type", CreateContestRequest{Name: "X", Deadline: &deadline}},
		{"missing deadline", CreateContestRequest{Name: "X", ContestType: "Art"}},
		{"negative price", CreateContestRequest{Name: "X", ContestType: "Art", Deadline: &deadline, Price: decimal.NewFromInt(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateContest(context.Background(), creator, tt.req)
			if !errors.Is(err, common.ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestSubmitTaskGates(t *testing.T) {
	svc, store, _ := newContestFixture(t)
	seedContest(t, store, "open", time.Now().Add(time.Hour), player)
	seedContest(t, store, "closed", time.Now().Add(-time.Hour), player)

	tests := []struct {
		name      string
		email     string
		contestID string
		wantErr   error
		wantCode  int
	}{
		{"unknown contest", player, "missing", common.ErrNotFound, 404},
		{"not registered before deadline", outsider, "open", common.ErrForbidden, 403},
		{"not registered after deadline", outsider, "closed", common.ErrForbidden, 403},
		{"registered after deadline", player, "closed", common.ErrInvalidState, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.SubmitTask(context.Background(), tt.email, tt.contestID, SubmitTaskRequest{TaskInfo: "https://example.com/entry"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if code := common.HTTPStatusFromError(err); code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, code)
			}
		})
	}
}

func TestSubmitTaskIdenticalEntryIsNoop(t *testing.T) {
	svc, store, _ := newContestFixture(t)
	seedContest(t, store, "open", time.Now().Add(time.Hour), player)
	ctx := context.Background()
	req := SubmitTaskRequest{Name: "Player", TaskInfo: "https://example.com/entry"}

	_, created, err := svc.SubmitTask(ctx, player, "open", req)
	if err != nil || !created {
		t.Fatalf("Expected first submission to be created, got created=%v err=%v", created, err)
	}
	_, created, err = svc.SubmitTask(ctx, player, "open", req)
	if err != nil || created {
		t.Fatalf("Expected identical resubmission to be a no-op, got created=%v err=%v", created, err)
	}

	req.TaskInfo = "https://example.com/entry-v2"
	if _, created, _ = svc.SubmitTask(ctx, player, "open", req); !created {
		t.Errorf("Expected a changed entry to be stored")
	}

	subs, _ := store.Contests.ListSubmissions(ctx, "open")
	if len(subs) != 2 {
		t.Errorf("Expected 2 submissions, got %d", len(subs))
	}
}

func TestListSubmissionsCreatorOnly(t *testing.T) {
	svc, store, _ := newContestFixture(t)
	seedContest(t, store, "c1", time.Now().Add(time.Hour), player)

	if _, err := svc.ListSubmissions(context.Background(), player, "c1"); !errors.Is(err, common.ErrForbidden) {
		t.Errorf("Expected forbidden for non-creator, got %v", err)
	}
	if _, err := svc.ListSubmissions(context.Background(), creator, "c1"); err != nil {
		t.Errorf("Expected creator to list submissions, got %v", err)
	}
}

func TestDeclareWinner(t *testing.T) {
	svc, store, pub := newContestFixture(t)
	ctx := context.Background()
	seedContest(t, store, "past", time.Now().Add(-time.Hour), player)
	seedContest(t, store, "future", time.Now().Add(time.Hour), player)
	store.Contests.AddSubmission(ctx, &model.Submission{ContestID: "past", Name: "Player", Email: player, Photo: "p.png", TaskInfo: "entry"})
	store.Contests.AddSubmission(ctx, &model.Submission{ContestID: "future", Name: "Player", Email: player, TaskInfo: "entry"})

	tests := []struct {
		name    string
		caller  string
		contest string
		winner  string
		wantErr error
	}{
		{"missing contest", creator, "nope", player, common.ErrNotFound},
		{"not creator", player, "past", player, common.ErrForbidden},
		{"before deadline", creator, "future", player, common.ErrInvalidState},
		{"no submission", creator, "past", outsider, common.ErrInvalidState},
		{"invalid email", creator, "past", "not-an-email", common.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.DeclareWinner(ctx, tt.caller, tt.contest, DeclareWinnerRequest{WinnerEmail: tt.winner})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	contest, err := svc.DeclareWinner(ctx, creator, "past", DeclareWinnerRequest{WinnerEmail: "Player@Example.com"})
	if err != nil {
		t.Fatalf("DeclareWinner failed: %v", err)
	}
	want := model.Winner{Name: "Player", Email: player, Photo: "p.png", TaskInfo: "entry"}
	if contest.Winner == nil || *contest.Winner != want {
		t.Errorf("Expected winner %+v, got %+v", want, contest.Winner)
	}
	if pub.Count(model.EventWinnerDeclared) != 1 {
		t.Errorf("Expected one winner_declared event, got %d", pub.Count(model.EventWinnerDeclared))
	}

	if _, err := svc.DeclareWinner(ctx, creator, "past", DeclareWinnerRequest{WinnerEmail: player}); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("Expected second declaration to fail with invalid state, got %v", err)
	}
	stored, _ := store.Contests.FindByID(ctx, "past")
	if stored.Winner == nil || stored.Winner.Email != player {
		t.Errorf("Expected stored winner to stay %s, got %+v", player, stored.Winner)
	}
}

func TestDeclareWinnerPublishFailureDoesNotFail(t *testing.T) {
	svc, store, pub := newContestFixture(t)
	pub.Fail = true
	ctx := context.Background()
	seedContest(t, store, "past", time.Now().Add(-time.Hour), player)
	store.Contests.AddSubmission(ctx, &model.Submission{ContestID: "past", Email: player, TaskInfo: "entry"})

	if _, err := svc.DeclareWinner(ctx, creator, "past", DeclareWinnerRequest{WinnerEmail: player}); err != nil {
		t.Errorf("Expected declaration to succeed despite publish failure, got %v", err)
	}
}

func TestDecodeContestUpdateRejectsForbiddenFields(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"allowed fields", `{"name":"New","price":5,"status":"approved"}`, false},
		{"winner", `{"winner":{"email":"x@example.com"}}`, true},
		{"participants", `{"participants":100}`, true},
		{"registered users", `{"registered_users":["x@example.com"]}`, true},
		{"creator", `{"creator_email":"x@example.com"}`, true},
		{"empty body", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeContestUpdate(strings.NewReader(tt.body))
			if tt.wantErr {
				if common.HTTPStatusFromError(err) != 400 {
					t.Errorf("Expected 400 error, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestUpdateContestPermissions(t *testing.T) {
	svc, store, _ := newContestFixture(t)
	seedContest(t, store, "c1", time.Now().Add(time.Hour))
	ctx := context.Background()
	name := "Renamed Contest"

	if _, err := svc.UpdateContest(ctx, outsider, "c1", UpdateContestRequest{Name: &name}); !errors.Is(err, common.ErrForbidden) {
		t.Errorf("Expected forbidden for outsider, got %v", err)
	}

	updated, err := svc.UpdateContest(ctx, creator, "c1", UpdateContestRequest{Name: &name})
	if err != nil {
		t.Fatalf("Expected creator update to succeed: %v", err)
	}
	if updated.Name != name || updated.Slug != "renamed-contest" {
		t.Errorf("Expected renamed contest with new slug, got %q / %q", updated.Name, updated.Slug)
	}

	rejected := model.StatusRejected
	if _, err := svc.UpdateContest(ctx, admin, "c1", UpdateContestRequest{Status: &rejected}); err != nil {
		t.Errorf("Expected admin update to succeed: %v", err)
	}

	bogus := model.ContestStatus("archived")
	if _, err := svc.UpdateContest(ctx, admin, "c1", UpdateContestRequest{Status: &bogus}); !errors.Is(err, common.ErrValidation) {
		t.Errorf("Expected validation error for unknown status, got %v", err)
	}
	if _, err := svc.UpdateContest(ctx, admin, "c1", UpdateContestRequest{}); !errors.Is(err, common.ErrBadRequest) {
		t.Errorf("Expected bad request for empty update, got %v", err)
	}
}

func TestDeleteContestPermissions(t *testing.T) {
	svc, store, _ := newContestFixture(t)
	seedContest(t, store, "c1", time.Now().Add(time.Hour))
	seedContest(t, store, "c2", time.Now().Add(time.Hour))
	ctx := context.Background()

	if err := svc.DeleteContest(ctx, outsider, "c1"); !errors.Is(err, common.ErrForbidden) {
		t.Errorf("Expected forbidden for outsider, got %v", err)
	}
	if err := svc.DeleteContest(ctx, creator, "c1"); err != nil {
		t.Errorf("Expected creator delete to succeed: %v", err)
	}
	if err := svc.DeleteContest(ctx, admin, "c2"); err != nil {
		t.Errorf("Expected admin delete to succeed: %v", err)
	}
	if _, err := svc.GetContest(ctx, "c1"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected deleted contest to be gone, got %v", err)
	}
}

func TestListContestsFilters(t *testing.T) {
	svc, store, _ := newContestFixture(t)
	ctx := context.Background()
	for i, typ := range []string{"Art", "art-history", "Writing"} {
		c := &model.Contest{
			ID:           typ,
			ContestType:  typ,
			CreatorEmail: creator,
			Status:       model.StatusApproved,
			Participants: i,
			CreatedAt:    time.Now().Add(time.Duration(i) * time.Minute),
		}
		store.Contests.Create(ctx, c)
	}

	got, err := svc.ListContests(ctx, ListContestsQuery{Type: "ART"})
	if err != nil {
		t.Fatalf("ListContests failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 contests matching 'ART', got %d", len(got))
	}

	top, _ := svc.ListContests(ctx, ListContestsQuery{Sort: "participants"})
	if len(top) != 3 || top[0].ID != "Writing" {
		t.Errorf("Expected most popular contest first, got %+v", top)
	}

	if _, err := svc.ListContests(ctx, ListContestsQuery{Status: "archived"}); !errors.Is(err, common.ErrValidation) {
		t.Errorf("Expected validation error for unknown status, got %v", err)
	}
}

func TestDecidedContestStaysClosed(t *testing.T) {
	svc, store, _ := newContestFixture(t)
	ctx := context.Background()
	seedContest(t, store, "c1", time.Now().Add(time.Hour), player)

	if _, _, err := svc.SubmitTask(ctx, player, "c1", SubmitTaskRequest{TaskInfo: "entry"}); err != nil {
		t.Fatalf("SubmitTask failed: %v", err)
	}
	past := time.Now().Add(-time.Minute)
	if _, err := svc.UpdateContest(ctx, creator, "c1", UpdateContestRequest{Deadline: &past}); err != nil {
		t.Fatalf("Moving deadline before decision failed: %v", err)
	}
	if _, err := svc.DeclareWinner(ctx, creator, "c1", DeclareWinnerRequest{WinnerEmail: player}); err != nil {
		t.Fatalf("DeclareWinner failed: %v", err)
	}

	future := time.Now().Add(time.Hour)
	if _, err := svc.UpdateContest(ctx, creator, "c1", UpdateContestRequest{Deadline: &future}); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("Expected deadline change after decision to fail with invalid state, got %v", err)
	}
	desc := "still editable"
	if _, err := svc.UpdateContest(ctx, creator, "c1", UpdateContestRequest{Description: &desc}); err != nil {
		t.Errorf("Expected other fields to stay editable, got %v", err)
	}

	// Even with the deadline reopened underneath, a decided contest takes no entries.
	store.Contests.Update(ctx, "c1", model.ContestUpdate{Deadline: &future})
	if _, _, err := svc.SubmitTask(ctx, player, "c1", SubmitTaskRequest{TaskInfo: "late entry"}); !errors.Is(err, common.ErrInvalidState) {
		t.Errorf("Expected submission to decided contest to fail with invalid state, got %v", err)
	}
	if subs, _ := store.Contests.ListSubmissions(ctx, "c1"); len(subs) != 1 {
		t.Errorf("Expected 1 submission, got %d", len(subs))
	}
}

func TestResubmissionReturnsStoredEntry(t *testing.T) {
	svc, store, _ := newContestFixture(t)
	seedContest(t, store, "open", time.Now().Add(time.Hour), player)
	ctx := context.Background()
	req := SubmitTaskRequest{Name: "Player", TaskInfo: "https://example.com/entry"}

	first, _, err := svc.SubmitTask(ctx, player, "open", req)
	if err != nil {
		t.Fatalf("SubmitTask failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	again, created, err := svc.SubmitTask(ctx, player, "open", req)
	if err != nil || created {
		t.Fatalf("Expected no-op resubmission, got created=%v err=%v", created, err)
	}
	if !again.SubmittedAt.Equal(first.SubmittedAt) {
		t.Errorf("Expected stored submitted_at %s, got %s", first.SubmittedAt, again.SubmittedAt)
	}
}

func TestDeleteDecidedContestPublishesEvent(t *testing.T) {
	svc, store, pub := newContestFixture(t)
	ctx := context.Background()
	seedContest(t, store, "decided", time.Now().Add(-time.Hour), player)
	seedContest(t, store, "open", time.Now().Add(time.Hour))
	store.Contests.SetWinner(ctx, "decided", &model.Winner{Email: player})

	if err := svc.DeleteContest(ctx, creator, "open"); err != nil {
		t.Fatalf("DeleteContest failed: %v", err)
	}
	if n := pub.Count(model.EventContestDeleted); n != 0 {
		t.Errorf("Expected no event for undecided contest, got %d", n)
	}
	if err := svc.DeleteContest(ctx, creator, "decided"); err != nil {
		t.Fatalf("DeleteContest failed: %v", err)
	}
	if n := pub.Count(model.EventContestDeleted); n != 1 {
		t.Errorf("Expected one contest_deleted event, got %d", n)
	}
}

func TestListTopContestsCapped(t *testing.T) {
	svc, store, _ := newContestFixture(t)
	ctx := context.Background()
	for i := 0; i < 9; i++ {
		store.Contests.Create(ctx, &model.Contest{
			ID:           string(rune('a' + i)),
			ContestType:  "Art",
			Status:       model.StatusApproved,
			Participants: i * 3,
			CreatedAt:    time.Now().Add(time.Duration(i) * time.Minute),
		})
	}

	top, err := svc.ListContests(ctx, ListContestsQuery{Sort: "participants"})
	if err != nil {
		t.Fatalf("ListContests failed: %v", err)
	}
	if len(top) != model.TopContestsLimit {
		t.Fatalf("Expected %d contests, got %d", model.TopContestsLimit, len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i-1].Participants < top[i].Participants {
			t.Errorf("Expected participants descending, got %d before %d", top[i-1].Participants, top[i].Participants)
		}
	}
	if top[0].Participants != 24 {
		t.Errorf("Expected most popular contest first, got %d participants", top[0].Participants)
	}
}
