package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/restreamkit/volunteer-system/models"
)

type signupServiceMocks struct {
	signupRepo  *mockSignupRepo
	requestRepo *mockRequestRepo
	bindingRepo *mockBindingRepo
	disableRepo *mockDisableRepo
	raceRepo    *mockRaceRepo
	eventRepo   *mockEventRepo
	userRepo    *mockUserRepo
	notifier    *recordingNotifier
}

func newSignupService(m signupServiceMocks) *SignupService {
	if m.signupRepo == nil {
		m.signupRepo = &mockSignupRepo{}
	}
	if m.requestRepo == nil {
		m.requestRepo = &mockRequestRepo{}
	}
	if m.bindingRepo == nil {
		m.bindingRepo = &mockBindingRepo{}
	}
	if m.disableRepo == nil {
		m.disableRepo = &mockDisableRepo{}
	}
	if m.raceRepo == nil {
		m.raceRepo = &mockRaceRepo{}
	}
	if m.eventRepo == nil {
		m.eventRepo = &mockEventRepo{}
	}
	if m.userRepo == nil {
		m.userRepo = &mockUserRepo{}
	}
	if m.notifier == nil {
		m.notifier = &recordingNotifier{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authorizer := NewAuthorizer(m.eventRepo, &mockGameRepo{})
	return NewSignupService(
		stubTxRunner{}, m.signupRepo, m.requestRepo, m.bindingRepo, m.disableRepo,
		m.raceRepo, m.eventRepo, m.userRepo, authorizer, m.notifier, NopBroadcaster{}, logger,
	)
}

func timeAt(hour, minute int) time.Time {
	return time.Date(2026, time.March, 14, hour, minute, 0, 0, time.UTC)
}

func liveRace(id int, start *time.Time) *models.Race {
	return &models.Race{
		ID:        id,
		Series:    "tw",
		Event:     "s1",
		Matchup:   "Team A vs Team B",
		StartTime: start,
		Kind:      models.ScheduleLive,
	}
}

func TestSignupCreate(t *testing.T) {
	volunteer := &models.User{ID: 5, Role: models.RoleVolunteer}
	start := timeAt(10, 0)

	t.Run("requires an approved role request", func(t *testing.T) {
		svc := newSignupService(signupServiceMocks{
			raceRepo: &mockRaceRepo{GetByIDFn: func(id int) (*models.Race, error) { return liveRace(1, &start), nil }},
			bindingRepo: &mockBindingRepo{GetByIDFn: func(id int) (*models.RoleBinding, error) {
				return eventBinding(1, 10, "Commentator"), nil
			}},
		})

		_, err := svc.Create(context.Background(), volunteer, CreateSignupInput{RaceID: 1, RoleBindingID: 1})
		if !errors.Is(err, ErrRoleNotApproved) {
			t.Errorf("expected ErrRoleNotApproved, got %v", err)
		}
	})

	t.Run("ended races accept no signups", func(t *testing.T) {
		ended := timeAt(9, 0)
		race := liveRace(1, &start)
		race.EndedAt = &ended
		svc := newSignupService(signupServiceMocks{
			raceRepo: &mockRaceRepo{GetByIDFn: func(id int) (*models.Race, error) { return race, nil }},
		})

		_, err := svc.Create(context.Background(), volunteer, CreateSignupInput{RaceID: 1, RoleBindingID: 1})
		if !errors.Is(err, ErrRaceEnded) {
			t.Errorf("expected ErrRaceEnded, got %v", err)
		}
	})

	t.Run("async races have no volunteer roster", func(t *testing.T) {
		race := liveRace(1, &start)
		race.Kind = models.ScheduleAsync
		svc := newSignupService(signupServiceMocks{
			raceRepo: &mockRaceRepo{GetByIDFn: func(id int) (*models.Race, error) { return race, nil }},
		})

		_, err := svc.Create(context.Background(), volunteer, CreateSignupInput{RaceID: 1, RoleBindingID: 1})
		if !errors.Is(err, ErrAsyncRace) {
			t.Errorf("expected ErrAsyncRace, got %v", err)
		}
	})

	t.Run("full binding rejects further signups", func(t *testing.T) {
		binding := eventBinding(1, 10, "Commentator")
		svc := newSignupService(signupServiceMocks{
			raceRepo:    &mockRaceRepo{GetByIDFn: func(id int) (*models.Race, error) { return liveRace(1, &start), nil }},
			bindingRepo: &mockBindingRepo{GetByIDFn: func(id int) (*models.RoleBinding, error) { return binding, nil }},
			requestRepo: &mockRequestRepo{ApprovedExistsFn: func(bindingID, userID int) (bool, error) { return true, nil }},
			signupRepo: &mockSignupRepo{CountConfirmedFn: func(raceID, bindingID int) (int, error) {
				return binding.MaxCount, nil
			}},
		})

		_, err := svc.Create(context.Background(), volunteer, CreateSignupInput{RaceID: 1, RoleBindingID: 1})
		if !errors.Is(err, ErrBindingFull) {
			t.Errorf("expected ErrBindingFull, got %v", err)
		}
	})

	t.Run("binding disabled for the event is rejected", func(t *testing.T) {
		binding := gameBinding(2, 10, "Commentator")
		ev := liveEvent()
		ev.GameID = intPtr(7)
		svc := newSignupService(signupServiceMocks{
			raceRepo:    &mockRaceRepo{GetByIDFn: func(id int) (*models.Race, error) { return liveRace(1, &start), nil }},
			bindingRepo: &mockBindingRepo{GetByIDFn: func(id int) (*models.RoleBinding, error) { return binding, nil }},
			eventRepo:   &mockEventRepo{GetBySlugFn: func(series, event string) (*models.Event, error) { return ev, nil }},
			disableRepo: &mockDisableRepo{ListByEventFn: func(series, event string) ([]*models.EventDisabledRoleBinding, error) {
				return []*models.EventDisabledRoleBinding{{Series: "tw", Event: "s1", RoleTypeID: 10}}, nil
			}},
		})

		_, err := svc.Create(context.Background(), volunteer, CreateSignupInput{RaceID: 1, RoleBindingID: 2})
		if !errors.Is(err, ErrBindingDisabled) {
			t.Errorf("expected ErrBindingDisabled, got %v", err)
		}
	})

	t.Run("successful signup starts pending", func(t *testing.T) {
		svc := newSignupService(signupServiceMocks{
			raceRepo: &mockRaceRepo{GetByIDFn: func(id int) (*models.Race, error) { return liveRace(1, &start), nil }},
			bindingRepo: &mockBindingRepo{GetByIDFn: func(id int) (*models.RoleBinding, error) {
				return eventBinding(1, 10, "Commentator"), nil
			}},
			requestRepo: &mockRequestRepo{ApprovedExistsFn: func(bindingID, userID int) (bool, error) { return true, nil }},
			signupRepo: &mockSignupRepo{CreateFn: func(s *models.Signup) error {
				s.ID = 100
				return nil
			}},
		})

		signup, err := svc.Create(context.Background(), volunteer, CreateSignupInput{RaceID: 1, RoleBindingID: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if signup.Status != models.SignupPending {
			t.Errorf("expected pending signup, got %s", signup.Status)
		}
	})
}

func TestSignupConfirmResolvesOverlaps(t *testing.T) {
	admin := &models.User{ID: 2, Role: models.RoleAdmin}

	startA := timeAt(10, 0)
	startB := timeAt(10, 30)
	startC := timeAt(11, 0)

	races := map[int]*models.Race{
		1: liveRace(1, &startA),
		2: liveRace(2, &startB),
		3: liveRace(3, &startC),
	}

	signup := &models.Signup{
		ID:            100,
		RaceID:        1,
		RoleBindingID: 1,
		UserID:        5,
		Status:        models.SignupPending,
		Binding:       eventBinding(1, 10, "Commentator"),
	}

	ev := liveEvent()
	ev.DefaultRaceDuration = time.Hour

	statusUpdates := map[int]models.SignupStatus{}
	notifier := &recordingNotifier{}
	svc := newSignupService(signupServiceMocks{
		signupRepo: &mockSignupRepo{
			GetByIDFn: func(id int) (*models.Signup, error) { return signup, nil },
			UpdateStatusFn: func(id int, status models.SignupStatus) error {
				statusUpdates[id] = status
				return nil
			},
			ListPendingWindowsByUserFn: func(userID, excludeSignupID int) ([]models.PendingSignupWindow, error) {
				return []models.PendingSignupWindow{
					{SignupID: 200, RaceID: 2, Start: &startB, Duration: time.Hour},
					{SignupID: 300, RaceID: 3, Start: &startC, Duration: time.Hour},
				}, nil
			},
		},
		raceRepo:  &mockRaceRepo{GetByIDFn: func(id int) (*models.Race, error) { return races[id], nil }},
		eventRepo: &mockEventRepo{GetBySlugFn: func(series, event string) (*models.Event, error) { return ev, nil }},
		notifier:  notifier,
	})

	confirmed, err := svc.Confirm(context.Background(), admin, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Status != models.SignupConfirmed {
		t.Errorf("expected confirmed, got %s", confirmed.Status)
	}
	if statusUpdates[100] != models.SignupConfirmed {
		t.Errorf("expected signup 100 confirmed, got %s", statusUpdates[100])
	}

	// Пересекающееся окно 10:30–11:30 отклоняется, касающееся окно
	// 11:00–12:00 остаётся ожидающим: конец интервала исключителен.
	if statusUpdates[200] != models.SignupDeclined {
		t.Errorf("expected overlapping signup 200 declined, got %q", statusUpdates[200])
	}
	if _, touched := statusUpdates[300]; touched {
		t.Errorf("expected touching signup 300 untouched, got %q", statusUpdates[300])
	}

	declineNotes := 0
	for _, note := range notifier.signupNotes {
		if note.Status == models.SignupDeclined {
			declineNotes++
		}
	}
	if declineNotes != 1 {
		t.Errorf("expected one decline notification, got %d", declineNotes)
	}
}

func TestSignupTransitions(t *testing.T) {
	admin := &models.User{ID: 2, Role: models.RoleAdmin}
	owner := &models.User{ID: 5, Role: models.RoleVolunteer}
	start := timeAt(10, 0)

	newSignup := func(status models.SignupStatus) *models.Signup {
		return &models.Signup{
			ID:            100,
			RaceID:        1,
			RoleBindingID: 1,
			UserID:        5,
			Status:        status,
			Binding:       eventBinding(1, 10, "Commentator"),
		}
	}

	t.Run("withdraw aborts own pending signup", func(t *testing.T) {
		var updatedTo models.SignupStatus
		svc := newSignupService(signupServiceMocks{
			signupRepo: &mockSignupRepo{
				GetByIDFn: func(id int) (*models.Signup, error) { return newSignup(models.SignupPending), nil },
				UpdateStatusFn: func(id int, status models.SignupStatus) error {
					updatedTo = status
					return nil
				},
			},
		})

		signup, err := svc.Withdraw(context.Background(), owner, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if signup.Status != models.SignupAborted || updatedTo != models.SignupAborted {
			t.Errorf("expected aborted, got %s", signup.Status)
		}
	})

	t.Run("withdraw of an already closed signup is rejected", func(t *testing.T) {
		svc := newSignupService(signupServiceMocks{
			signupRepo: &mockSignupRepo{
				GetByIDFn: func(id int) (*models.Signup, error) { return newSignup(models.SignupAborted), nil },
			},
		})

		if _, err := svc.Withdraw(context.Background(), owner, 100); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("withdraw by another user is forbidden", func(t *testing.T) {
		svc := newSignupService(signupServiceMocks{
			signupRepo: &mockSignupRepo{
				GetByIDFn: func(id int) (*models.Signup, error) { return newSignup(models.SignupPending), nil },
			},
		})

		stranger := &models.User{ID: 99, Role: models.RoleVolunteer}
		if _, err := svc.Withdraw(context.Background(), stranger, 100); !errors.Is(err, ErrForbiddenOperation) {
			t.Errorf("expected ErrForbiddenOperation, got %v", err)
		}
	})

	t.Run("revoke returns a confirmed signup to pending", func(t *testing.T) {
		var updatedTo models.SignupStatus
		svc := newSignupService(signupServiceMocks{
			signupRepo: &mockSignupRepo{
				GetByIDFn: func(id int) (*models.Signup, error) { return newSignup(models.SignupConfirmed), nil },
				UpdateStatusFn: func(id int, status models.SignupStatus) error {
					updatedTo = status
					return nil
				},
			},
			raceRepo: &mockRaceRepo{GetByIDFn: func(id int) (*models.Race, error) { return liveRace(1, &start), nil }},
		})

		signup, err := svc.Revoke(context.Background(), admin, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if signup.Status != models.SignupPending || updatedTo != models.SignupPending {
			t.Errorf("expected pending after revoke, got %s", signup.Status)
		}
	})

	t.Run("decline requires a pending signup", func(t *testing.T) {
		svc := newSignupService(signupServiceMocks{
			signupRepo: &mockSignupRepo{
				GetByIDFn: func(id int) (*models.Signup, error) { return newSignup(models.SignupDeclined), nil },
			},
			raceRepo: &mockRaceRepo{GetByIDFn: func(id int) (*models.Race, error) { return liveRace(1, &start), nil }},
		})

		if _, err := svc.Decline(context.Background(), admin, 100); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("roster actions require organizer or restreamer rights", func(t *testing.T) {
		svc := newSignupService(signupServiceMocks{
			signupRepo: &mockSignupRepo{
				GetByIDFn: func(id int) (*models.Signup, error) { return newSignup(models.SignupPending), nil },
			},
			raceRepo: &mockRaceRepo{GetByIDFn: func(id int) (*models.Race, error) { return liveRace(1, &start), nil }},
		})

		if _, err := svc.Confirm(context.Background(), owner, 100); !errors.Is(err, ErrForbiddenOperation) {
			t.Errorf("expected ErrForbiddenOperation, got %v", err)
		}
	})
}
