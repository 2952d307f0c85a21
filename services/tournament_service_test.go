package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/chess-league/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournamentService(st *store) TournamentService {
	return NewTournamentService(fakeTournamentRepo{st}, fakeOfficialRepo{st}, fakeEnrollmentRepo{st}, nil)
}

func intPtr(v int) *int { return &v }

func TestTournamentService_CreateTournament_Defaults(t *testing.T) {
	st := newStore()
	svc := newTournamentService(st)
	official := st.addOfficial()

	tournament, err := svc.CreateTournament(context.Background(), CreateTournamentInput{
		Name:       "Spring Open",
		Date:       time.Date(2026, 4, 12, 9, 0, 0, 0, time.UTC),
		OfficialID: official.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.DefaultTournamentRounds, tournament.Rounds)
	assert.Equal(t, models.DefaultTournamentBoards, tournament.Boards)
	require.NotNil(t, tournament.Official)
	assert.Equal(t, official.ID, tournament.Official.ID)
}

func TestTournamentService_CreateTournament_Rejects(t *testing.T) {
	st := newStore()
	svc := newTournamentService(st)
	official := st.addOfficial()
	date := time.Now()

	tests := []struct {
		name    string
		input   CreateTournamentInput
		wantErr error
	}{
		{"missing name", CreateTournamentInput{Date: date, OfficialID: official.ID}, ErrValidationFailed},
		{"missing date", CreateTournamentInput{Name: "x", OfficialID: official.ID}, ErrValidationFailed},
		{"missing official", CreateTournamentInput{Name: "x", Date: date}, ErrValidationFailed},
		{"zero boards", CreateTournamentInput{Name: "x", Date: date, OfficialID: official.ID, Boards: intPtr(0)}, ErrValidationFailed},
		{"negative rounds", CreateTournamentInput{Name: "x", Date: date, OfficialID: official.ID, Rounds: intPtr(-1)}, ErrValidationFailed},
		{"unknown official", CreateTournamentInput{Name: "x", Date: date, OfficialID: uuid.New()}, ErrOfficialNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTournament(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTournamentService_UpdateTournament_RoundsFloor(t *testing.T) {
	st := newStore()
	svc := newTournamentService(st)
	tournament := st.addTournament(st.addOfficial().ID, 5, 4)
	_, err := fakeTournamentRepo{st}.CreateRound(context.Background(), nil, tournament.ID, 4)
	require.NoError(t, err)

	_, err = svc.UpdateTournament(context.Background(), tournament.ID, UpdateTournamentInput{Rounds: intPtr(3)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rounds", verr.Field)

	updated, err := svc.UpdateTournament(context.Background(), tournament.ID, UpdateTournamentInput{Rounds: intPtr(4), Boards: intPtr(6)})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rounds)
	assert.Equal(t, 6, updated.Boards)

	unknown := uuid.New()
	_, err = svc.UpdateTournament(context.Background(), tournament.ID, UpdateTournamentInput{OfficialID: &unknown})
	assert.ErrorIs(t, err, ErrOfficialNotFound)
}

func TestTournamentService_Enroll(t *testing.T) {
	st := newStore()
	svc := newTournamentService(st)
	tournament := st.addTournament(st.addOfficial().ID, 3, 2)
	team := st.addTeam()
	player := st.addPlayer(team.ID)
	ctx := context.Background()

	enrollment, err := svc.Enroll(ctx, tournament.ID, EnrollInput{PlayerID: player.ID, TeamID: team.ID})
	require.NoError(t, err)
	assert.Equal(t, tournament.ID, enrollment.TournamentID)

	_, err = svc.Enroll(ctx, tournament.ID, EnrollInput{PlayerID: player.ID, TeamID: team.ID})
	assert.ErrorIs(t, err, ErrEnrollmentConflict)

	_, err = svc.Enroll(ctx, uuid.New(), EnrollInput{PlayerID: player.ID, TeamID: team.ID})
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	_, err = svc.Enroll(ctx, tournament.ID, EnrollInput{PlayerID: uuid.New(), TeamID: team.ID})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = svc.Enroll(ctx, tournament.ID, EnrollInput{PlayerID: player.ID})
	assert.ErrorIs(t, err, ErrValidationFailed)

	enrollments, err := svc.ListEnrollments(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, enrollments, 1)
}

func TestTournamentService_ListRounds(t *testing.T) {
	st := newStore()
	svc := newTournamentService(st)
	tournament := st.addTournament(st.addOfficial().ID, 3, 2)
	repo := fakeTournamentRepo{st}
	for _, r := range []int{2, 1} {
		_, err := repo.CreateRound(context.Background(), nil, tournament.ID, r)
		require.NoError(t, err)
	}

	rounds, err := svc.ListRounds(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, 1, rounds[0].Round)

	_, err = svc.ListRounds(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
