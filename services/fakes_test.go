package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/chess-league/models"
	"github.com/Dosada05/chess-league/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// store is an in-memory stand-in for the database shared by the fake
// repositories below. Transactions are driven through sqlmock separately.
type store struct {
	mu sync.Mutex

	teams       map[uuid.UUID]*models.Team
	players     map[uuid.UUID]*models.Player
	officials   map[uuid.UUID]*models.Official
	tournaments map[uuid.UUID]*models.Tournament
	rounds      map[uuid.UUID]map[int]*models.TournamentRound
	enrollments []*models.Enrollment
	games       []*models.Game

	// Ошибки для проверки отката транзакций.
	gameCreateErr   error
	gameCreateAfter int
	incrementErr    error
	setResultErr    error
}

func newStore() *store {
	return &store{
		teams:       make(map[uuid.UUID]*models.Team),
		players:     make(map[uuid.UUID]*models.Player),
		officials:   make(map[uuid.UUID]*models.Official),
		tournaments: make(map[uuid.UUID]*models.Tournament),
		rounds:      make(map[uuid.UUID]map[int]*models.TournamentRound),
	}
}

func (s *store) addTeam() *models.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &models.Team{ID: uuid.New(), Name: gofakeit.Company(), CreatedAt: time.Now()}
	s.teams[t.ID] = t
	return t
}

func (s *store) addPlayer(teamID uuid.UUID) *models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Player{ID: uuid.New(), Name: gofakeit.Name(), Grade: "10", TeamID: teamID, CreatedAt: time.Now()}
	s.players[p.ID] = p
	return p
}

func (s *store) addOfficial() *models.Official {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := &models.Official{ID: uuid.New(), Name: gofakeit.Name(), Email: gofakeit.Email(), CreatedAt: time.Now()}
	s.officials[o.ID] = o
	return o
}

func (s *store) addTournament(officialID uuid.UUID, rounds, boards int) *models.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &models.Tournament{
		ID:         uuid.New(),
		Name:       gofakeit.Sentence(3),
		Date:       time.Now().UTC(),
		OfficialID: officialID,
		Rounds:     rounds,
		Boards:     boards,
		CreatedAt:  time.Now(),
	}
	s.tournaments[t.ID] = t
	return t
}

// enroll adds n players of one team to the tournament in enrollment order.
func (s *store) enroll(t *testing.T, tournamentID uuid.UUID, n int) []*models.Player {
	t.Helper()
	team := s.addTeam()
	players := make([]*models.Player, n)
	for i := range players {
		players[i] = s.addPlayer(team.ID)
		s.mu.Lock()
		s.enrollments = append(s.enrollments, &models.Enrollment{
			ID:           uuid.New(),
			PlayerID:     players[i].ID,
			TeamID:       team.ID,
			TournamentID: tournamentID,
			CreatedAt:    time.Now(),
		})
		s.mu.Unlock()
	}
	return players
}

func (s *store) addGame(tournamentID uuid.UUID, round, board int, white, black uuid.UUID, result string) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &models.Game{ID: uuid.New(), TournamentID: tournamentID, Round: round, Board: board, WhiteID: white, BlackID: black}
	if result != "" {
		g.Result = &result
	}
	s.games = append(s.games, g)
	return g
}

func (s *store) player(id uuid.UUID) models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.players[id]
}

func (s *store) gameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

type fakeTeamRepo struct{ *store }

func (r fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team.CreatedAt = time.Now()
	c := *team
	r.teams[team.ID] = &c
	return nil
}

func (r fakeTeamRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	c := *t
	return &c, nil
}

func (r fakeTeamRepo) List(_ context.Context, limit, offset int) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	teams := make([]*models.Team, 0, len(r.teams))
	for _, t := range r.teams {
		c := *t
		teams = append(teams, &c)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return page(teams, limit, offset), nil
}

func (r fakeTeamRepo) Update(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	c := *team
	r.teams[team.ID] = &c
	return nil
}

func (r fakeTeamRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.teams), nil
}

type fakePlayerRepo struct{ *store }

func (r fakePlayerRepo) Create(_ context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[player.TeamID]; !ok {
		return repositories.ErrPlayerTeamInvalid
	}
	player.CreatedAt = time.Now()
	c := *player
	r.players[player.ID] = &c
	return nil
}

func (r fakePlayerRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	c := *p
	return &c, nil
}

func (r fakePlayerRepo) List(_ context.Context, filter repositories.ListPlayersFilter) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := make([]*models.Player, 0)
	for _, p := range r.players {
		if filter.TeamID != nil && p.TeamID != *filter.TeamID {
			continue
		}
		c := *p
		players = append(players, &c)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })
	return page(players, filter.Limit, filter.Offset), nil
}

func (r fakePlayerRepo) Update(_ context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[player.ID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Name, p.Grade = player.Name, player.Grade
	return nil
}

func (r fakePlayerRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	for _, e := range r.enrollments {
		if e.PlayerID == id {
			return repositories.ErrPlayerInUse
		}
	}
	for _, g := range r.games {
		if g.Involves(id) {
			return repositories.ErrPlayerInUse
		}
	}
	delete(r.players, id)
	return nil
}

func (r fakePlayerRepo) IncrementTally(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, field models.TallyField) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementErr != nil {
		return r.incrementErr
	}
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	switch field {
	case models.TallyWins:
		p.Wins++
	case models.TallyLosses:
		p.Losses++
	case models.TallyDraws:
		p.Draws++
	default:
		return repositories.ErrInvalidTallyField
	}
	return nil
}

func (r fakePlayerRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players), nil
}

type fakeOfficialRepo struct{ *store }

func (r fakeOfficialRepo) Create(_ context.Context, official *models.Official) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.officials {
		if o.Email == official.Email {
			return repositories.ErrOfficialEmailTaken
		}
	}
	official.CreatedAt = time.Now()
	c := *official
	r.officials[official.ID] = &c
	return nil
}

func (r fakeOfficialRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Official, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.officials[id]
	if !ok {
		return nil, repositories.ErrOfficialNotFound
	}
	c := *o
	return &c, nil
}

func (r fakeOfficialRepo) GetByVerificationToken(_ context.Context, token string) (*models.Official, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.officials {
		if o.VerificationToken != nil && *o.VerificationToken == token {
			c := *o
			return &c, nil
		}
	}
	return nil, repositories.ErrOfficialNotFound
}

func (r fakeOfficialRepo) List(_ context.Context, limit, offset int) ([]*models.Official, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	officials := make([]*models.Official, 0, len(r.officials))
	for _, o := range r.officials {
		c := *o
		officials = append(officials, &c)
	}
	sort.Slice(officials, func(i, j int) bool { return officials[i].Name < officials[j].Name })
	return page(officials, limit, offset), nil
}

func (r fakeOfficialRepo) Update(_ context.Context, official *models.Official) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.officials[official.ID]; !ok {
		return repositories.ErrOfficialNotFound
	}
	for id, o := range r.officials {
		if id != official.ID && o.Email == official.Email {
			return repositories.ErrOfficialEmailTaken
		}
	}
	c := *official
	r.officials[official.ID] = &c
	return nil
}

func (r fakeOfficialRepo) MarkVerified(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.officials[id]
	if !ok {
		return repositories.ErrOfficialNotFound
	}
	o.Verified = true
	o.VerificationToken = nil
	return nil
}

func (r fakeOfficialRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.officials), nil
}

type fakeTournamentRepo struct{ *store }

func (r fakeTournamentRepo) Create(_ context.Context, tournament *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.officials[tournament.OfficialID]; !ok {
		return repositories.ErrTournamentInvalidOfficial
	}
	tournament.CreatedAt = time.Now()
	c := *tournament
	r.tournaments[tournament.ID] = &c
	return nil
}

func (r fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	c := *t
	return &c, nil
}

func (r fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tournaments := make([]*models.Tournament, 0)
	for _, t := range r.tournaments {
		if filter.OfficialID != nil && t.OfficialID != *filter.OfficialID {
			continue
		}
		c := *t
		tournaments = append(tournaments, &c)
	}
	sort.Slice(tournaments, func(i, j int) bool { return tournaments[i].Date.After(tournaments[j].Date) })
	return page(tournaments, filter.Limit, filter.Offset), nil
}

func (r fakeTournamentRepo) Update(_ context.Context, tournament *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[tournament.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	if _, ok := r.officials[tournament.OfficialID]; !ok {
		return repositories.ErrTournamentInvalidOfficial
	}
	c := *tournament
	r.tournaments[tournament.ID] = &c
	return nil
}

func (r fakeTournamentRepo) CreateRound(_ context.Context, _ repositories.SQLExecutor, tournamentID uuid.UUID, round int) (*models.TournamentRound, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[tournamentID]; !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	if r.rounds[tournamentID] == nil {
		r.rounds[tournamentID] = make(map[int]*models.TournamentRound)
	}
	if _, ok := r.rounds[tournamentID][round]; ok {
		return nil, repositories.ErrRoundAlreadyOrganized
	}
	tr := &models.TournamentRound{TournamentID: tournamentID, Round: round, OrganizedAt: time.Now()}
	r.rounds[tournamentID][round] = tr
	return tr, nil
}

func (r fakeTournamentRepo) ListRounds(_ context.Context, tournamentID uuid.UUID) ([]*models.TournamentRound, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rounds := make([]*models.TournamentRound, 0)
	for _, tr := range r.rounds[tournamentID] {
		rounds = append(rounds, tr)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Round < rounds[j].Round })
	return rounds, nil
}

func (r fakeTournamentRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tournaments), nil
}

type fakeEnrollmentRepo struct{ *store }

func (r fakeEnrollmentRepo) Create(_ context.Context, e *models.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[e.TournamentID]; !ok {
		return repositories.ErrEnrollmentTournamentInvalid
	}
	if _, ok := r.players[e.PlayerID]; !ok {
		return repositories.ErrEnrollmentPlayerInvalid
	}
	if _, ok := r.teams[e.TeamID]; !ok {
		return repositories.ErrEnrollmentTeamInvalid
	}
	for _, existing := range r.enrollments {
		if existing.TournamentID == e.TournamentID && existing.PlayerID == e.PlayerID {
			return repositories.ErrEnrollmentConflict
		}
	}
	e.CreatedAt = time.Now()
	c := *e
	r.enrollments = append(r.enrollments, &c)
	return nil
}

func (r fakeEnrollmentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, repositories.ErrEnrollmentNotFound
}

func (r fakeEnrollmentRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID uuid.UUID) ([]*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Enrollment, 0)
	for _, e := range r.enrollments {
		if e.TournamentID == tournamentID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

type fakeGameRepo struct{ *store }

func (r fakeGameRepo) Create(_ context.Context, _ repositories.SQLExecutor, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gameCreateErr != nil {
		if r.gameCreateAfter == 0 {
			return r.gameCreateErr
		}
		r.gameCreateAfter--
	}
	if _, ok := r.tournaments[game.TournamentID]; !ok {
		return repositories.ErrGameTournamentInvalid
	}
	game.CreatedAt = time.Now()
	c := *game
	r.games = append(r.games, &c)
	return nil
}

func (r fakeGameRepo) find(id uuid.UUID) (*models.Game, int) {
	for i, g := range r.games {
		if g.ID == id {
			return g, i
		}
	}
	return nil, -1
}

func (r fakeGameRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, _ := r.find(id)
	if g == nil {
		return nil, repositories.ErrGameNotFound
	}
	c := *g
	return &c, nil
}

func (r fakeGameRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Game, error) {
	return r.GetByID(ctx, exec, id)
}

func (r fakeGameRepo) List(_ context.Context, filter repositories.ListGamesFilter) ([]*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Game, 0)
	for _, g := range r.games {
		if filter.TournamentID != nil && g.TournamentID != *filter.TournamentID {
			continue
		}
		if filter.Round != nil && g.Round != *filter.Round {
			continue
		}
		c := *g
		out = append(out, &c)
	}
	return page(out, filter.Limit, filter.Offset), nil
}

func (r fakeGameRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID uuid.UUID, round *int) ([]*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Game, 0)
	for _, g := range r.games {
		if g.TournamentID != tournamentID || (round != nil && g.Round != *round) {
			continue
		}
		c := *g
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].Board < out[j].Board
	})
	return out, nil
}

func (r fakeGameRepo) ListByPlayerAndTournament(_ context.Context, _ repositories.SQLExecutor, playerID, tournamentID uuid.UUID) ([]*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Game, 0)
	for _, g := range r.games {
		if g.TournamentID == tournamentID && g.Involves(playerID) {
			c := *g
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r fakeGameRepo) Update(_ context.Context, _ repositories.SQLExecutor, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, _ := r.find(game.ID)
	if g == nil || g.Result != nil {
		return repositories.ErrGameNotFound
	}
	c := *game
	*g = c
	return nil
}

func (r fakeGameRepo) SetResult(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, result string, officialID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setResultErr != nil {
		return r.setResultErr
	}
	g, _ := r.find(id)
	if g == nil {
		return repositories.ErrGameNotFound
	}
	if g.Result != nil {
		return repositories.ErrGameAlreadyResolved
	}
	g.Result = &result
	g.OfficialID = &officialID
	return nil
}

func (r fakeGameRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, i := r.find(id)
	if i < 0 {
		return repositories.ErrGameNotFound
	}
	r.games = append(r.games[:i], r.games[i+1:]...)
	return nil
}

func (r fakeGameRepo) Count(_ context.Context, unresolvedOnly bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, g := range r.games {
		if !unresolvedOnly || g.Result == nil {
			n++
		}
	}
	return n, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type publishedEvent struct {
	tournamentID uuid.UUID
	eventType    string
	payload      interface{}
	// sheetURL is the round's sheet URL as it was when the event went out.
	sheetURL string
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *recordingBroadcaster) Publish(tournamentID uuid.UUID, eventType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ev := publishedEvent{tournamentID: tournamentID, eventType: eventType, payload: payload}
	if result, ok := payload.(*RoundResult); ok {
		ev.sheetURL = result.PairingSheetURL
	}
	b.events = append(b.events, ev)
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.eventType
	}
	return out
}

type recordingMetrics struct {
	mu       sync.Mutex
	rounds   [][3]int
	outcomes []string
}

func (m *recordingMetrics) RoundOrganized(games, byes, unpaired int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, [3]int{games, byes, unpaired})
}

func (m *recordingMetrics) GameResolved(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) ObserveHTTPRequest(string, string, int, time.Duration) {}

// newMockDB returns a *sql.DB whose transactions are scripted through mock.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var errBoom = errors.New("boom")
