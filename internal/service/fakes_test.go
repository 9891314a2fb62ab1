package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vuctf/vuctf-api/internal/domain"
	"github.com/vuctf/vuctf-api/internal/repository"
)

// memDB is an in-memory stand-in for the postgres and redis stores. One mutex guards
// everything, which gives the same all-or-nothing behaviour as the DB transactions.
type memDB struct {
	mu           sync.Mutex
	users        []domain.User
	challenges   []domain.Challenge
	deleted      map[string]bool
	submissions  []domain.Submission
	transactions []domain.Transaction
	sessions     map[string]memSession
}

type memSession struct {
	id   string
	user domain.User
}

func newMemDB() *memDB {
	return &memDB{
		deleted:  make(map[string]bool),
		sessions: make(map[string]memSession),
	}
}

func (db *memDB) userIndex(id string) int {
	for i, u := range db.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (db *memDB) challengeIndex(id string) int {
	for i, c := range db.challenges {
		if c.ID == id && !db.deleted[id] {
			return i
		}
	}
	return -1
}

func (db *memDB) withdrawn(userID string) int {
	total := 0
	for _, t := range db.transactions {
		if t.UserID == userID && t.ReservesBalance() {
			total += t.Amount
		}
	}
	return total
}

// setScore is a test hook.
func (db *memDB) setScore(userID string, score int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[db.userIndex(userID)].Score = score
}

// ---- users

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, user domain.User, policy func(existing int64) domain.Role) (domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
		if u.Username == user.Username {
			return domain.User{}, repository.ErrUserUsernameExists
		}
	}
	user.Role = policy(int64(len(r.db.users)))
	r.db.users = append(r.db.users, user)

	return user, nil
}

func (r memUsers) FindByID(_ context.Context, id string) (domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.db.userIndex(id)
	if i < 0 {
		return domain.User{}, repository.ErrUserNotFound
	}
	return r.db.users[i], nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (r memUsers) FindAll(_ context.Context) ([]domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return append([]domain.User(nil), r.db.users...), nil
}

func (r memUsers) UpdateRole(_ context.Context, id string, role domain.Role) (domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.db.userIndex(id)
	if i < 0 {
		return domain.User{}, repository.ErrUserNotFound
	}
	r.db.users[i].Role = role
	return r.db.users[i], nil
}

func (r memUsers) RecordLogin(_ context.Context, id string, at time.Time) (domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.db.userIndex(id)
	if i < 0 {
		return domain.User{}, repository.ErrUserNotFound
	}
	r.db.users[i].LoginCount++
	r.db.users[i].LastLogin = &at
	return r.db.users[i], nil
}

// ---- challenges

type memChallenges struct{ db *memDB }

func (r memChallenges) SeedIfEmpty(_ context.Context, seeds []domain.Challenge) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if len(r.db.challenges) > 0 || len(seeds) == 0 {
		return false, nil
	}
	r.db.challenges = append(r.db.challenges, seeds...)
	return true, nil
}

func (r memChallenges) FindAll(_ context.Context) ([]domain.Challenge, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Challenge
	for _, c := range r.db.challenges {
		if !r.db.deleted[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memChallenges) FindByID(_ context.Context, id string) (domain.Challenge, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.db.challengeIndex(id)
	if i < 0 {
		return domain.Challenge{}, repository.ErrChallengeNotFound
	}
	return r.db.challenges[i], nil
}

func (r memChallenges) Create(_ context.Context, c domain.Challenge) (domain.Challenge, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.challenges = append(r.db.challenges, c)
	return c, nil
}

func (r memChallenges) Update(_ context.Context, c domain.Challenge) (domain.Challenge, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.db.challengeIndex(c.ID)
	if i < 0 {
		return domain.Challenge{}, repository.ErrChallengeNotFound
	}
	c.Solves = r.db.challenges[i].Solves
	r.db.challenges[i] = c
	return c, nil
}

func (r memChallenges) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.challengeIndex(id) < 0 {
		return repository.ErrChallengeNotFound
	}
	r.db.deleted[id] = true
	return nil
}

// ---- submissions

type memSubmissions struct{ db *memDB }

func (r memSubmissions) RecordAttempt(_ context.Context, sub domain.Submission, points int) (domain.SubmissionResult, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ui := r.db.userIndex(sub.UserID)
	if ui < 0 {
		return domain.SubmissionResult{}, repository.ErrUserNotFound
	}

	earlier := false
	for _, s := range r.db.submissions {
		if s.UserID == sub.UserID && s.ChallengeID == sub.ChallengeID && s.Correct {
			earlier = true
		}
	}

	res := domain.SubmissionResult{Submission: sub, Correct: sub.Correct, Score: r.db.users[ui].Score}
	if sub.Correct && !earlier {
		ci := r.db.challengeIndex(sub.ChallengeID)
		if ci < 0 {
			return domain.SubmissionResult{}, repository.ErrChallengeNotFound
		}
		r.db.users[ui].Score += points
		r.db.challenges[ci].Solves++
		res.Credited = true
		res.Score = r.db.users[ui].Score
	}
	r.db.submissions = append(r.db.submissions, sub)

	return res, nil
}

func (r memSubmissions) FindByUserID(_ context.Context, userID string) ([]domain.Submission, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Submission
	for _, s := range r.db.submissions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (r memSubmissions) FindCorrect(_ context.Context) ([]domain.Submission, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Submission
	for _, s := range r.db.submissions {
		if s.Correct {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memSubmissions) FindCorrectByChallengeID(_ context.Context, challengeID string) ([]domain.Submission, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Submission
	for _, s := range r.db.submissions {
		if s.Correct && s.ChallengeID == challengeID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memSubmissions) HasCorrect(_ context.Context, userID, challengeID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, s := range r.db.submissions {
		if s.UserID == userID && s.ChallengeID == challengeID && s.Correct {
			return true, nil
		}
	}
	return false, nil
}

// ---- transactions

type memTransactions struct{ db *memDB }

func (r memTransactions) CreateWithdrawal(_ context.Context, t domain.Transaction, check func(score, withdrawn int) error) (domain.Transaction, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ui := r.db.userIndex(t.UserID)
	if ui < 0 {
		return domain.Transaction{}, 0, repository.ErrUserNotFound
	}
	if err := check(r.db.users[ui].Score, r.db.withdrawn(t.UserID)); err != nil {
		return domain.Transaction{}, 0, err
	}

	r.db.transactions = append(r.db.transactions, t)
	r.db.users[ui].Score -= t.Amount

	return t, r.db.users[ui].Score, nil
}

func (r memTransactions) FindByUserID(_ context.Context, userID string) ([]domain.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Transaction
	for _, t := range r.db.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memTransactions) SumWithdrawn(_ context.Context, userID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.withdrawn(userID), nil
}

// ---- sessions

type memSessions struct{ db *memDB }

func (r memSessions) Open(_ context.Context, sessionID string, user domain.User, _ time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[user.ID] = memSession{id: sessionID, user: user}
	return nil
}

func (r memSessions) Find(_ context.Context, userID string) (string, domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[userID]
	if !ok {
		return "", domain.User{}, repository.ErrSessionNotFound
	}
	return s.id, s.user, nil
}

func (r memSessions) Refresh(_ context.Context, user domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[user.ID]
	if !ok {
		return nil
	}
	s.user = user
	r.db.sessions[user.ID] = s
	return nil
}

func (r memSessions) Close(_ context.Context, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.sessions, userID)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.SolveEvent
}

func (n *recordingNotifier) NotifySolve(event domain.SolveEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// platform wires every service over one memDB.
type platform struct {
	db       *memDB
	auth     *AuthService
	users    *UserService
	catalog  *ChallengeService
	ledger   *LedgerService
	stats    *StatsService
	wallet   *WalletService
	notifier *recordingNotifier
}

func newPlatform(seeds []domain.Challenge) *platform {
	db := newMemDB()
	users := memUsers{db}
	challenges := memChallenges{db}
	subs := memSubmissions{db}
	sessions := memSessions{db}
	notifier := &recordingNotifier{}

	p := &platform{
		db:       db,
		auth:     NewAuthService(users, sessions),
		users:    NewUserService(users, sessions),
		catalog:  NewChallengeService(challenges, seeds),
		ledger:   NewLedgerService(challenges, subs, users, sessions, notifier),
		stats:    NewStatsService(users, challenges, subs),
		wallet:   NewWalletService(users, memTransactions{db}, sessions, WalletLimits{MinWithdrawal: 1000, ConversionRate: 100}),
		notifier: notifier,
	}

	clock := &tickingClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	p.auth.now = clock.Now
	p.catalog.now = clock.Now
	p.ledger.now = clock.Now
	p.wallet.now = clock.Now

	return p
}

// tickingClock advances one second per reading so ordering by time is deterministic.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}
