// Package testutil holds in-memory stand-ins for the gorm repositories, the
// mailer and the clock.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"watchlist/internal/entity"
	"watchlist/internal/repository"
)

// Store backs every fake repository so cross-table effects (verifying a user,
// joining owners onto movies) behave like the database.
type Store struct {
	mu sync.Mutex

	Users         map[uint]*entity.User
	Verifications map[uint]*entity.EmailVerification
	Codes         map[uint]*entity.TwoFactorCode
	Movies        map[uint]*entity.Movie
	Logs          []entity.SecurityLog

	nextID uint
	clock  *Clock
}

func NewStore(clock *Clock) *Store {
	return &Store{
		Users:         make(map[uint]*entity.User),
		Verifications: make(map[uint]*entity.EmailVerification),
		Codes:         make(map[uint]*entity.TwoFactorCode),
		Movies:        make(map[uint]*entity.Movie),
		clock:         clock,
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) UserRepository() repository.UserRepository {
	return memoryUsers{s}
}

func (s *Store) EmailVerificationRepository() repository.EmailVerificationRepository {
	return memoryVerifications{s}
}

func (s *Store) TwoFactorCodeRepository() repository.TwoFactorCodeRepository {
	return memoryCodes{s}
}

func (s *Store) SecurityLogRepository() repository.SecurityLogRepository {
	return memorySecurityLogs{s}
}

func (s *Store) MovieRepository() repository.MovieRepository {
	return memoryMovies{s}
}

// CodeCount is the number of stored login codes for userID.
func (s *Store) CodeCount(userID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Codes {
		if c.UserID == userID {
			n++
		}
	}
	return n
}

// Actions lists the audit trail in write order.
func (s *Store) Actions() []entity.SecurityAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]entity.SecurityAction, 0, len(s.Logs))
	for _, l := range s.Logs {
		actions = append(actions, l.Action)
	}
	return actions
}

type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memoryUsers struct{ s *Store }

func (r memoryUsers) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.Users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = r.s.clock.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.s.Users[user.ID] = &stored
	return nil
}

func (r memoryUsers) Register(ctx context.Context, user *entity.User, v *entity.EmailVerification) error {
	if err := r.Create(ctx, user); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v.UserID = user.ID
	v.ID = r.s.id()
	stored := *v
	r.s.Verifications[v.ID] = &stored
	return nil
}

// Delete cascades like the foreign keys in the schema.
func (r memoryUsers) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.Users, id)
	for vid, v := range r.s.Verifications {
		if v.UserID == id {
			delete(r.s.Verifications, vid)
		}
	}
	for cid, c := range r.s.Codes {
		if c.UserID == id {
			delete(r.s.Codes, cid)
		}
	}
	for mid, m := range r.s.Movies {
		if m.UserID == id {
			delete(r.s.Movies, mid)
		}
	}
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id uint) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.Users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.Users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r memoryUsers) FindByEmailOrUsername(_ context.Context, email, username string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.Users {
		if u.Email == email || u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

type memoryVerifications struct{ s *Store }

func (r memoryVerifications) FindByTokenHash(_ context.Context, tokenHash string) (*entity.EmailVerification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.Verifications {
		if v.TokenHash == tokenHash {
			copied := *v
			return &copied, nil
		}
	}
	return nil, nil
}

func (r memoryVerifications) Consume(_ context.Context, v *entity.EmailVerification) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Verifications[v.ID]; !ok {
		return false, nil
	}
	delete(r.s.Verifications, v.ID)
	if u, ok := r.s.Users[v.UserID]; ok {
		u.IsEmailVerified = true
	}
	return true, nil
}

type memoryCodes struct{ s *Store }

func (r memoryCodes) Replace(_ context.Context, code *entity.TwoFactorCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.Codes {
		if c.UserID == code.UserID {
			delete(r.s.Codes, id)
		}
	}
	code.ID = r.s.id()
	stored := *code
	r.s.Codes[code.ID] = &stored
	return nil
}

func (r memoryCodes) FindValid(_ context.Context, userID uint, codeHash string, now time.Time) (*entity.TwoFactorCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.Codes {
		if c.UserID == userID && c.CodeHash == codeHash && c.ExpiresAt.After(now) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r memoryCodes) Delete(_ context.Context, id uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Codes[id]; !ok {
		return false, nil
	}
	delete(r.s.Codes, id)
	return true, nil
}

type memorySecurityLogs struct{ s *Store }

func (r memorySecurityLogs) Log(_ context.Context, log *entity.SecurityLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Logs = append(r.s.Logs, *log)
	return nil
}

type memoryMovies struct{ s *Store }

func (r memoryMovies) Create(_ context.Context, movie *entity.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	movie.ID = r.s.id()
	movie.CreatedAt = r.s.clock.Now()
	movie.UpdatedAt = movie.CreatedAt
	stored := *movie
	stored.User = entity.User{}
	r.s.Movies[movie.ID] = &stored
	return nil
}

func (r memoryMovies) FindByID(_ context.Context, id uint) (*entity.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.Movies[id]
	if !ok {
		return nil, nil
	}
	joined := r.join(*m)
	return &joined, nil
}

func (r memoryMovies) ListByUser(_ context.Context, userID uint) ([]entity.Movie, error) {
	return r.list(func(m *entity.Movie) bool { return m.UserID == userID }), nil
}

func (r memoryMovies) ListAll(_ context.Context) ([]entity.Movie, error) {
	return r.list(func(*entity.Movie) bool { return true }), nil
}

func (r memoryMovies) Update(_ context.Context, id uint, update repository.MovieUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.Movies[id]
	if !ok {
		return nil
	}
	if update.Title != nil {
		m.Title = *update.Title
	}
	if update.Description != nil {
		m.Description = update.Description
	}
	if update.Year != nil {
		m.Year = update.Year
	}
	if update.ClearDescription {
		m.Description = nil
	}
	if update.ClearYear {
		m.Year = nil
	}
	m.UpdatedAt = r.s.clock.Now()
	return nil
}

func (r memoryMovies) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.Movies, id)
	return nil
}

func (r memoryMovies) Count(_ context.Context, userID *uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.Movies {
		if userID == nil || m.UserID == *userID {
			n++
		}
	}
	return n, nil
}

func (r memoryMovies) CountByYear(_ context.Context, userID *uint) ([]entity.YearCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[int]int64{}
	var unknown int64
	for _, m := range r.s.Movies {
		if userID != nil && m.UserID != *userID {
			continue
		}
		if m.Year == nil {
			unknown++
			continue
		}
		counts[*m.Year]++
	}
	rows := make([]entity.YearCount, 0, len(counts)+1)
	for year, count := range counts {
		rows = append(rows, entity.YearCount{Year: &year, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool { return *rows[i].Year > *rows[j].Year })
	if unknown > 0 {
		rows = append(rows, entity.YearCount{Count: unknown})
	}
	return rows, nil
}

func (r memoryMovies) list(keep func(*entity.Movie) bool) []entity.Movie {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	movies := make([]entity.Movie, 0)
	for _, m := range r.s.Movies {
		if keep(m) {
			movies = append(movies, r.join(*m))
		}
	}
	sort.Slice(movies, func(i, j int) bool {
		if !movies[i].CreatedAt.Equal(movies[j].CreatedAt) {
			return movies[i].CreatedAt.After(movies[j].CreatedAt)
		}
		return movies[i].ID > movies[j].ID
	})
	return movies
}

// join attaches the owner's public columns like the Preload in the gorm
// repository. Callers hold the lock.
func (r memoryMovies) join(m entity.Movie) entity.Movie {
	if u, ok := r.s.Users[m.UserID]; ok {
		m.User = entity.User{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	return m
}

// RecordingSender keeps the last token and code mailed to each address.
type RecordingSender struct {
	mu            sync.Mutex
	verifications map[string]string
	codes         map[string]string
	Err           error
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{
		verifications: make(map[string]string),
		codes:         make(map[string]string),
	}
}

func (r *RecordingSender) SendVerificationEmail(_ context.Context, email string, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.verifications[email] = token
	return nil
}

func (r *RecordingSender) SendTwoFactorCode(_ context.Context, email string, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.codes[email] = code
	return nil
}

func (r *RecordingSender) VerificationToken(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.verifications[email]
}

func (r *RecordingSender) TwoFactorCode(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[email]
}
