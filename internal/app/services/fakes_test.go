package services

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/alumnihub/internal/app/models"
	"github.com/yigit/alumnihub/internal/db"
	"github.com/yigit/alumnihub/internal/pkg/apperrors"
	"github.com/yigit/alumnihub/internal/pkg/auth"
	"github.com/yigit/alumnihub/internal/pkg/cache"
	"github.com/yigit/alumnihub/internal/pkg/events"
	"github.com/yigit/alumnihub/internal/pkg/websocket"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	auth.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

var testLogger = zerolog.Nop()

// serialTx runs one transaction at a time, standing in for row locks. Store
// calls made inside a transaction are appended to calls, each transaction
// opening with "begin".
type serialTx struct {
	mu sync.Mutex

	logMu sync.Mutex
	calls []string
}

type txKey struct{}

func (t *serialTx) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("begin")
	return fn(context.WithValue(ctx, txKey{}, t), nil)
}

func (t *serialTx) record(call string) {
	t.logMu.Lock()
	defer t.logMu.Unlock()
	t.calls = append(t.calls, call)
}

// lastTx returns the calls of the most recent transaction
func (t *serialTx) lastTx() []string {
	t.logMu.Lock()
	defer t.logMu.Unlock()
	for i := len(t.calls) - 1; i >= 0; i-- {
		if t.calls[i] == "begin" {
			return append([]string(nil), t.calls[i+1:]...)
		}
	}
	return nil
}

// assertCallOrder checks that every call happened, in the given order
func assertCallOrder(t *testing.T, calls []string, want ...string) {
	t.Helper()
	last := -1
	for _, w := range want {
		idx := -1
		for i := last + 1; i < len(calls); i++ {
			if calls[i] == w {
				idx = i
				break
			}
		}
		if !assert.NotEqual(t, -1, idx, "%s missing after position %d in %v", w, last, calls) {
			return
		}
		last = idx
	}
}

// trace records call on the transaction carried by ctx, if any
func trace(ctx context.Context, call string) {
	if t, ok := ctx.Value(txKey{}).(*serialTx); ok {
		t.record(call)
	}
}

func page[T any](items []T, offset, limit uint64) []T {
	if offset >= uint64(len(items)) {
		return []T{}
	}
	end := offset + limit
	if end > uint64(len(items)) {
		end = uint64(len(items))
	}
	return items[offset:end]
}

// --- users ---

type fakeUserStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	profiles map[uuid.UUID]*models.Profile
	stats    map[uuid.UUID]*models.UserStats
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:    map[uuid.UUID]*models.User{},
		profiles: map[uuid.UUID]*models.Profile{},
		stats:    map[uuid.UUID]*models.UserStats{},
	}
}

// addUser seeds an active user with an empty profile
func (f *fakeUserStore) addUser(email string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &models.User{ID: uuid.New(), Email: email, Username: strings.Split(email, "@")[0], IsActive: true}
	f.users[u.ID] = u
	f.profiles[u.ID] = models.NewProfile(u.ID)
	return u
}

func (f *fakeUserStore) CreateUser(_ context.Context, _ pgx.Tx, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
		if u.Username == user.Username {
			return apperrors.ErrUsernameAlreadyExists
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) CreateProfile(_ context.Context, _ pgx.Tx, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.profiles[p.UserID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserStore) UsernameExists(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) mutate(id uuid.UUID, fn func(u *models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUserStore) UpdateUsername(_ context.Context, id uuid.UUID, username string) error {
	return f.mutate(id, func(u *models.User) { u.Username = username })
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return f.mutate(id, func(u *models.User) { u.PasswordHash = hash })
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	return f.mutate(id, func(u *models.User) {
		now := time.Now()
		u.LastLoginAt = &now
	})
}

func (f *fakeUserStore) SetAlumni(_ context.Context, _ pgx.Tx, id uuid.UUID, alumni bool) error {
	return f.mutate(id, func(u *models.User) {
		u.IsAlumni = alumni
		u.IsVerified = alumni || u.IsVerified
	})
}

func (f *fakeUserStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	return f.mutate(id, func(u *models.User) { u.IsActive = active })
}

func (f *fakeUserStore) List(_ context.Context, filter models.UserFilter, offset, limit uint64) ([]*models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, u := range f.users {
		if filter.Search != "" && !strings.Contains(u.Email+u.Username, filter.Search) {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		if filter.IsAlumni != nil && u.IsAlumni != *filter.IsAlumni {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, offset, limit), int64(len(out)), nil
}

func (f *fakeUserStore) GetProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeUserStore) GetProfileForUpdate(ctx context.Context, _ pgx.Tx, userID uuid.UUID) (*models.Profile, error) {
	trace(ctx, "GetProfileForUpdate")
	return f.GetProfile(ctx, userID)
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[p.UserID]; !ok {
		return apperrors.ErrUserNotFound
	}
	cp := *p
	f.profiles[p.UserID] = &cp
	return nil
}

func (f *fakeUserStore) UpdateTotalPoints(ctx context.Context, _ pgx.Tx, userID uuid.UUID, total int64) error {
	trace(ctx, "UpdateTotalPoints")
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	p.TotalPoints = total
	return nil
}

// GetStats derives points and flags from the stored user; counters come from
// the stats seeded by the test.
func (f *fakeUserStore) GetStats(_ context.Context, userID uuid.UUID) (*models.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	st := models.UserStats{UserID: userID}
	if seeded, ok := f.stats[userID]; ok {
		st = *seeded
	}
	st.TotalPoints = f.profiles[userID].TotalPoints
	st.IsAlumni = u.IsAlumni
	st.IsVerified = u.IsVerified
	return &st, nil
}

func (f *fakeUserStore) totalPoints(userID uuid.UUID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[userID].TotalPoints
}

// --- tokens ---

type fakeToken struct {
	userID  uuid.UUID
	expires time.Time
	revoked bool
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*fakeToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]*fakeToken{}}
}

func (f *fakeTokenStore) CreateToken(_ context.Context, token string, userID uuid.UUID, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &fakeToken{userID: userID, expires: expiry}
	return nil
}

func (f *fakeTokenStore) GetTokenByValue(_ context.Context, token string) (uuid.UUID, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	switch {
	case !ok:
		return uuid.Nil, time.Time{}, apperrors.ErrTokenNotFound
	case t.revoked:
		return uuid.Nil, time.Time{}, apperrors.ErrTokenRevoked
	case t.expires.Before(time.Now()):
		return uuid.Nil, time.Time{}, apperrors.ErrTokenExpired
	}
	return t.userID, t.expires, nil
}

func (f *fakeTokenStore) RevokeToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok || t.revoked {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}

func (f *fakeTokenStore) RevokeAllUserTokens(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

type fakeResetStore struct {
	mu     sync.Mutex
	tokens map[string]*fakeToken
	last   string
}

func newFakeResetStore() *fakeResetStore {
	return &fakeResetStore{tokens: map[string]*fakeToken{}}
}

func (f *fakeResetStore) CreateToken(_ context.Context, userID uuid.UUID, token string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &fakeToken{userID: userID, expires: expiry}
	f.last = token
	return nil
}

func (f *fakeResetStore) ConsumeToken(_ context.Context, _ pgx.Tx, token string, now time.Time) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	switch {
	case !ok:
		return uuid.Nil, apperrors.ErrTokenNotFound
	case t.revoked:
		return uuid.Nil, apperrors.ErrTokenRevoked
	case t.expires.Before(now):
		return uuid.Nil, apperrors.ErrTokenExpired
	}
	t.revoked = true
	return t.userID, nil
}

func (f *fakeResetStore) DeleteTokensByUserID(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.tokens {
		if t.userID == userID {
			delete(f.tokens, k)
		}
	}
	return nil
}

// --- verifications ---

type fakeVerificationStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.AlumniVerification
}

func newFakeVerificationStore() *fakeVerificationStore {
	return &fakeVerificationStore{items: map[uuid.UUID]*models.AlumniVerification{}}
}

func (f *fakeVerificationStore) Create(_ context.Context, v *models.AlumniVerification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.items {
		if e.UserID == v.UserID && e.Institution == v.Institution && e.GraduationYear == v.GraduationYear &&
			e.Status != models.VerificationRejected {
			return apperrors.ErrDuplicatePending
		}
	}
	v.ID = uuid.New()
	v.CreatedAt = time.Now()
	cp := *v
	f.items[v.ID] = &cp
	return nil
}

func (f *fakeVerificationStore) HasActive(_ context.Context, userID uuid.UUID, institution string, year int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.items {
		if e.UserID == userID && e.Institution == institution && e.GraduationYear == year &&
			e.Status != models.VerificationRejected {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVerificationStore) GetByID(_ context.Context, id uuid.UUID) (*models.AlumniVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[id]
	if !ok {
		return nil, apperrors.ErrVerificationNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVerificationStore) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*models.AlumniVerification, error) {
	trace(ctx, "GetByIDForUpdate")
	return f.GetByID(ctx, id)
}

func (f *fakeVerificationStore) UpdateDecision(ctx context.Context, _ pgx.Tx, v *models.AlumniVerification) error {
	trace(ctx, "UpdateDecision")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[v.ID]; !ok {
		return apperrors.ErrVerificationNotFound
	}
	cp := *v
	f.items[v.ID] = &cp
	return nil
}

func (f *fakeVerificationStore) List(_ context.Context, filter models.VerificationFilter, offset, limit uint64) ([]*models.AlumniVerification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AlumniVerification
	for _, v := range f.items {
		if filter.UserID != nil && v.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, offset, limit), int64(len(out)), nil
}

// --- ledger ---

type fakePointsStore struct {
	mu   sync.Mutex
	rows []*models.PointsTransaction
}

func (f *fakePointsStore) Create(ctx context.Context, _ pgx.Tx, t *models.PointsTransaction) error {
	trace(ctx, "CreateTransaction")
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	cp := *t
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakePointsStore) ListByUser(_ context.Context, userID uuid.UUID, offset, limit uint64) ([]*models.PointsTransaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PointsTransaction
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, f.rows[i])
		}
	}
	return page(out, offset, limit), int64(len(out)), nil
}

// history returns a user's rows in insertion order
func (f *fakePointsStore) history(userID uuid.UUID) []*models.PointsTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PointsTransaction
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// --- badges ---

type fakeBadgeStore struct {
	mu     sync.Mutex
	badges []*models.Badge
	awards map[uuid.UUID]map[uuid.UUID]*models.UserBadge
}

func newFakeBadgeStore(badges ...*models.Badge) *fakeBadgeStore {
	for _, b := range badges {
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
	}
	return &fakeBadgeStore{badges: badges, awards: map[uuid.UUID]map[uuid.UUID]*models.UserBadge{}}
}

func (f *fakeBadgeStore) List(_ context.Context, activeOnly bool) ([]*models.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Badge
	for _, b := range f.badges {
		if !activeOnly || b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBadgeStore) ListUnearned(_ context.Context, userID uuid.UUID) ([]*models.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Badge
	for _, b := range f.badges {
		if _, earned := f.awards[userID][b.ID]; b.IsActive && !earned {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequiredPoints < out[j].RequiredPoints })
	return out, nil
}

func (f *fakeBadgeStore) Create(_ context.Context, b *models.Badge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.badges {
		if e.Name == b.Name {
			return apperrors.NewConflictError("badge name already exists")
		}
	}
	b.ID = uuid.New()
	f.badges = append(f.badges, b)
	return nil
}

func (f *fakeBadgeStore) Award(_ context.Context, ub *models.UserBadge) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.awards[ub.UserID] == nil {
		f.awards[ub.UserID] = map[uuid.UUID]*models.UserBadge{}
	}
	if _, ok := f.awards[ub.UserID][ub.BadgeID]; ok {
		return false, nil
	}
	ub.ID = uuid.New()
	f.awards[ub.UserID][ub.BadgeID] = ub
	return true, nil
}

func (f *fakeBadgeStore) ListUserBadges(_ context.Context, userID uuid.UUID) ([]*models.UserBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.UserBadge{}
	for _, ub := range f.awards[userID] {
		out = append(out, ub)
	}
	return out, nil
}

// --- notifications ---

type fakeNotificationStore struct {
	mu    sync.Mutex
	items []*models.Notification
	prefs map[uuid.UUID]*models.NotificationPreference
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{prefs: map[uuid.UUID]*models.NotificationPreference{}}
}

func (f *fakeNotificationStore) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	cp := *n
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeNotificationStore) GetByID(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("notification not found")
}

func (f *fakeNotificationStore) List(_ context.Context, userID uuid.UUID, unreadOnly bool, offset, limit uint64) ([]*models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for i := len(f.items) - 1; i >= 0; i-- {
		n := f.items[i]
		if n.RecipientID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return page(out, offset, limit), int64(len(out)), nil
}

func (f *fakeNotificationStore) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.items {
		if n.RecipientID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == id {
			n.MarkRead(at)
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("notification not found")
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.items {
		if n.RecipientID == userID && n.MarkRead(at) {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) SetEmailSent(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == id {
			n.IsEmailSent = true
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("notification not found")
}

func (f *fakeNotificationStore) GetPreferences(_ context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prefs[userID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("notification preferences not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeNotificationStore) CreatePreferences(ctx context.Context, _ pgx.Tx, p *models.NotificationPreference) error {
	return f.UpsertPreferences(ctx, p)
}

func (f *fakeNotificationStore) UpsertPreferences(_ context.Context, p *models.NotificationPreference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.prefs[p.UserID] = &cp
	return nil
}

func (f *fakeNotificationStore) forUser(userID uuid.UUID, t models.NotificationType) []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.items {
		if n.RecipientID == userID && (t == "" || n.Type == t) {
			out = append(out, n)
		}
	}
	return out
}

// --- sessions ---

type fakeSessionStore struct {
	mu           sync.Mutex
	sessions     map[uuid.UUID]*models.Session
	participants map[uuid.UUID]map[uuid.UUID]*models.SessionParticipant
	recordings   map[uuid.UUID]*models.SessionRecording
	feedback     []*models.SessionFeedback
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions:     map[uuid.UUID]*models.Session{},
		participants: map[uuid.UUID]map[uuid.UUID]*models.SessionParticipant{},
		recordings:   map[uuid.UUID]*models.SessionRecording{},
	}
}

func (f *fakeSessionStore) Create(_ context.Context, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	cp := *s
	cp.ParticipantCount = len(f.participants[id])
	return &cp, nil
}

func (f *fakeSessionStore) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*models.Session, error) {
	trace(ctx, "GetByIDForUpdate")
	return f.GetByID(ctx, id)
}

func (f *fakeSessionStore) ListPublic(_ context.Context, offset, limit uint64) ([]*models.Session, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Session
	for _, s := range f.sessions {
		if s.IsPublic {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.After(out[j].ScheduledDate) })
	return page(out, offset, limit), int64(len(out)), nil
}

func (f *fakeSessionStore) UpdateStatus(_ context.Context, _ pgx.Tx, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.sessions[s.ID]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	cur.Status, cur.StartedAt, cur.EndedAt = s.Status, s.StartedAt, s.EndedAt
	return nil
}

func (f *fakeSessionStore) GetParticipant(ctx context.Context, _ pgx.Tx, sessionID, userID uuid.UUID) (*models.SessionParticipant, error) {
	trace(ctx, "GetParticipant")
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[sessionID][userID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("participant not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeSessionStore) CountParticipants(ctx context.Context, _ pgx.Tx, sessionID uuid.UUID) (int, error) {
	trace(ctx, "CountParticipants")
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.participants[sessionID]), nil
}

func (f *fakeSessionStore) AddParticipant(ctx context.Context, _ pgx.Tx, p *models.SessionParticipant) (bool, error) {
	trace(ctx, "AddParticipant")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.participants[p.SessionID] == nil {
		f.participants[p.SessionID] = map[uuid.UUID]*models.SessionParticipant{}
	}
	if _, ok := f.participants[p.SessionID][p.UserID]; ok {
		return false, nil
	}
	p.ID = uuid.New()
	p.JoinedAt = time.Now()
	cp := *p
	f.participants[p.SessionID][p.UserID] = &cp
	return true, nil
}

func (f *fakeSessionStore) LeaveParticipant(_ context.Context, sessionID, userID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[sessionID][userID]
	if !ok || p.LeftAt != nil {
		return apperrors.NewResourceNotFoundError("active participation not found")
	}
	p.LeftAt = &at
	return nil
}

func (f *fakeSessionStore) ListParticipants(_ context.Context, sessionID uuid.UUID) ([]*models.SessionParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.SessionParticipant{}
	for _, p := range f.participants[sessionID] {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeSessionStore) UpsertRecording(_ context.Context, rec *models.SessionRecording) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.recordings[rec.SessionID]; ok {
		rec.ID = cur.ID
	} else {
		rec.ID = uuid.New()
	}
	cp := *rec
	f.recordings[rec.SessionID] = &cp
	return nil
}

func (f *fakeSessionStore) GetRecording(_ context.Context, sessionID uuid.UUID) (*models.SessionRecording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recordings[sessionID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("recording not found")
	}
	cp := *r
	return &cp, nil
}

func (f *fakeSessionStore) CreateFeedback(_ context.Context, _ pgx.Tx, fb *models.SessionFeedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.feedback {
		if e.SessionID == fb.SessionID && e.UserID == fb.UserID {
			return apperrors.NewConflictError("feedback already submitted for this session")
		}
	}
	fb.ID = uuid.New()
	f.feedback = append(f.feedback, fb)
	return nil
}

func (f *fakeSessionStore) MarkFeedbackProvided(_ context.Context, _ pgx.Tx, sessionID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.participants[sessionID][userID]; ok {
		p.ProvidedFeedback = true
	}
	return nil
}

func (f *fakeSessionStore) ListFeedback(_ context.Context, sessionID uuid.UUID) ([]*models.SessionFeedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.SessionFeedback{}
	for _, fb := range f.feedback {
		if fb.SessionID == sessionID {
			out = append(out, fb)
		}
	}
	return out, nil
}

// --- mentorship ---

type fakeMentorshipStore struct {
	mu            sync.Mutex
	programs      map[uuid.UUID]*models.MentorshipProgram
	mentors       map[uuid.UUID]*models.MentorProfile
	mentees       map[uuid.UUID]*models.MenteeProfile
	relationships map[uuid.UUID]*models.MentorshipRelationship
	sessions      map[uuid.UUID]*models.MentorshipSession
}

func newFakeMentorshipStore() *fakeMentorshipStore {
	return &fakeMentorshipStore{
		programs:      map[uuid.UUID]*models.MentorshipProgram{},
		mentors:       map[uuid.UUID]*models.MentorProfile{},
		mentees:       map[uuid.UUID]*models.MenteeProfile{},
		relationships: map[uuid.UUID]*models.MentorshipRelationship{},
		sessions:      map[uuid.UUID]*models.MentorshipSession{},
	}
}

func (f *fakeMentorshipStore) ListPrograms(_ context.Context, publicOnly bool) ([]*models.MentorshipProgram, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.MentorshipProgram{}
	for _, p := range f.programs {
		if !publicOnly || p.IsPublic {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeMentorshipStore) GetProgram(_ context.Context, id uuid.UUID) (*models.MentorshipProgram, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.programs[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("mentorship program not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeMentorshipStore) CreateProgram(_ context.Context, p *models.MentorshipProgram) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	cp := *p
	f.programs[p.ID] = &cp
	return nil
}

func (f *fakeMentorshipStore) GetMentorByUserID(_ context.Context, userID uuid.UUID) (*models.MentorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.mentors[userID]
	if !ok {
		return nil, apperrors.ErrMentorNotFound
	}
	cp := *m
	cp.CurrentMenteeCount = f.countActive(userID)
	return &cp, nil
}

func (f *fakeMentorshipStore) GetMentorForUpdate(ctx context.Context, _ pgx.Tx, userID uuid.UUID) (*models.MentorProfile, error) {
	trace(ctx, "GetMentorForUpdate")
	return f.GetMentorByUserID(ctx, userID)
}

func (f *fakeMentorshipStore) UpsertMentor(_ context.Context, m *models.MentorProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.mentors[m.UserID]; ok {
		m.ID = cur.ID
	} else {
		m.ID = uuid.New()
	}
	cp := *m
	f.mentors[m.UserID] = &cp
	return nil
}

func (f *fakeMentorshipStore) ListAvailableMentors(_ context.Context, offset, limit uint64) ([]*models.MentorProfile, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.MentorProfile
	for _, m := range f.mentors {
		if m.AvailableForMentorship {
			cp := *m
			out = append(out, &cp)
		}
	}
	return page(out, offset, limit), int64(len(out)), nil
}

func (f *fakeMentorshipStore) IncrementMenteesHelped(_ context.Context, _ pgx.Tx, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.mentors[userID]; ok {
		m.TotalMenteesHelped++
	}
	return nil
}

func (f *fakeMentorshipStore) GetMenteeByUserID(_ context.Context, userID uuid.UUID) (*models.MenteeProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.mentees[userID]
	if !ok {
		return nil, apperrors.ErrMenteeNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMentorshipStore) UpsertMentee(_ context.Context, m *models.MenteeProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	f.mentees[m.UserID] = &cp
	return nil
}

func (f *fakeMentorshipStore) CreateRelationship(_ context.Context, rel *models.MentorshipRelationship) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.relationships {
		if r.MentorID == rel.MentorID && r.MenteeID == rel.MenteeID && r.ProgramID == rel.ProgramID {
			return apperrors.NewConflictError("mentorship already requested in this program")
		}
	}
	rel.ID = uuid.New()
	cp := *rel
	f.relationships[rel.ID] = &cp
	return nil
}

func (f *fakeMentorshipStore) GetRelationship(_ context.Context, id uuid.UUID) (*models.MentorshipRelationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.relationships[id]
	if !ok {
		return nil, apperrors.ErrRelationshipNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeMentorshipStore) GetRelationshipForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*models.MentorshipRelationship, error) {
	trace(ctx, "GetRelationshipForUpdate")
	return f.GetRelationship(ctx, id)
}

func (f *fakeMentorshipStore) UpdateRelationship(ctx context.Context, _ pgx.Tx, rel *models.MentorshipRelationship) error {
	trace(ctx, "UpdateRelationship")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.relationships[rel.ID]; !ok {
		return apperrors.ErrRelationshipNotFound
	}
	cp := *rel
	f.relationships[rel.ID] = &cp
	return nil
}

func (f *fakeMentorshipStore) countActive(mentorID uuid.UUID) int {
	n := 0
	for _, r := range f.relationships {
		if r.MentorID == mentorID && r.Status == models.RelationshipActive {
			n++
		}
	}
	return n
}

func (f *fakeMentorshipStore) CountActiveForMentor(ctx context.Context, _ pgx.Tx, mentorUserID uuid.UUID) (int, error) {
	trace(ctx, "CountActiveForMentor")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countActive(mentorUserID), nil
}

func (f *fakeMentorshipStore) ListRelationshipsForUser(_ context.Context, userID uuid.UUID) ([]*models.MentorshipRelationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.MentorshipRelationship{}
	for _, r := range f.relationships {
		if r.MentorID == userID || r.MenteeID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMentorshipStore) IncrementRelationshipSessions(_ context.Context, _ pgx.Tx, rel *models.MentorshipRelationship) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.relationships[rel.ID]; ok {
		r.TotalSessions++
		rel.TotalSessions = r.TotalSessions
	}
	return nil
}

func (f *fakeMentorshipStore) CreateSession(_ context.Context, s *models.MentorshipSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeMentorshipStore) GetSession(_ context.Context, id uuid.UUID) (*models.MentorshipSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("mentorship session not found")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeMentorshipStore) UpdateSession(_ context.Context, _ pgx.Tx, s *models.MentorshipSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeMentorshipStore) ListSessions(_ context.Context, relationshipID uuid.UUID) ([]*models.MentorshipSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.MentorshipSession{}
	for _, s := range f.sessions {
		if s.RelationshipID == relationshipID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- communities ---

type fakeCommunityStore struct {
	mu          sync.Mutex
	communities map[uuid.UUID]*models.Community
	members     map[uuid.UUID]map[uuid.UUID]*models.CommunityMember
	topics      map[uuid.UUID]*models.CommunityTopic
	posts       []*models.CommunityPost
	articles    map[uuid.UUID]*models.CommunityArticle
}

func newFakeCommunityStore() *fakeCommunityStore {
	return &fakeCommunityStore{
		communities: map[uuid.UUID]*models.Community{},
		members:     map[uuid.UUID]map[uuid.UUID]*models.CommunityMember{},
		topics:      map[uuid.UUID]*models.CommunityTopic{},
		articles:    map[uuid.UUID]*models.CommunityArticle{},
	}
}

func (f *fakeCommunityStore) List(_ context.Context, filter models.CommunityFilter, offset, limit uint64) ([]*models.Community, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Community
	for _, c := range f.communities {
		if !c.IsPublic || !c.IsActive {
			continue
		}
		if filter.CommunityType != "" && c.CommunityType != filter.CommunityType {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberCount > out[j].MemberCount })
	return page(out, offset, limit), int64(len(out)), nil
}

func (f *fakeCommunityStore) GetByID(_ context.Context, id uuid.UUID) (*models.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.communities[id]
	if !ok {
		return nil, apperrors.ErrCommunityNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCommunityStore) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*models.Community, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeCommunityStore) Create(_ context.Context, _ pgx.Tx, c *models.Community) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.communities {
		if e.Name == c.Name {
			return apperrors.NewConflictError("community name already exists")
		}
	}
	c.ID = uuid.New()
	cp := *c
	f.communities[c.ID] = &cp
	return nil
}

func (f *fakeCommunityStore) GetMember(_ context.Context, _ pgx.Tx, communityID, userID uuid.UUID) (*models.CommunityMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[communityID][userID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("membership not found")
	}
	cp := *m
	return &cp, nil
}

func (f *fakeCommunityStore) CreateMember(_ context.Context, _ pgx.Tx, m *models.CommunityMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[m.CommunityID] == nil {
		f.members[m.CommunityID] = map[uuid.UUID]*models.CommunityMember{}
	}
	if _, ok := f.members[m.CommunityID][m.UserID]; ok {
		return apperrors.NewConflictError("already a member of this community")
	}
	m.ID = uuid.New()
	m.JoinedAt = time.Now()
	cp := *m
	f.members[m.CommunityID][m.UserID] = &cp
	return nil
}

func (f *fakeCommunityStore) UpdateMember(_ context.Context, _ pgx.Tx, m *models.CommunityMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.members[m.CommunityID][m.UserID]; !ok {
		return apperrors.NewResourceNotFoundError("membership not found")
	}
	cp := *m
	f.members[m.CommunityID][m.UserID] = &cp
	return nil
}

func (f *fakeCommunityStore) RecountMembers(_ context.Context, _ pgx.Tx, communityID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.members[communityID] {
		if m.IsActive {
			n++
		}
	}
	if c, ok := f.communities[communityID]; ok {
		c.MemberCount = n
	}
	return n, nil
}

func (f *fakeCommunityStore) ListMembers(_ context.Context, communityID uuid.UUID, offset, limit uint64) ([]*models.CommunityMember, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.CommunityMember
	for _, m := range f.members[communityID] {
		if m.IsActive {
			cp := *m
			out = append(out, &cp)
		}
	}
	return page(out, offset, limit), int64(len(out)), nil
}

func (f *fakeCommunityStore) IncrementArticleCount(_ context.Context, _ pgx.Tx, communityID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.communities[communityID]; ok {
		c.ArticleCount++
	}
	return nil
}

func (f *fakeCommunityStore) IncrementMemberArticles(_ context.Context, _ pgx.Tx, communityID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.members[communityID][userID]; ok {
		m.ArticlesPublished++
	}
	return nil
}

func (f *fakeCommunityStore) CreateTopic(_ context.Context, t *models.CommunityTopic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = uuid.New()
	cp := *t
	f.topics[t.ID] = &cp
	return nil
}

func (f *fakeCommunityStore) GetTopic(_ context.Context, id uuid.UUID) (*models.CommunityTopic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.topics[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("topic not found")
	}
	cp := *t
	return &cp, nil
}

func (f *fakeCommunityStore) ListTopics(_ context.Context, communityID uuid.UUID, offset, limit uint64) ([]*models.CommunityTopic, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.CommunityTopic
	for _, t := range f.topics {
		if t.CommunityID == communityID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return page(out, offset, limit), int64(len(out)), nil
}

func (f *fakeCommunityStore) CreatePost(_ context.Context, _ pgx.Tx, p *models.CommunityPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	f.posts = append(f.posts, p)
	return nil
}

func (f *fakeCommunityStore) IncrementTopicPosts(_ context.Context, _ pgx.Tx, topicID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.topics[topicID]; ok {
		t.PostCount++
	}
	return nil
}

func (f *fakeCommunityStore) ListPosts(_ context.Context, topicID uuid.UUID, offset, limit uint64) ([]*models.CommunityPost, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.CommunityPost
	for _, p := range f.posts {
		if p.TopicID == topicID {
			out = append(out, p)
		}
	}
	return page(out, offset, limit), int64(len(out)), nil
}

func (f *fakeCommunityStore) CreateArticle(_ context.Context, a *models.CommunityArticle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uuid.New()
	cp := *a
	f.articles[a.ID] = &cp
	return nil
}

func (f *fakeCommunityStore) GetArticle(_ context.Context, id uuid.UUID) (*models.CommunityArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("article not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeCommunityStore) GetArticleForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*models.CommunityArticle, error) {
	return f.GetArticle(ctx, id)
}

func (f *fakeCommunityStore) PublishArticle(_ context.Context, _ pgx.Tx, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("article not found")
	}
	a.IsPublished = true
	a.PublishedAt = &at
	return nil
}

func (f *fakeCommunityStore) ListArticles(_ context.Context, communityID uuid.UUID, offset, limit uint64) ([]*models.CommunityArticle, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.CommunityArticle
	for _, a := range f.articles {
		if a.CommunityID == communityID && a.IsPublished {
			cp := *a
			out = append(out, &cp)
		}
	}
	return page(out, offset, limit), int64(len(out)), nil
}

// --- career ---

type fakeCareerStore struct {
	mu           sync.Mutex
	jobs         map[uuid.UUID]*models.JobPosting
	applications map[uuid.UUID]*models.JobApplication
	skills       map[uuid.UUID]*models.Skill
	userSkills   map[[2]uuid.UUID]*models.UserSkill
	paths        []*models.CareerPath
}

func newFakeCareerStore() *fakeCareerStore {
	return &fakeCareerStore{
		jobs:         map[uuid.UUID]*models.JobPosting{},
		applications: map[uuid.UUID]*models.JobApplication{},
		skills:       map[uuid.UUID]*models.Skill{},
		userSkills:   map[[2]uuid.UUID]*models.UserSkill{},
	}
}

func (f *fakeCareerStore) ListJobs(_ context.Context, filter models.JobFilter, now time.Time, offset, limit uint64) ([]*models.JobPosting, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.JobPosting
	for _, j := range f.jobs {
		if !j.AcceptsApplications(now) {
			continue
		}
		if filter.IsRemote != nil && j.IsRemote != *filter.IsRemote {
			continue
		}
		if filter.EmploymentType != "" && string(j.EmploymentType) != filter.EmploymentType {
			continue
		}
		cp := *j
		out = append(out, &cp)
	}
	return page(out, offset, limit), int64(len(out)), nil
}

func (f *fakeCareerStore) GetJob(_ context.Context, id uuid.UUID) (*models.JobPosting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, apperrors.ErrJobPostingNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeCareerStore) GetJobForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*models.JobPosting, error) {
	return f.GetJob(ctx, id)
}

func (f *fakeCareerStore) CreateJob(_ context.Context, j *models.JobPosting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j.ID = uuid.New()
	cp := *j
	f.jobs[j.ID] = &cp
	return nil
}

func (f *fakeCareerStore) IncrementJobViews(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		j.ViewsCount++
	}
	return nil
}

func (f *fakeCareerStore) IncrementApplications(_ context.Context, _ pgx.Tx, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		j.ApplicationsCount++
	}
	return nil
}

func (f *fakeCareerStore) CreateApplication(_ context.Context, _ pgx.Tx, a *models.JobApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.applications {
		if e.JobPostingID == a.JobPostingID && e.ApplicantID == a.ApplicantID {
			return apperrors.NewConflictError("already applied to this job posting")
		}
	}
	a.ID = uuid.New()
	cp := *a
	f.applications[a.ID] = &cp
	return nil
}

func (f *fakeCareerStore) GetApplication(_ context.Context, id uuid.UUID) (*models.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.applications[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("application not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeCareerStore) UpdateApplicationStatus(_ context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.applications[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("application not found")
	}
	a.Status = status
	return nil
}

func (f *fakeCareerStore) listApplications(match func(a *models.JobApplication) bool) []*models.JobApplication {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.JobApplication{}
	for _, a := range f.applications {
		if match(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

func (f *fakeCareerStore) ListApplicationsForJob(_ context.Context, jobID uuid.UUID) ([]*models.JobApplication, error) {
	return f.listApplications(func(a *models.JobApplication) bool { return a.JobPostingID == jobID }), nil
}

func (f *fakeCareerStore) ListApplicationsForUser(_ context.Context, userID uuid.UUID) ([]*models.JobApplication, error) {
	return f.listApplications(func(a *models.JobApplication) bool { return a.ApplicantID == userID }), nil
}

func (f *fakeCareerStore) ListSkills(_ context.Context) ([]*models.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Skill{}
	for _, s := range f.skills {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeCareerStore) GetSkill(_ context.Context, id uuid.UUID) (*models.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.skills[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("skill not found")
	}
	return s, nil
}

func (f *fakeCareerStore) CreateSkill(_ context.Context, s *models.Skill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.skills {
		if e.Name == s.Name {
			return apperrors.NewConflictError("skill already exists")
		}
	}
	s.ID = uuid.New()
	f.skills[s.ID] = s
	return nil
}

func (f *fakeCareerStore) UpsertUserSkill(_ context.Context, us *models.UserSkill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uuid.UUID{us.UserID, us.SkillID}
	if cur, ok := f.userSkills[key]; ok {
		us.ID = cur.ID
	} else {
		us.ID = uuid.New()
	}
	us.UpdatedAt = time.Now()
	cp := *us
	f.userSkills[key] = &cp
	return nil
}

func (f *fakeCareerStore) ListUserSkills(_ context.Context, userID uuid.UUID) ([]*models.UserSkill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.UserSkill{}
	for k, us := range f.userSkills {
		if k[0] == userID {
			out = append(out, us)
		}
	}
	return out, nil
}

func (f *fakeCareerStore) ListCareerPaths(_ context.Context, industry string) ([]*models.CareerPath, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.CareerPath{}
	for _, p := range f.paths {
		if industry == "" || p.Industry == industry {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCareerStore) CreateCareerPath(_ context.Context, p *models.CareerPath) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	f.paths = append(f.paths, p)
	return nil
}

// --- infrastructure doubles ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) record(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	return m.record(to, subject, body)
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, _, token string) error {
	return m.record(to, "reset", token)
}

func (m *fakeMailer) SendNotification(_ context.Context, to, title, message string) error {
	return m.record(to, title, message)
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakePusher struct {
	mu     sync.Mutex
	pushed map[uuid.UUID][]*websocket.Message
}

func (p *fakePusher) PushToUser(userID uuid.UUID, msg *websocket.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pushed == nil {
		p.pushed = map[uuid.UUID][]*websocket.Message{}
	}
	p.pushed[userID] = append(p.pushed[userID], msg)
}

func (p *fakePusher) count(userID uuid.UUID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushed[userID])
}

// testEnv wires every service over in-memory stores
type testEnv struct {
	users         *fakeUserStore
	tokens        *fakeTokenStore
	resets        *fakeResetStore
	verifications *fakeVerificationStore
	points        *fakePointsStore
	badges        *fakeBadgeStore
	notifications *fakeNotificationStore
	sessions      *fakeSessionStore
	mentorship    *fakeMentorshipStore
	communities   *fakeCommunityStore
	career        *fakeCareerStore

	tx        *serialTx
	mailer    *fakeMailer
	pusher    *fakePusher
	publisher *recordingPublisher
	jwt       *auth.JWTService

	svc *Services
}

var testPointRules = PointRules{SessionHosted: 50, SessionAttended: 10, Article: 25, Mentorship: 100}

func newTestEnv(badges ...*models.Badge) *testEnv {
	e := &testEnv{
		users:         newFakeUserStore(),
		tokens:        newFakeTokenStore(),
		resets:        newFakeResetStore(),
		verifications: newFakeVerificationStore(),
		points:        &fakePointsStore{},
		badges:        newFakeBadgeStore(badges...),
		notifications: newFakeNotificationStore(),
		sessions:      newFakeSessionStore(),
		mentorship:    newFakeMentorshipStore(),
		communities:   newFakeCommunityStore(),
		career:        newFakeCareerStore(),
		tx:            &serialTx{},
		mailer:        &fakeMailer{},
		pusher:        &fakePusher{},
		publisher:     &recordingPublisher{},
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenExp:  time.Hour,
			RefreshTokenExp: 24 * time.Hour,
			TokenIssuer:     "test",
		}),
	}
	e.svc = New(Stores{
		Users:         e.users,
		Tokens:        e.tokens,
		ResetTokens:   e.resets,
		Verifications: e.verifications,
		Points:        e.points,
		Badges:        e.badges,
		Notifications: e.notifications,
		Communities:   e.communities,
		Sessions:      e.sessions,
		Mentorship:    e.mentorship,
		Career:        e.career,
	}, Infra{
		Tx:         e.tx,
		JWT:        e.jwt,
		Mailer:     e.mailer,
		Pusher:     e.pusher,
		Publisher:  e.publisher,
		StatsCache: cache.NoopStatsCache{},
		Points:     testPointRules,
	}, testLogger)
	return e
}
