//go:build !integration

package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-quest-bot/internal/domain"
	"telegram-quest-bot/internal/domain/model"
	"telegram-quest-bot/internal/domain/ports/adapter"
	"telegram-quest-bot/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- Mock TransactionManager ----

// MockTxManager runs the function directly; unit tests exercise logic, not
// transaction semantics.
type MockTxManager struct {
	Calls int
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.Calls++
	return fn(ctx, repository.NoTX)
}

// ---- Mock QRDecoder ----

type MockDecoder struct {
	DecodeFunc func(ctx context.Context, imageBytes []byte) ([]string, error)
}

var _ adapter.QRDecoder = (*MockDecoder)(nil)

func (m *MockDecoder) Decode(ctx context.Context, imageBytes []byte) ([]string, error) {
	if m.DecodeFunc != nil {
		return m.DecodeFunc(ctx, imageBytes)
	}
	return nil, nil
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu   sync.Mutex
	byID map[string]*model.User

	SaveFunc             func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByTelegramIDFunc func(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byID: map[string]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	if cp.ID == "" {
		cp.ID = uuid.NewString()
		u.ID = cp.ID
	}
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	if r.FindByTelegramIDFunc != nil {
		return r.FindByTelegramIDFunc(ctx, tx, tgID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.TelegramID == tgID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.User, 0, len(r.byID))
	for _, u := range r.byID {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TelegramID < out[j].TelegramID })
	return out, nil
}

// ---- Mock TokenRepository ----

type MockTokenRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Token

	CreateFunc func(ctx context.Context, tx repository.Tx, t *model.Token) error
}

var _ repository.TokenRepository = (*MockTokenRepo)(nil)

func NewMockTokenRepo() *MockTokenRepo {
	return &MockTokenRepo{byID: map[string]*model.Token{}}
}

func (r *MockTokenRepo) Create(ctx context.Context, tx repository.Tx, t *model.Token) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Name == t.Name {
			return domain.ErrAlreadyExists
		}
	}
	cp := *t
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MockTokenRepo) Save(ctx context.Context, tx repository.Tx, t *model.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *t
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MockTokenRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *MockTokenRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockTokenRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byID {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockTokenRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Token, 0, len(r.byID))
	for _, t := range r.byID {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- Mock ActivationRepository ----

// MockActivationRepo mimics the database-side composite unique constraint: the
// pair check and the insert happen under one lock, so concurrent inserts of
// the same (user, token) pair resolve to exactly one winner.
type MockActivationRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Activation
	pair map[string]struct{}

	InsertFunc func(ctx context.Context, tx repository.Tx, a *model.Activation) error
}

var _ repository.ActivationRepository = (*MockActivationRepo)(nil)

func NewMockActivationRepo() *MockActivationRepo {
	return &MockActivationRepo{
		byID: map[string]*model.Activation{},
		pair: map[string]struct{}{},
	}
}

func pairKey(userID, tokenID string) string { return userID + "/" + tokenID }

func (r *MockActivationRepo) Insert(ctx context.Context, tx repository.Tx, a *model.Activation) error {
	if r.InsertFunc != nil {
		return r.InsertFunc(ctx, tx, a)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(a.UserID, a.TokenID)
	if _, ok := r.pair[key]; ok {
		return domain.ErrAlreadyActivated
	}
	a.Time = time.Now()
	cp := *a
	r.byID[cp.ID] = &cp
	r.pair[key] = struct{}{}
	return nil
}

func (r *MockActivationRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		delete(r.pair, pairKey(a.UserID, a.TokenID))
		delete(r.byID, id)
	}
	return nil
}

func (r *MockActivationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Activation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockActivationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Activation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Activation
	for _, a := range r.byID {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (r *MockActivationRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Activation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Activation, 0, len(r.byID))
	for _, a := range r.byID {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockActivationRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.byID {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MockActivationRepo) RankUsers(ctx context.Context, tx repository.Tx, limit int) ([]*model.RankedUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, a := range r.byID {
		counts[a.UserID]++
	}
	ranked := make([]*model.RankedUser, 0, len(counts))
	for userID, n := range counts {
		ranked = append(ranked, &model.RankedUser{User: model.User{ID: userID}, Activations: n})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Activations > ranked[j].Activations })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
