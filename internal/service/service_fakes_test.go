package service

import (
	"context"
	"sort"
	"sync"

	"multichat-be/internal/entity"
	"multichat-be/internal/repository/contract"
	"multichat-be/internal/repository/specification"
	"multichat-be/internal/repository/unitofwork"
	"multichat-be/pkg/events"
	"multichat-be/pkg/llm"

	"github.com/google/uuid"
)

// memStore backs the fake repositories with plain maps so service logic
// can be exercised without a database.
type memStore struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*entity.Conversation
	messages      map[uuid.UUID]*entity.Message
	users         map[uuid.UUID]*entity.User
	preferences   map[uuid.UUID]*entity.UserPreference

	// contentPatches records every UpdateContent call in order.
	contentPatches []string

	// commitErr, when set, fails the next Commit and is cleared.
	commitErr error
}

func newMemStore() *memStore {
	return &memStore{
		conversations: make(map[uuid.UUID]*entity.Conversation),
		messages:      make(map[uuid.UUID]*entity.Message),
		users:         make(map[uuid.UUID]*entity.User),
		preferences:   make(map[uuid.UUID]*entity.UserPreference),
	}
}

// query is the subset of filtering the fakes interpret from the
// specifications the services actually use.
type query struct {
	id             *uuid.UUID
	userId         *uuid.UUID
	conversationId *uuid.UUID
	orderField     string
	orderDesc      bool
}

func parseSpecs(specs []specification.Specification) query {
	var q query
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			id := spec.ID
			q.id = &id
		case specification.UserOwnedBy:
			id := spec.UserID
			q.userId = &id
		case specification.ByConversationID:
			id := spec.ConversationID
			q.conversationId = &id
		case specification.OrderBy:
			q.orderField = spec.Field
			q.orderDesc = spec.Desc
		}
	}
	return q
}

// --- Conversation repository ---

type fakeConversationRepo struct {
	store *memStore
}

func (r *fakeConversationRepo) Create(_ context.Context, c *entity.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *c
	r.store.conversations[c.Id] = &cp
	return nil
}

func (r *fakeConversationRepo) Update(_ context.Context, c *entity.Conversation) error {
	return r.Create(nil, c)
}

func (r *fakeConversationRepo) Touch(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if c, ok := r.store.conversations[id]; ok {
		c.UpdatedAt = c.UpdatedAt.Add(1)
	}
	return nil
}

func (r *fakeConversationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.conversations, id)
	return nil
}

func (r *fakeConversationRepo) match(c *entity.Conversation, q query) bool {
	if q.id != nil && c.Id != *q.id {
		return false
	}
	if q.userId != nil && c.UserId != *q.userId {
		return false
	}
	return true
}

func (r *fakeConversationRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	q := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.conversations {
		if r.match(c, q) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeConversationRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	q := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*entity.Conversation
	for _, c := range r.store.conversations {
		if r.match(c, q) {
			cp := *c
			result = append(result, &cp)
		}
	}
	if q.orderField == "updated_at" {
		sort.Slice(result, func(i, j int) bool {
			if q.orderDesc {
				return result[i].UpdatedAt.After(result[j].UpdatedAt)
			}
			return result[i].UpdatedAt.Before(result[j].UpdatedAt)
		})
	}
	return result, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

// --- Message repository ---

type fakeMessageRepo struct {
	store *memStore
}

func (r *fakeMessageRepo) Create(_ context.Context, m *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *m
	r.store.messages[m.Id] = &cp
	return nil
}

func (r *fakeMessageRepo) UpdateContent(_ context.Context, id uuid.UUID, content string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if m, ok := r.store.messages[id]; ok {
		m.Content = content
	}
	r.store.contentPatches = append(r.store.contentPatches, content)
	return nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.messages, id)
	return nil
}

func (r *fakeMessageRepo) DeleteByConversationId(_ context.Context, conversationId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, m := range r.store.messages {
		if m.ConversationId == conversationId {
			delete(r.store.messages, id)
		}
	}
	return nil
}

func (r *fakeMessageRepo) match(m *entity.Message, q query) bool {
	if q.id != nil && m.Id != *q.id {
		return false
	}
	if q.conversationId != nil && m.ConversationId != *q.conversationId {
		return false
	}
	return true
}

func (r *fakeMessageRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Message, error) {
	q := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.messages {
		if r.match(m, q) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	q := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*entity.Message
	for _, m := range r.store.messages {
		if r.match(m, q) {
			cp := *m
			result = append(result, &cp)
		}
	}
	if q.orderField == "timestamp" {
		sort.Slice(result, func(i, j int) bool {
			if q.orderDesc {
				return result[i].Timestamp.After(result[j].Timestamp)
			}
			return result[i].Timestamp.Before(result[j].Timestamp)
		})
	}
	return result, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

// --- User repository (unused by most tests, minimal) ---

type fakeUserRepo struct {
	store *memStore
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *u
	r.store.users[u.Id] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	return r.Create(nil, u)
}

func (r *fakeUserRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) CreateEmailVerificationToken(_ context.Context, _ *entity.EmailVerificationToken) error {
	return nil
}

func (r *fakeUserRepo) FindEmailVerificationToken(_ context.Context, _ ...specification.Specification) (*entity.EmailVerificationToken, error) {
	return nil, nil
}

func (r *fakeUserRepo) DeleteEmailVerificationToken(_ context.Context, _ *entity.EmailVerificationToken) error {
	return nil
}

// --- Preference repository ---

type fakePreferenceRepo struct {
	store *memStore
}

func (r *fakePreferenceRepo) Save(_ context.Context, p *entity.UserPreference) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *p
	r.store.preferences[p.UserId] = &cp
	return nil
}

func (r *fakePreferenceRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.UserPreference, error) {
	q := parseSpecs(specs)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if q.userId != nil {
		if p, ok := r.store.preferences[*q.userId]; ok {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// --- Unit of work ---

type fakeUow struct {
	store *memStore
}

func (u *fakeUow) Begin(_ context.Context) error { return nil }

func (u *fakeUow) Commit() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if err := u.store.commitErr; err != nil {
		u.store.commitErr = nil
		return err
	}
	return nil
}

func (u *fakeUow) Rollback() error { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}

func (u *fakeUow) ConversationRepository() contract.ConversationRepository {
	return &fakeConversationRepo{store: u.store}
}

func (u *fakeUow) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepo{store: u.store}
}

func (u *fakeUow) PreferenceRepository() contract.PreferenceRepository {
	return &fakePreferenceRepo{store: u.store}
}

type fakeFactory struct {
	store *memStore
}

func (f *fakeFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

// --- Gateway ---

type fakeGenerator struct {
	chunks []string
	err    error

	// block, when non-nil, makes Generate wait for a close or context
	// cancellation before finishing.
	block chan struct{}
}

func (g *fakeGenerator) Generate(ctx context.Context, _ []llm.Message, _ llm.ModelDescriptor, onChunk llm.ChunkFunc) (string, error) {
	var full string
	for _, c := range g.chunks {
		full += c
		if onChunk != nil {
			onChunk(c)
		}
	}
	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return full, ctx.Err()
		}
	}
	if g.err != nil {
		return "", g.err
	}
	return full, nil
}

// --- Event / stream publishers ---

type recordingEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingEventPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingEventPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type recordingStreamPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *recordingStreamPublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

// --- Logger ---

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }
