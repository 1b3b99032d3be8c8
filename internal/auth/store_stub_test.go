package auth

import (
	"context"
	"sync"
	"time"
)

// memStore is an in-memory Store used by service and recovery tests.
type memStore struct {
	mu      sync.Mutex
	byID    map[string]*User
	failure error
}

func newMemStore() *memStore {
	return &memStore{byID: make(map[string]*User)}
}

func (m *memStore) Users(context.Context) UserStore { return m }

func (m *memStore) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return m.failure
	}
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return ErrConflict
		}
	}
	clone := *u
	m.byID[u.ID] = &clone
	return nil
}

func (m *memStore) Find(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return nil, m.failure
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return nil, m.failure
	}
	for _, u := range m.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) UpdateProfile(_ context.Context, userID string, upd ProfileUpdate) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Avatar != nil {
		avatar := *upd.Avatar
		u.Avatar = &avatar
	}
	clone := *u
	return &clone, nil
}

func (m *memStore) UpdatePasswordHash(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memStore) UpdateRefreshTokenHash(_ context.Context, userID string, hash *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return ErrNotFound
	}
	u.HashedRefreshToken = hash
	return nil
}

func (m *memStore) UpdateResetCode(_ context.Context, userID string, code *string, issuedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return ErrNotFound
	}
	u.ResetCode = code
	u.ResetCodeIssuedAt = issuedAt
	return nil
}

// get returns the stored record without cloning; test-side inspection only.
func (m *memStore) get(id string) *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

// recordingMailer captures dispatched reset codes.
type recordingMailer struct {
	mu    sync.Mutex
	sent  []sentMail
	fail  error
}

type sentMail struct {
	to, code, name string
}

func (r *recordingMailer) SendResetCode(_ context.Context, toEmail, code, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.sent = append(r.sent, sentMail{to: toEmail, code: code, name: displayName})
	return nil
}

func (r *recordingMailer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func (r *recordingMailer) last() sentMail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[len(r.sent)-1]
}
