package httpapi

import (
	"context"
	"sync"
	"time"

	"crewbase.io/internal/auth"
	"crewbase.io/internal/org"
	"crewbase.io/internal/project"
)

// memDB is an in-memory backend implementing every store interface the API
// needs, so handler tests run the real services end to end.
type memDB struct {
	mu       sync.Mutex
	users    map[string]*auth.User
	orgs     map[string]*org.Organization
	members  map[string]*org.Member
	projects map[string]*project.Project
}

func newMemDB() *memDB {
	return &memDB{
		users:    make(map[string]*auth.User),
		orgs:     make(map[string]*org.Organization),
		members:  make(map[string]*org.Member),
		projects: make(map[string]*project.Project),
	}
}

// --- auth.Store / auth.UserStore ---

func (m *memDB) Users(context.Context) auth.UserStore { return m }

func (m *memDB) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return auth.ErrConflict
		}
	}
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *memDB) Find(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memDB) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memDB) UpdateProfile(_ context.Context, userID string, upd auth.ProfileUpdate) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, auth.ErrNotFound
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
	u.UpdatedAt = time.Now().UTC()
	clone := *u
	return &clone, nil
}

func (m *memDB) UpdatePasswordHash(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memDB) UpdateRefreshTokenHash(_ context.Context, userID string, hash *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return auth.ErrNotFound
	}
	u.HashedRefreshToken = hash
	return nil
}

func (m *memDB) UpdateResetCode(_ context.Context, userID string, code *string, issuedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return auth.ErrNotFound
	}
	u.ResetCode = code
	u.ResetCodeIssuedAt = issuedAt
	return nil
}

// setRole flips the global role directly; registration always yields member.
func (m *memDB) setRole(userID string, role auth.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.Role = role
	}
}

// --- auth.MembershipDirectory ---

func (m *memDB) MemberRole(_ context.Context, orgID, userID string) (auth.OrgRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.members {
		if mem.OrganizationID == orgID && mem.UserID == userID {
			return mem.Role, nil
		}
	}
	return "", auth.ErrNotFound
}

// --- org.Store ---

type orgMemStore struct{ db *memDB }

func (s *orgMemStore) Create(_ context.Context, o *org.Organization, owner *org.Member) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	oc := *o
	mc := *owner
	s.db.orgs[o.ID] = &oc
	s.db.members[owner.ID] = &mc
	return nil
}

func (s *orgMemStore) Find(_ context.Context, id string) (*org.Organization, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.orgs[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (s *orgMemStore) List(_ context.Context) ([]*org.Organization, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*org.Organization
	for _, o := range s.db.orgs {
		clone := *o
		out = append(out, &clone)
	}
	return out, nil
}

func (s *orgMemStore) Update(_ context.Context, id string, upd org.Update) (*org.Organization, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.orgs[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	if upd.Name != nil {
		o.Name = *upd.Name
	}
	if upd.Description != nil {
		o.Description = *upd.Description
	}
	clone := *o
	return &clone, nil
}

func (s *orgMemStore) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.orgs[id]; !ok {
		return auth.ErrNotFound
	}
	delete(s.db.orgs, id)
	return nil
}

func (s *orgMemStore) AddMember(_ context.Context, m *org.Member) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.members {
		if existing.OrganizationID == m.OrganizationID && existing.UserID == m.UserID {
			return auth.ErrConflict
		}
	}
	clone := *m
	s.db.members[m.ID] = &clone
	return nil
}

func (s *orgMemStore) FindMember(_ context.Context, orgID, userID string) (*org.Member, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, m := range s.db.members {
		if m.OrganizationID == orgID && m.UserID == userID {
			clone := *m
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s *orgMemStore) ListMembers(_ context.Context, orgID string) ([]org.MemberDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []org.MemberDetail
	for _, m := range s.db.members {
		if m.OrganizationID != orgID {
			continue
		}
		d := org.MemberDetail{Member: *m}
		if u, ok := s.db.users[m.UserID]; ok {
			d.Email = u.Email
			d.FirstName = u.FirstName
			d.LastName = u.LastName
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *orgMemStore) UpdateMemberRole(_ context.Context, orgID, userID string, role auth.OrgRole) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, m := range s.db.members {
		if m.OrganizationID == orgID && m.UserID == userID {
			m.Role = role
			return nil
		}
	}
	return auth.ErrNotFound
}

func (s *orgMemStore) RemoveMember(_ context.Context, orgID, userID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, m := range s.db.members {
		if m.OrganizationID == orgID && m.UserID == userID {
			delete(s.db.members, id)
			return nil
		}
	}
	return auth.ErrNotFound
}

func (s *orgMemStore) CountOwners(_ context.Context, orgID string) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n := 0
	for _, m := range s.db.members {
		if m.OrganizationID == orgID && m.Role == auth.OrgRoleOwner {
			n++
		}
	}
	return n, nil
}

// --- project.Store ---

type projectMemStore struct{ db *memDB }

func (s *projectMemStore) Create(_ context.Context, p *project.Project) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	clone := *p
	s.db.projects[p.ID] = &clone
	return nil
}

func (s *projectMemStore) Find(_ context.Context, id string) (*project.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[id]
	if !ok || p.DeletedAt != nil {
		return nil, auth.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *projectMemStore) ListByOrg(_ context.Context, orgID string) ([]*project.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*project.Project
	for _, p := range s.db.projects {
		if p.OrganizationID == orgID && p.DeletedAt == nil {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *projectMemStore) SoftDelete(_ context.Context, id string, deletedAt time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[id]
	if !ok || p.DeletedAt != nil {
		return auth.ErrNotFound
	}
	p.DeletedAt = &deletedAt
	return nil
}
