package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"calendrier/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeEventRepo is an in-memory EventRepository (personal events) for tests.
type fakeEventRepo struct {
	byID    map[string]*domain.Event
	nextID  int
	creates int
	updates int
	err     error // if set, every call returns it
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) writes() int { return f.creates + f.updates }

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.creates++
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	stored := *e
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id, ownerID string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok || e.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	cur, ok := f.byID[e.ID]
	if !ok || cur.OwnerID != e.OwnerID {
		return domain.ErrNotFound
	}
	f.updates++
	stored := *e
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id, ownerID string) error {
	if f.err != nil {
		return f.err
	}
	e, ok := f.byID[id]
	if !ok || e.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) ListByOwner(ctx context.Context, ownerID string, window domain.TimeWindow) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OwnerID == ownerID && window.Overlaps(e.Start, e.End) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sortByStart(out)
	return out, nil
}

// fakeGroupEventRepo is an in-memory GroupEventRepository for tests.
type fakeGroupEventRepo struct {
	byID    map[string]*domain.Event
	nextID  int
	creates int
	updates int
	err     error
}

func newFakeGroupEventRepo() *fakeGroupEventRepo {
	return &fakeGroupEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeGroupEventRepo) writes() int { return f.creates + f.updates }

func (f *fakeGroupEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.creates++
	e.ID = fmt.Sprintf("gev-%d", f.nextID)
	f.nextID++
	stored := *e
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeGroupEventRepo) GetByID(ctx context.Context, id, groupID string) (*domain.Event, error) {
	e, ok := f.byID[id]
	if !ok || e.GroupID != groupID {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeGroupEventRepo) Update(ctx context.Context, e *domain.Event) error {
	cur, ok := f.byID[e.ID]
	if !ok || cur.GroupID != e.GroupID {
		return domain.ErrNotFound
	}
	f.updates++
	stored := *e
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeGroupEventRepo) Delete(ctx context.Context, id, groupID string) error {
	e, ok := f.byID[id]
	if !ok || e.GroupID != groupID {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeGroupEventRepo) ListByGroup(ctx context.Context, groupID string, window domain.TimeWindow) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Event
	for _, e := range f.byID {
		if e.GroupID == groupID && window.Overlaps(e.Start, e.End) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sortByStart(out)
	return out, nil
}

func sortByStart(events []*domain.Event) {
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
}

// fakeGroupRepo is an in-memory GroupRepository. takenCodes simulates codes
// already used by other groups.
type fakeGroupRepo struct {
	byID        map[string]*domain.Group
	takenCodes  map[string]bool
	nextID      int
	createCalls int
	lookups     int
	createErr   error
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		byID:       make(map[string]*domain.Group),
		takenCodes: make(map[string]bool),
		nextID:     1,
	}
}

func (f *fakeGroupRepo) add(g *domain.Group) *domain.Group {
	if g.ID == "" {
		g.ID = fmt.Sprintf("grp-%d", f.nextID)
		f.nextID++
	}
	f.byID[g.ID] = g
	f.takenCodes[g.InviteCode] = true
	return g
}

func (f *fakeGroupRepo) Create(ctx context.Context, g *domain.Group) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if f.takenCodes[g.InviteCode] {
		return domain.ErrDuplicateInviteCode
	}
	cp := *g
	f.add(&cp)
	g.ID = cp.ID
	return nil
}

func (f *fakeGroupRepo) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	g, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func (f *fakeGroupRepo) GetByInviteCode(ctx context.Context, code string) (*domain.Group, error) {
	f.lookups++
	for _, g := range f.byID {
		if g.InviteCode == code {
			return g, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeMembershipRepo is an in-memory MembershipRepository.
type fakeMembershipRepo struct {
	members   []*domain.Membership
	groups    *fakeGroupRepo
	nextID    int
	calls     int
	createErr error
	countErr  error
	// raceOnCreate makes Create store the row and then report ErrAlreadyMember,
	// as if a concurrent request had inserted it first.
	raceOnCreate bool
}

func newFakeMembershipRepo(groups *fakeGroupRepo) *fakeMembershipRepo {
	return &fakeMembershipRepo{groups: groups, nextID: 1}
}

func (f *fakeMembershipRepo) add(groupID, accountID string, role domain.Role) *domain.Membership {
	m := &domain.Membership{
		ID:        fmt.Sprintf("mem-%d", f.nextID),
		GroupID:   groupID,
		AccountID: accountID,
		Role:      role,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.members = append(f.members, m)
	return m
}

func (f *fakeMembershipRepo) Create(ctx context.Context, m *domain.Membership) error {
	f.calls++
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.members {
		if existing.GroupID == m.GroupID && existing.AccountID == m.AccountID {
			return domain.ErrAlreadyMember
		}
	}
	stored := f.add(m.GroupID, m.AccountID, m.Role)
	m.ID = stored.ID
	if f.raceOnCreate {
		return domain.ErrAlreadyMember
	}
	return nil
}

func (f *fakeMembershipRepo) Get(ctx context.Context, groupID, accountID string) (*domain.Membership, error) {
	f.calls++
	for _, m := range f.members {
		if m.GroupID == groupID && m.AccountID == accountID {
			return m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMembershipRepo) CountByGroupID(ctx context.Context, groupID string) (int, error) {
	f.calls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, m := range f.members {
		if m.GroupID == groupID {
			n++
		}
	}
	return n, nil
}

func (f *fakeMembershipRepo) ListByAccountID(ctx context.Context, accountID string) ([]*domain.GroupWithRole, error) {
	var out []*domain.GroupWithRole
	for _, m := range f.members {
		if m.AccountID != accountID {
			continue
		}
		g, _ := f.groups.GetByID(ctx, m.GroupID)
		out = append(out, &domain.GroupWithRole{Group: g, Role: m.Role})
	}
	return out, nil
}

func (f *fakeMembershipRepo) countFor(groupID string) int {
	n := 0
	for _, m := range f.members {
		if m.GroupID == groupID {
			n++
		}
	}
	return n
}

// fakeAccountRepo is an in-memory AccountRepository.
type fakeAccountRepo struct {
	byID      map[string]*domain.Account
	nextID    int
	createErr error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byID: make(map[string]*domain.Account), nextID: 1}
}

func (f *fakeAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == a.Email {
			return domain.ErrDuplicateEmail
		}
	}
	a.ID = fmt.Sprintf("acc-%d", f.nextID)
	f.nextID++
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	for _, a := range f.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

// fakeSessionRepo is an in-memory SessionRepository.
type fakeSessionRepo struct {
	byID      map[string]*domain.Session
	createErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byID: make(map[string]*domain.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range f.byID {
		if s.Expired(now) {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

// fakeEmailService records the last messages it was asked to send.
type fakeEmailService struct {
	lastInvitation *domain.GroupInvitationEmailData
	lastWelcome    *domain.WelcomeEmailData
	err            error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeEmailData) error {
	f.lastWelcome = data
	return f.err
}

func (f *fakeEmailService) SendGroupInvitation(ctx context.Context, data *domain.GroupInvitationEmailData) error {
	f.lastInvitation = data
	return f.err
}
