package service

import (
	"context"
	"io"
	"sync"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEODRepository mocks the EODRepository interface
type MockEODRepository struct {
	mock.Mock
}

func (m *MockEODRepository) Upsert(ctx context.Context, report *domain.EODReport) (bool, error) {
	args := m.Called(ctx, report)
	return args.Bool(0), args.Error(1)
}

func (m *MockEODRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID, userID *uuid.UUID) (*domain.EODReport, error) {
	args := m.Called(ctx, workspaceID, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EODReport), args.Error(1)
}

func (m *MockEODRepository) List(ctx context.Context, workspaceID uuid.UUID, filter domain.EODFilter) ([]domain.EODReport, int, error) {
	args := m.Called(ctx, workspaceID, filter)
	return args.Get(0).([]domain.EODReport), args.Int(1), args.Error(2)
}

func (m *MockEODRepository) Summary(ctx context.Context, workspaceID uuid.UUID, filter domain.EODFilter) (*domain.EODSummary, error) {
	args := m.Called(ctx, workspaceID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EODSummary), args.Error(1)
}

func (m *MockEODRepository) Update(ctx context.Context, workspaceID, id uuid.UUID, userID *uuid.UUID, update *domain.EODReportUpdate) (*domain.EODReport, error) {
	args := m.Called(ctx, workspaceID, id, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EODReport), args.Error(1)
}

func (m *MockEODRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, workspaceID, id)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository mocks the ProductRepository interface
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, workspaceID uuid.UUID, filter domain.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, workspaceID, filter)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *MockProductRepository) Update(ctx context.Context, workspaceID, id uuid.UUID, update *domain.ProductUpdate) (*domain.Product, error) {
	args := m.Called(ctx, workspaceID, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Categories(ctx context.Context, workspaceID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]string), args.Error(1)
}

// MockMemberRepository mocks the MemberRepository interface
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) GetActiveMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkspaceMember), args.Error(1)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkspaceMember), args.Error(1)
}

func (m *MockMemberRepository) FindByEmail(ctx context.Context, workspaceID uuid.UUID, email string) (*domain.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkspaceMember), args.Error(1)
}

func (m *MockMemberRepository) List(ctx context.Context, workspaceID uuid.UUID, filter domain.TeamFilter) ([]domain.WorkspaceMember, int, error) {
	args := m.Called(ctx, workspaceID, filter)
	return args.Get(0).([]domain.WorkspaceMember), args.Int(1), args.Error(2)
}

func (m *MockMemberRepository) Update(ctx context.Context, workspaceID, id uuid.UUID, update *domain.MemberUpdate) (*domain.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkspaceMember), args.Error(1)
}

func (m *MockMemberRepository) ListMemberships(ctx context.Context, userID uuid.UUID) ([]domain.Membership, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Membership), args.Error(1)
}

// MockInvitationRepository mocks the InvitationRepository interface
type MockInvitationRepository struct {
	mock.Mock
}

func (m *MockInvitationRepository) Create(ctx context.Context, invitation *domain.Invitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *MockInvitationRepository) HasPending(ctx context.Context, workspaceID uuid.UUID, email string) (bool, error) {
	args := m.Called(ctx, workspaceID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitationRepository) GetPendingByTokenHash(ctx context.Context, tokenHash string) (*domain.Invitation, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) ListPending(ctx context.Context, workspaceID uuid.UUID) ([]domain.Invitation, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]domain.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) Revoke(ctx context.Context, workspaceID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, workspaceID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitationRepository) Accept(ctx context.Context, invitation *domain.Invitation, userID uuid.UUID) (*domain.WorkspaceMember, error) {
	args := m.Called(ctx, invitation, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkspaceMember), args.Error(1)
}

// MockProfileRepository mocks the ProfileRepository interface
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) Ensure(ctx context.Context, id uuid.UUID, email string) (*domain.Profile, error) {
	args := m.Called(ctx, id, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, id uuid.UUID, update *domain.ProfileUpdate) (*domain.Profile, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) SetAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	args := m.Called(ctx, id, avatarURL)
	return args.Error(0)
}

// MockWorkspaceRepository mocks the WorkspaceRepository interface
type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) Update(ctx context.Context, id uuid.UUID, update *domain.WorkspaceUpdate) (*domain.Workspace, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) CountActiveMembers(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// MockStore mocks storage.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	args := m.Called(ctx, key, r)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStore) KeyFromURL(url string) (string, bool) {
	args := m.Called(url)
	return args.String(0), args.Bool(1)
}

// MockVerifier mocks TokenVerifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) ValidateAccessToken(token string) (domain.Identity, error) {
	args := m.Called(token)
	return args.Get(0).(domain.Identity), args.Error(1)
}

// recordingAuditor keeps every logged event for assertions
type recordingAuditor struct {
	mu     sync.Mutex
	events []domain.SecurityEvent
}

func (a *recordingAuditor) Log(_ context.Context, event domain.SecurityEvent, severity domain.Severity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	event.Severity = severity
	a.events = append(a.events, event)
}

func (a *recordingAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	actions := make([]string, len(a.events))
	for i, e := range a.events {
		actions[i] = e.Action
	}
	return actions
}

func (a *recordingAuditor) last() domain.SecurityEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events[len(a.events)-1]
}

func actorWith(role domain.Role) domain.Actor {
	return domain.Actor{
		UserID:      uuid.New(),
		Email:       string(role) + "@example.com",
		WorkspaceID: uuid.New(),
		MemberID:    uuid.New(),
		Role:        role,
	}
}
