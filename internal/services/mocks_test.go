package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"conferencepass/internal/domain"
)

// In-memory fakes shared by the service tests. They enforce the same
// invariants as the Postgres repositories (unique pair, capacity under lock,
// single consumption) so the concurrency properties can be exercised without
// a database.

type mockActivityRepository struct {
	activities map[string]*domain.Activity
	err        error
}

func (m *mockActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	if m.err != nil {
		return m.err
	}
	if m.activities == nil {
		m.activities = map[string]*domain.Activity{}
	}
	m.activities[a.ID] = a
	return nil
}

func (m *mockActivityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.activities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (m *mockActivityRepository) ListPublished(ctx context.Context, params domain.PaginationParams) ([]*domain.Activity, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []*domain.Activity
	for _, a := range m.activities {
		if a.Published {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockActivityRepository) SetFlags(ctx context.Context, id string, published, active bool) (*domain.Activity, error) {
	a, ok := m.activities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.Published = published
	a.Active = active
	return a, nil
}

type mockEnrollmentRepository struct {
	mu          sync.Mutex
	activities  *mockActivityRepository
	enrollments map[string]*domain.Enrollment // by ID
	tokens      map[string]*domain.QrToken    // by enrollment ID
	now         time.Time
	registerErr error
}

func newMockEnrollmentRepository(activities *mockActivityRepository, now time.Time) *mockEnrollmentRepository {
	return &mockEnrollmentRepository{
		activities:  activities,
		enrollments: map[string]*domain.Enrollment{},
		tokens:      map[string]*domain.QrToken{},
		now:         now,
	}
}

func (m *mockEnrollmentRepository) Register(ctx context.Context, e *domain.Enrollment, t *domain.QrToken, now time.Time) error {
	if m.registerErr != nil {
		return m.registerErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.activities.activities[e.ActivityID]
	if !ok {
		return domain.ErrNotFound
	}
	if !a.Published || !a.Active || !now.Before(a.EndTime) {
		return domain.ErrActivityUnavailable
	}
	active := 0
	for _, existing := range m.enrollments {
		if existing.ActivityID != e.ActivityID || existing.Cancelled {
			continue
		}
		active++
		if existing.UserID == e.UserID {
			return domain.ErrAlreadyEnrolled
		}
	}
	if a.Capacity > 0 && active >= a.Capacity {
		return domain.ErrActivityFull
	}
	m.enrollments[e.ID] = e
	m.tokens[e.ID] = t
	return nil
}

func (m *mockEnrollmentRepository) GetByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (m *mockEnrollmentRepository) GetByActivityAndUser(ctx context.Context, activityID, userID string) (*domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.enrollments {
		if e.ActivityID == activityID && e.UserID == userID && !e.Cancelled {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockEnrollmentRepository) ListForUser(ctx context.Context, userID string) ([]*domain.EnrollmentWithActivity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*domain.EnrollmentWithActivity
	for _, e := range m.enrollments {
		if e.UserID != userID || e.Cancelled {
			continue
		}
		items = append(items, &domain.EnrollmentWithActivity{
			Enrollment: e,
			Activity:   m.activities.activities[e.ActivityID],
			Token:      m.tokens[e.ID],
		})
	}
	if items == nil {
		items = []*domain.EnrollmentWithActivity{}
	}
	return items, nil
}

func (m *mockEnrollmentRepository) CountActive(ctx context.Context, activityID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.enrollments {
		if e.ActivityID == activityID && !e.Cancelled {
			count++
		}
	}
	return count, nil
}

func (m *mockEnrollmentRepository) Cancel(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok || e.Cancelled || e.Status == domain.AttendanceCheckedIn {
		return domain.ErrNotFound
	}
	e.Cancelled = true
	return nil
}

type mockQrTokenRepository struct {
	mu          sync.Mutex
	byTokenID   map[string]*domain.QrToken
	enrollments *mockEnrollmentRepository
}

func newMockQrTokenRepository(enrollments *mockEnrollmentRepository) *mockQrTokenRepository {
	repo := &mockQrTokenRepository{
		byTokenID:   map[string]*domain.QrToken{},
		enrollments: enrollments,
	}
	if enrollments != nil {
		for _, t := range enrollments.tokens {
			repo.byTokenID[t.TokenID] = t
		}
	}
	return repo
}

func (m *mockQrTokenRepository) GetByTokenID(ctx context.Context, tokenID string) (*domain.QrToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byTokenID[tokenID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockQrTokenRepository) Consume(ctx context.Context, tokenID string, at time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byTokenID[tokenID]
	if !ok {
		return "", domain.ErrNotFound
	}
	if t.Consumed {
		return "", domain.ErrTokenAlreadyUsed
	}
	t.Consumed = true
	t.ConsumedAt = &at
	if m.enrollments != nil {
		if e, ok := m.enrollments.enrollments[t.EnrollmentID]; ok && e.Status == domain.AttendanceNotCheckedIn {
			e.Status = domain.AttendanceCheckedIn
			e.AttendedAt = &at
		}
	}
	return t.EnrollmentID, nil
}

type mockUserRepository struct {
	byID  map[string]*domain.User
	err   error
}

func (m *mockUserRepository) Create(ctx context.Context, u *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if m.byID == nil {
		m.byID = map[string]*domain.User{}
	}
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	m.byID[u.ID] = u
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) Update(ctx context.Context, u *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	m.byID[u.ID] = u
	return nil
}

func (m *mockUserRepository) SetProfile(ctx context.Context, userID string, staff *domain.StaffProfile, student *domain.StudentProfile) error {
	u, ok := m.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Staff, u.Student = nil, nil
	switch {
	case staff != nil:
		u.ProfileKind = domain.ProfileStaff
		u.Staff = staff
	case student != nil:
		u.ProfileKind = domain.ProfileStudent
		u.Student = student
	default:
		u.ProfileKind = domain.ProfileNone
	}
	return nil
}

type mockCertificateRepository struct {
	byID map[string]*domain.Certificate
	err  error
}

func (m *mockCertificateRepository) Create(ctx context.Context, c *domain.Certificate) error {
	if m.err != nil {
		return m.err
	}
	if m.byID == nil {
		m.byID = map[string]*domain.Certificate{}
	}
	for _, existing := range m.byID {
		if existing.EnrollmentID == c.EnrollmentID {
			return domain.ErrAlreadyCertified
		}
	}
	m.byID[c.ID] = c
	return nil
}

func (m *mockCertificateRepository) GetBySerial(ctx context.Context, serial string) (*domain.Certificate, error) {
	for _, c := range m.byID {
		if c.SerialCode == serial {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCertificateRepository) GetByEnrollmentID(ctx context.Context, enrollmentID string) (*domain.Certificate, error) {
	for _, c := range m.byID {
		if c.EnrollmentID == enrollmentID {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCertificateRepository) ListForUser(ctx context.Context, userID string) ([]*domain.CertificateWithActivity, error) {
	return []*domain.CertificateWithActivity{}, nil
}

func (m *mockCertificateRepository) SetStatus(ctx context.Context, id string, status domain.CertificateStatus, issuedAt *time.Time) error {
	c, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	c.IssuedAt = issuedAt
	return nil
}

type mockTokenIssuer struct {
	grace   time.Duration
	counter int
	err     error
}

func (m *mockTokenIssuer) Issue(enrollmentID string, activityEnd time.Time, issuedAt time.Time) (*domain.QrToken, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.counter++
	return &domain.QrToken{
		ID:           fmt.Sprintf("tok-row-%d", m.counter),
		TokenID:      fmt.Sprintf("tok-%d", m.counter),
		EnrollmentID: enrollmentID,
		IssuedAt:     issuedAt,
		ExpiresAt:    activityEnd.Add(m.grace),
	}, nil
}

type mockAccessTokenIssuer struct {
	err error
}

func (m *mockAccessTokenIssuer) Issue(userID, email string, staff bool, expiry time.Duration) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "access-token-" + userID, nil
}

type mockHasher struct{}

func (mockHasher) GenerateSalt() (string, error) { return "salt", nil }
func (mockHasher) Hash(salt, password string) (string, error) {
	return "hash:" + salt + ":" + password, nil
}
func (mockHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+":"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

type mockEmailService struct {
	confirmations []*domain.EnrollmentConfirmationEmailData
	certificates  []*domain.CertificateIssuedEmailData
	err           error
}

func (m *mockEmailService) SendEnrollmentConfirmation(ctx context.Context, data *domain.EnrollmentConfirmationEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.confirmations = append(m.confirmations, data)
	return nil
}

func (m *mockEmailService) SendCertificateIssued(ctx context.Context, data *domain.CertificateIssuedEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.certificates = append(m.certificates, data)
	return nil
}
