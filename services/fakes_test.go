package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore keeps every collection in memory. It does not enforce the slot index,
// so double-booking protection in tests comes from the service alone.
type memStore struct {
	mu           sync.Mutex
	users        map[string]models.User
	appointments map[string]models.Appointment
	records      map[string]models.HealthRecord
	hospitals    map[string]models.Hospital
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[string]models.User{},
		appointments: map[string]models.Appointment{},
		records:      map[string]models.HealthRecord{},
		hospitals:    map[string]models.Hospital{},
	}
}

func (m *memStore) stores() Stores {
	return Stores{Users: m, Appointments: m, HealthRecords: m, Hospitals: m, Stats: m}
}

func paginate[T any](items []T, page, limit int64) []T {
	_, limit, skip := util.Pagination(page, limit)
	if skip >= int64(len(items)) {
		return []T{}
	}
	end := min(skip+limit, int64(len(items)))
	return items[skip:end]
}

func (m *memStore) addUser(u models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.users[u.ID.Hex()] = u
	return u
}

func (m *memStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, util.ErrNoDocument
	}
	return &u, nil
}

func (m *memStore) InsertUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return fmt.Errorf("%w: email", util.ErrDuplicateKey)
		}
	}
	user.ID = primitive.NewObjectID()
	m.users[user.ID.Hex()] = *user
	return nil
}

func (m *memStore) ReplaceUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[user.ID.Hex()]
	if !ok || stored.Version != user.Version {
		return util.ErrNoDocument
	}
	user.Version++
	m.users[user.ID.Hex()] = *user
	return nil
}

func (m *memStore) ListUsers(_ context.Context, f models.UserFilter) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Specialty != "" && !strings.EqualFold(u.Specialty, f.Specialty) {
			continue
		}
		if f.VerifiedOnly && !u.IsVerified {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (m *memStore) InsertAppointment(_ context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = primitive.NewObjectID()
	m.appointments[a.ID.Hex()] = *a
	return nil
}

func (m *memStore) FindAppointmentByID(_ context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, util.ErrNoDocument
	}
	return &a, nil
}

func (m *memStore) FindActiveAppointments(_ context.Context, doctorID string, day time.Time) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, a := range m.appointments {
		if a.Doctor == doctorID && a.Date.Equal(day) && a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) CountActiveInSlot(_ context.Context, doctorID string, day time.Time, clock, excludeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, a := range m.appointments {
		if id == excludeID {
			continue
		}
		if a.Doctor == doctorID && a.Date.Equal(day) && a.Time == clock && a.Active {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ReplaceAppointment(_ context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.appointments[a.ID.Hex()]
	if !ok || stored.Status != a.Status {
		return util.ErrNoDocument
	}
	m.appointments[a.ID.Hex()] = *a
	return nil
}

func (m *memStore) TransitionAppointment(_ context.Context, id string, change models.StatusChange) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok || !slices.Contains(change.From, a.Status) {
		return nil, util.ErrNoDocument
	}
	a.SetStatus(change.To)
	if change.CancellationReason != "" {
		a.CancellationReason = change.CancellationReason
	}
	a.UpdatedBy, a.UpdatedAt = change.UpdatedBy, change.UpdatedAt
	m.appointments[id] = a
	return &a, nil
}

func (m *memStore) ListAppointments(_ context.Context, f models.AppointmentFilter) ([]models.Appointment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, a := range m.appointments {
		switch {
		case f.DoctorID != "" && a.Doctor != f.DoctorID,
			f.PatientID != "" && a.Patient != f.PatientID,
			f.Status != "" && a.Status != f.Status,
			f.ConsultationType != "" && a.ConsultationType != f.ConsultationType,
			f.StartDate != nil && a.Date.Before(*f.StartDate),
			f.EndDate != nil && a.Date.After(*f.EndDate):
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (m *memStore) FindDueForCompletion(_ context.Context, statuses []models.AppointmentStatus, day time.Time) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, a := range m.appointments {
		if slices.Contains(statuses, a.Status) && !a.Date.After(day) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) InsertHealthRecord(_ context.Context, r *models.HealthRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = primitive.NewObjectID()
	m.records[r.ID.Hex()] = *r
	return nil
}

func (m *memStore) FindHealthRecordByID(_ context.Context, id string) (*models.HealthRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, util.ErrNoDocument
	}
	return &r, nil
}

func (m *memStore) ReplaceHealthRecord(_ context.Context, r *models.HealthRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[r.ID.Hex()]
	if !ok || stored.Version != r.Version {
		return util.ErrNoDocument
	}
	r.Version++
	m.records[r.ID.Hex()] = *r
	return nil
}

func (m *memStore) SoftDeleteHealthRecord(_ context.Context, id string, at time.Time, by string) (*models.HealthRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok || r.Status == models.RecordDeleted {
		return nil, util.ErrNoDocument
	}
	r.Status, r.UpdatedAt, r.UpdatedBy = models.RecordDeleted, at, by
	r.Version++
	m.records[id] = r
	return &r, nil
}

func (m *memStore) ListHealthRecords(_ context.Context, f models.HealthRecordFilter) ([]models.HealthRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.HealthRecord
	for _, r := range m.records {
		if (f.PatientID != "" && r.Patient != f.PatientID) ||
			(f.DoctorID != "" && r.Doctor != f.DoctorID) ||
			(f.Status != "" && r.Status != f.Status) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VisitDate.After(out[j].VisitDate) })
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (m *memStore) InsertHospital(_ context.Context, h *models.Hospital) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.hospitals {
		if existing.Name == h.Name || existing.Slug == h.Slug {
			return fmt.Errorf("%w: hospital", util.ErrDuplicateKey)
		}
	}
	h.ID = primitive.NewObjectID()
	m.hospitals[h.ID.Hex()] = *h
	return nil
}

func (m *memStore) FindHospitalByID(_ context.Context, id string) (*models.Hospital, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hospitals[id]
	if !ok {
		return nil, util.ErrNoDocument
	}
	return &h, nil
}

func (m *memStore) FindHospitalBySlug(_ context.Context, slug string) (*models.Hospital, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.hospitals {
		if h.Slug == slug {
			return &h, nil
		}
	}
	return nil, util.ErrNoDocument
}

func (m *memStore) SlugTaken(_ context.Context, slug, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, h := range m.hospitals {
		if id != excludeID && h.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ReplaceHospital(_ context.Context, h *models.Hospital) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.hospitals[h.ID.Hex()]
	if !ok || stored.Version != h.Version {
		return util.ErrNoDocument
	}
	h.Version++
	m.hospitals[h.ID.Hex()] = *h
	return nil
}

func (m *memStore) ListHospitals(_ context.Context, page, limit int64) ([]models.Hospital, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Hospital, 0, len(m.hospitals))
	for _, h := range m.hospitals {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, page, limit), int64(len(out)), nil
}

func (m *memStore) CountUsersByRole(context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	for _, u := range m.users {
		out[string(u.Role)]++
	}
	return out, nil
}

func (m *memStore) CountAppointmentsByStatus(context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	for _, a := range m.appointments {
		out[string(a.Status)]++
	}
	return out, nil
}

func (m *memStore) CountHealthRecordsByStatus(context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	for _, r := range m.records {
		out[string(r.Status)]++
	}
	return out, nil
}

func (m *memStore) CountHospitals(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.hospitals)), nil
}

// memCache is a JSON cache in a map with the same lease rules as the Redis one.
type memCache struct {
	mu     sync.Mutex
	items  map[string][]byte
	leases map[string]string
	next   int
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}, leases: map[string]string{}}
}

func (c *memCache) LeaseCache(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.leases[key]; held {
		return "", nil
	}
	c.next++
	token := fmt.Sprintf("lease-%d", c.next)
	c.leases[key] = token
	return token, nil
}

func (c *memCache) FillCache(_ context.Context, key, token string, value any) (bool, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.leases[key] != token {
		return false, nil
	}
	delete(c.leases, key)
	c.items[key] = payload
	return true, nil
}

func (c *memCache) GetCache(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	payload, ok := c.items[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(payload, dest)
}

func (c *memCache) DeleteCache(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.items, key)
		delete(c.leases, key)
	}
	return nil
}

// afterFind runs hook once, right after the wrapped store's next read by id.
type afterFind struct {
	mu   sync.Mutex
	hook func()
}

func (a *afterFind) fire() {
	a.mu.Lock()
	hook := a.hook
	a.hook = nil
	a.mu.Unlock()
	if hook != nil {
		hook()
	}
}

type racingAppointments struct {
	AppointmentStore
	after *afterFind
}

func (r *racingAppointments) FindAppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	a, err := r.AppointmentStore.FindAppointmentByID(ctx, id)
	r.after.fire()
	return a, err
}

type racingRecords struct {
	HealthRecordStore
	after *afterFind
}

func (r *racingRecords) FindHealthRecordByID(ctx context.Context, id string) (*models.HealthRecord, error) {
	rec, err := r.HealthRecordStore.FindHealthRecordByID(ctx, id)
	r.after.fire()
	return rec, err
}

type racingUsers struct {
	UserStore
	after *afterFind
}

func (r *racingUsers) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := r.UserStore.FindUserByID(ctx, id)
	r.after.fire()
	return u, err
}

type racingHospitals struct {
	HospitalStore
	after *afterFind
}

func (r *racingHospitals) FindHospitalByID(ctx context.Context, id string) (*models.Hospital, error) {
	h, err := r.HospitalStore.FindHospitalByID(ctx, id)
	r.after.fire()
	return h, err
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) ObserveBooking(outcome string)   { m.Called(outcome) }
func (m *mockRecorder) ObserveTransition(status string) { m.Called(status) }
func (m *mockRecorder) ObserveAutoCompleted(n int)      { m.Called(n) }

type mockChatModel struct {
	mock.Mock
}

func (m *mockChatModel) Chat(ctx context.Context, system string, history []ChatTurn, message string) (string, error) {
	args := m.Called(ctx, system, history, message)
	return args.String(0), args.Error(1)
}

// fixture seeds an admin, a verified doctor working 09:00-11:00, an unverified doctor and two patients.
type fixture struct {
	store      *memStore
	admin      role.Requester
	doctor     role.Requester
	otherDoc   role.Requester
	unverified role.Requester
	patient    role.Requester
	other      role.Requester
}

func newFixture() *fixture {
	store := newMemStore()
	seed := func(name string, r role.Role, verified bool, hours *models.ConsultationHours) role.Requester {
		u := store.addUser(models.User{
			Name:              name,
			Email:             strings.ToLower(name) + "@caresync.test",
			Role:              r,
			IsVerified:        verified,
			ConsultationHours: hours,
		})
		return role.Requester{ID: u.ID.Hex(), Role: r}
	}
	return &fixture{
		store:      store,
		admin:      seed("Admin", role.ADMIN, true, nil),
		doctor:     seed("Dora", role.DOCTOR, true, &models.ConsultationHours{Start: "09:00", End: "11:00"}),
		otherDoc:   seed("Otto", role.DOCTOR, true, nil),
		unverified: seed("Uma", role.DOCTOR, false, nil),
		patient:    seed("Pat", role.PATIENT, true, nil),
		other:      seed("Quinn", role.PATIENT, true, nil),
	}
}
