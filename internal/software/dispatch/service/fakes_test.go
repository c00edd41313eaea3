package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courier-dispatch/internal/domain/driver"
	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/domain/user"
	"courier-dispatch/internal/general/jwt"
	"courier-dispatch/internal/general/logger"
	"courier-dispatch/internal/general/rabbitmq"
	"courier-dispatch/internal/ports"
)

// fakeUoW runs the function directly; fake repos are their own source of truth.
type fakeUoW struct{}

func (fakeUoW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeUsers is an in-memory ports.UserRepository.
type fakeUsers struct {
	mu    sync.Mutex
	seq   int
	byID  map[string]*user.User
	byEml map[string]*user.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*user.User{}, byEml: map[string]*user.User{}}
}

func (f *fakeUsers) add(u *user.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEml[u.Email] = u
}

func (f *fakeUsers) CreateUser(ctx context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.byEml[u.Email]; taken {
		return user.ErrEmailTaken
	}
	if u.ID == "" {
		f.seq++
		u.ID = fmt.Sprintf("usr-%d", f.seq)
	}
	f.byID[u.ID] = u
	f.byEml[u.Email] = u
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEml[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

// fakeShipments mirrors the repository's conditional-write contract.
type fakeShipments struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*shipment.Shipment
}

func newFakeShipments() *fakeShipments {
	return &fakeShipments{rows: map[string]*shipment.Shipment{}}
}

func (f *fakeShipments) add(s *shipment.Shipment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[s.ID] = s
}

func (f *fakeShipments) CreateShipment(ctx context.Context, s *shipment.Shipment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == "" {
		f.seq++
		s.ID = fmt.Sprintf("shp-%d", f.seq)
	}
	f.rows[s.ID] = s
	return nil
}

func (f *fakeShipments) GetByID(ctx context.Context, id string) (*shipment.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, shipment.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeShipments) ListAvailable(ctx context.Context, limit int) ([]*shipment.Shipment, error) {
	return nil, nil
}

func (f *fakeShipments) ListByCustomer(ctx context.Context, customerID string, status *shipment.Status, limit int) ([]*shipment.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*shipment.Shipment
	for _, s := range f.rows {
		if s.CustomerID != customerID || len(out) >= limit {
			continue
		}
		if status != nil && s.Status != *status {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeShipments) ListByDriver(ctx context.Context, driverID string, limit int) ([]*shipment.Shipment, error) {
	return nil, nil
}

func (f *fakeShipments) ListByStatus(ctx context.Context, status *shipment.Status, limit int) ([]*shipment.Shipment, error) {
	return nil, nil
}

func (f *fakeShipments) Claim(ctx context.Context, shipmentID, driverID string, claimedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[shipmentID]
	if !ok || s.Status != shipment.StatusPending || s.DriverID != nil {
		return false, nil
	}
	d := driverID
	at := claimedAt
	s.DriverID = &d
	s.Status = shipment.StatusAssigned
	s.ClaimedAt = &at
	return true, nil
}

func (f *fakeShipments) Advance(ctx context.Context, shipmentID, driverID string, from, to shipment.Status, ev shipment.Evidence, at time.Time) (bool, error) {
	return false, nil
}

func (f *fakeShipments) CancelPending(ctx context.Context, shipmentID, customerID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[shipmentID]
	if !ok || s.Status != shipment.StatusPending || s.CustomerID != customerID {
		return false, nil
	}
	s.Status = shipment.StatusCancelled
	s.UpdatedAt = at
	return true, nil
}

func (f *fakeShipments) CountByStatus(ctx context.Context, status shipment.Status) (int, error) {
	return 0, nil
}

func (f *fakeShipments) SumDeliveredCents(ctx context.Context) (int64, error) {
	return 0, nil
}

// fakeDrivers is an in-memory ports.DriverProfileRepository.
type fakeDrivers struct {
	mu       sync.Mutex
	profiles map[string]*driver.Profile
}

func newFakeDrivers() *fakeDrivers {
	return &fakeDrivers{profiles: map[string]*driver.Profile{}}
}

func (f *fakeDrivers) CreateProfile(ctx context.Context, p *driver.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeDrivers) GetByUserID(ctx context.Context, userID string) (*driver.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, driver.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeDrivers) SetOnline(ctx context.Context, userID string, online bool, lat, lng *float64) error {
	return nil
}

func (f *fakeDrivers) UpdateLocation(ctx context.Context, userID string, lat, lng float64) error {
	return nil
}

func (f *fakeDrivers) IncrementDeliveries(ctx context.Context, userID string) error {
	return nil
}

func (f *fakeDrivers) ListAll(ctx context.Context, limit int) ([]*driver.Profile, error) {
	return nil, nil
}

func (f *fakeDrivers) CountOnline(ctx context.Context) (int, error) { return 0, nil }
func (f *fakeDrivers) CountAll(ctx context.Context) (int, error)   { return 0, nil }

// testEnv bundles a service instance with its backing fakes.
type testEnv struct {
	svc       ports.DispatchService
	users     *fakeUsers
	shipments *fakeShipments
	drivers   *fakeDrivers
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:     newFakeUsers(),
		shipments: newFakeShipments(),
		drivers:   newFakeDrivers(),
	}
	jwtMgr := jwt.NewManager("test-secret-key", time.Hour)
	// a publisher with an unconnected client: publishes fail and are swallowed
	pub := rabbitmq.NewMQPublisher(&rabbitmq.Client{}, "dispatch-service")
	env.svc = NewDispatchService(logger.New("dispatch-test"), fakeUoW{}, env.users, env.shipments, env.drivers, jwtMgr, pub)
	return env
}
