package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"courier-dispatch/internal/domain/driver"
	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/domain/user"
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
		u.ID = "usr-" + u.Email
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

// fakeShipments mirrors the repository's conditional-write contract: the
// guarded mutations report whether they changed the row, under a single lock
// standing in for the database's row-level atomicity.
type fakeShipments struct {
	mu   sync.Mutex
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
		s.ID = "shp-" + time.Now().Format("150405.000000000")
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
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*shipment.Shipment
	for _, s := range f.rows {
		if s.Status == shipment.StatusPending && s.DriverID == nil {
			cp := *s
			out = append(out, &cp)
		}
	}
	// mirror the board query's ORDER BY pickup_at ASC, created_at ASC
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PickupAt.Equal(out[j].PickupAt) {
			return out[i].PickupAt.Before(out[j].PickupAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
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
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*shipment.Shipment
	for _, s := range f.rows {
		if s.DriverID != nil && *s.DriverID == driverID && len(out) < limit {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeShipments) ListByStatus(ctx context.Context, status *shipment.Status, limit int) ([]*shipment.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*shipment.Shipment
	for _, s := range f.rows {
		if len(out) >= limit {
			break
		}
		if status != nil && s.Status != *status {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
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
	s.UpdatedAt = at
	return true, nil
}

func (f *fakeShipments) Advance(ctx context.Context, shipmentID, driverID string, from, to shipment.Status, ev shipment.Evidence, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[shipmentID]
	if !ok || s.Status != from || s.DriverID == nil || *s.DriverID != driverID {
		return false, nil
	}
	s.Status = to
	s.UpdatedAt = at
	ts := at
	switch to {
	case shipment.StatusPickedUp:
		s.PickedUpAt = &ts
		if ev.PhotoRef != "" {
			ref := ev.PhotoRef
			s.PickupPhotoRef = &ref
		}
	case shipment.StatusDelivered:
		s.DeliveredAt = &ts
		if ev.PhotoRef != "" {
			ref := ev.PhotoRef
			s.DeliveryPhotoRef = &ref
		}
		if ev.SignatureRef != "" {
			ref := ev.SignatureRef
			s.SignatureRef = &ref
		}
	}
	return true, nil
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
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.rows {
		if s.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeShipments) SumDeliveredCents(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, s := range f.rows {
		if s.Status == shipment.StatusDelivered {
			sum += int64(s.PriceCents)
		}
	}
	return sum, nil
}

// fakeDrivers is an in-memory ports.DriverProfileRepository.
type fakeDrivers struct {
	mu       sync.Mutex
	profiles map[string]*driver.Profile
}

func newFakeDrivers() *fakeDrivers {
	return &fakeDrivers{profiles: map[string]*driver.Profile{}}
}

func (f *fakeDrivers) add(p *driver.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.UserID] = p
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
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return driver.ErrNotFound
	}
	p.IsOnline = online
	if lat != nil && lng != nil {
		p.CurrentLatitude = lat
		p.CurrentLongitude = lng
	}
	return nil
}

func (f *fakeDrivers) UpdateLocation(ctx context.Context, userID string, lat, lng float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return driver.ErrNotFound
	}
	p.CurrentLatitude = &lat
	p.CurrentLongitude = &lng
	return nil
}

func (f *fakeDrivers) IncrementDeliveries(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return driver.ErrNotFound
	}
	p.TotalDeliveries++
	return nil
}

func (f *fakeDrivers) ListAll(ctx context.Context, limit int) ([]*driver.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*driver.Profile
	for _, p := range f.profiles {
		if len(out) >= limit {
			break
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeDrivers) CountOnline(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.profiles {
		if p.IsOnline {
			n++
		}
	}
	return n, nil
}

func (f *fakeDrivers) CountAll(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.profiles), nil
}

// fakeEvidence records blobs in memory and hands out deterministic refs.
type fakeEvidence struct {
	mu    sync.Mutex
	blobs map[string][]byte
	types map[string]string
	n     int
}

func newFakeEvidence() *fakeEvidence {
	return &fakeEvidence{blobs: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeEvidence) Put(ctx context.Context, shipmentID, kind string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	ref := shipmentID + "/" + kind + "-" + string(rune('a'+f.n)) + ".jpg"
	f.blobs[ref] = data
	f.types[ref] = contentType
	return ref, nil
}

func (f *fakeEvidence) Get(ctx context.Context, ref string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[ref]
	if !ok {
		return nil, "", shipment.ErrNotFound
	}
	return data, f.types[ref], nil
}

// testEnv bundles a service instance with its backing fakes.
type testEnv struct {
	svc       ports.CourierService
	users     *fakeUsers
	shipments *fakeShipments
	drivers   *fakeDrivers
	evidence  *fakeEvidence
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:     newFakeUsers(),
		shipments: newFakeShipments(),
		drivers:   newFakeDrivers(),
		evidence:  newFakeEvidence(),
	}
	// a publisher with an unconnected client: publishes fail and are swallowed
	pub := rabbitmq.NewMQPublisher(&rabbitmq.Client{}, "courier-service")
	env.svc = NewCourierService(logger.New("courier-test"), fakeUoW{}, env.users, env.shipments, env.drivers, env.evidence, pub)
	return env
}
