package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"boleia/internal/domain"
	"boleia/internal/geo"
	"boleia/internal/redis"
	"boleia/internal/repository"
	"boleia/internal/stream"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.RideRequest

	// Counters for verification
	CreateCallCount   int32
	AssignIfCallCount int32

	// Error injection
	CreateError error
	GetError    error
	AssignError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{rides: make(map[string]*domain.RideRequest)}
}

// AddRide seeds a ride into the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.RideRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

// GetRide returns the stored ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.RideRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.RideRequest) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.RideRequest, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetAll(ctx context.Context) ([]*domain.RideRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RideRequest, 0, len(m.rides))
	for _, r := range m.rides {
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *MockRideRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.RideRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.DriverID != driverID {
			continue
		}
		switch r.Status {
		case domain.RideStatusAccepted, domain.RideStatusAtPickup, domain.RideStatusInProgress:
			copy := *r
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRideRepository) AssignIf(ctx context.Context, id, driverID, vehicleID string) (bool, error) {
	atomic.AddInt32(&m.AssignIfCallCount, 1)
	if m.AssignError != nil {
		return false, m.AssignError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusPending && ride.Status != domain.RideStatusSearching {
		return false, nil
	}
	ride.DriverID = driverID
	ride.VehicleID = vehicleID
	ride.Status = domain.RideStatusAccepted
	return true, nil
}

func (m *MockRideRepository) UpdateStatusIf(ctx context.Context, id string, from, to domain.RideStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if ride.Status != from {
		return false, nil
	}
	ride.Status = to
	return true, nil
}

func (m *MockRideRepository) CompleteIf(ctx context.Context, id string, fare float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusInProgress {
		return false, nil
	}
	ride.Status = domain.RideStatusCompleted
	ride.FinalFare = fare
	return true, nil
}

func (m *MockRideRepository) CancelIf(ctx context.Context, id string, from domain.RideStatus, reason string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if ride.Status != from {
		return false, nil
	}
	ride.Status = domain.RideStatusCancelled
	ride.CancelReason = reason
	ride.CancelledAt = time.Now()
	return true, nil
}

func (m *MockRideRepository) snapshot() map[string]domain.RideRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state := make(map[string]domain.RideRequest, len(m.rides))
	for id, r := range m.rides {
		state[id] = *r
	}
	return state
}

func (m *MockRideRepository) restore(state map[string]domain.RideRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides = make(map[string]*domain.RideRequest, len(state))
	for id := range state {
		ride := state[id]
		m.rides[id] = &ride
	}
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.DriverProfile

	// Counters for verification
	UpdateStatusIfCallCount int32

	// Error injection
	GetError          error
	UpdateStatusError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{drivers: make(map[string]*domain.DriverProfile)}
}

// AddDriver seeds a driver into the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.DriverProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

// GetDriver returns the stored driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.DriverProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.DriverProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.DriverProfile, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) UpdateStatusIf(ctx context.Context, id string, from, to domain.DriverStatus) (bool, error) {
	atomic.AddInt32(&m.UpdateStatusIfCallCount, 1)
	if m.UpdateStatusError != nil {
		return false, m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if driver.Status != from {
		return false, nil
	}
	driver.Status = to
	return true, nil
}

func (m *MockDriverRepository) SetActiveVehicle(ctx context.Context, id, vehicleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.ActiveVehicleID = vehicleID
	return nil
}

func (m *MockDriverRepository) snapshot() map[string]domain.DriverProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state := make(map[string]domain.DriverProfile, len(m.drivers))
	for id, d := range m.drivers {
		state[id] = *d
	}
	return state
}

func (m *MockDriverRepository) restore(state map[string]domain.DriverProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers = make(map[string]*domain.DriverProfile, len(state))
	for id := range state {
		driver := state[id]
		m.drivers[id] = &driver
	}
}

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{vehicles: make(map[string]*domain.Vehicle)}
}

// AddVehicle seeds a vehicle into the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *vehicle
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// AddUser seeds a user into the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK WALLET REPOSITORY
// ──────────────────────────────────────────────

// MockWalletRepository is a mock implementation of WalletRepository.
// Balances live in their own map so wallet state can be snapshotted
// independently of user records.
type MockWalletRepository struct {
	mu       sync.RWMutex
	balances map[string]float64

	// Counters for verification
	DebitCallCount  int32
	CreditCallCount int32

	// Error injection
	DebitError  error
	CreditError error
}

// NewMockWalletRepository creates a new mock wallet repository.
func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{balances: make(map[string]float64)}
}

// SetBalance seeds a wallet balance.
func (m *MockWalletRepository) SetBalance(userID string, balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = balance
}

// GetBalance returns a balance for test assertions.
func (m *MockWalletRepository) GetBalance(userID string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[userID]
}

func (m *MockWalletRepository) Balance(ctx context.Context, userID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[userID], nil
}

func (m *MockWalletRepository) Debit(ctx context.Context, userID string, amount float64) (bool, error) {
	atomic.AddInt32(&m.DebitCallCount, 1)
	if m.DebitError != nil {
		return false, m.DebitError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[userID] < amount {
		return false, nil
	}
	m.balances[userID] -= amount
	return true, nil
}

func (m *MockWalletRepository) Credit(ctx context.Context, userID string, amount float64) error {
	atomic.AddInt32(&m.CreditCallCount, 1)
	if m.CreditError != nil {
		return m.CreditError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] += amount
	return nil
}

func (m *MockWalletRepository) snapshot() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state := make(map[string]float64, len(m.balances))
	for id, b := range m.balances {
		state[id] = b
	}
	return state
}

func (m *MockWalletRepository) restore(state map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances = make(map[string]float64, len(state))
	for id, b := range state {
		m.balances[id] = b
	}
}

// ──────────────────────────────────────────────
// MOCK LEDGER REPOSITORY
// ──────────────────────────────────────────────

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	mu      sync.RWMutex
	entries []*domain.Transaction

	// Error injection
	AppendError error
}

// NewMockLedgerRepository creates a new mock ledger repository.
func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

// Entries returns all recorded entries for test assertions.
func (m *MockLedgerRepository) Entries() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Transaction, 0, len(m.entries))
	for _, e := range m.entries {
		copy := *e
		result = append(result, &copy)
	}
	return result
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *domain.Transaction) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *entry
	m.entries = append(m.entries, &copy)
	return nil
}

func (m *MockLedgerRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Transaction
	for _, e := range m.entries {
		if e.UserID == userID {
			copy := *e
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockLedgerRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Transaction
	for _, e := range m.entries {
		if e.RideID == rideID {
			copy := *e
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockLedgerRepository) snapshot() []domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state := make([]domain.Transaction, 0, len(m.entries))
	for _, e := range m.entries {
		state = append(state, *e)
	}
	return state
}

func (m *MockLedgerRepository) restore(state []domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make([]*domain.Transaction, 0, len(state))
	for i := range state {
		entry := state[i]
		m.entries = append(m.entries, &entry)
	}
}

// ──────────────────────────────────────────────
// MOCK CHAT REPOSITORY
// ──────────────────────────────────────────────

// MockChatRepository is a mock implementation of ChatRepository.
type MockChatRepository struct {
	mu       sync.RWMutex
	messages []*domain.ChatMessage
}

// NewMockChatRepository creates a new mock chat repository.
func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{}
}

func (m *MockChatRepository) Append(ctx context.Context, msg *domain.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *msg
	m.messages = append(m.messages, &copy)
	return nil
}

func (m *MockChatRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.ChatMessage
	for _, msg := range m.messages {
		if msg.RideID == rideID {
			copy := *msg
			result = append(result, &copy)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK TX MANAGER
// ──────────────────────────────────────────────

// MockTxManager runs the transactional function against the shared mocks
// and restores their state when the function fails, mimicking a
// database rollback so atomicity can be asserted in tests.
type MockTxManager struct {
	Rides   *MockRideRepository
	Drivers *MockDriverRepository
	Wallets *MockWalletRepository
	Ledger  *MockLedgerRepository

	// Counters for verification
	TxCallCount     int32
	RolledBackCount int32
}

// NewMockTxManager creates a transaction manager over the given mocks.
func NewMockTxManager(rides *MockRideRepository, drivers *MockDriverRepository, wallets *MockWalletRepository, ledger *MockLedgerRepository) *MockTxManager {
	return &MockTxManager{Rides: rides, Drivers: drivers, Wallets: wallets, Ledger: ledger}
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	atomic.AddInt32(&m.TxCallCount, 1)

	rideState := m.Rides.snapshot()
	driverState := m.Drivers.snapshot()
	walletState := m.Wallets.snapshot()
	ledgerState := m.Ledger.snapshot()

	err := fn(repository.Repos{
		Rides:   m.Rides,
		Drivers: m.Drivers,
		Wallets: m.Wallets,
		Ledger:  m.Ledger,
	})
	if err != nil {
		m.Rides.restore(rideState)
		m.Drivers.restore(driverState)
		m.Wallets.restore(walletState)
		m.Ledger.restore(ledgerState)
		atomic.AddInt32(&m.RolledBackCount, 1)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStoreInterface.
// FindNearby mirrors the real index: it returns every driver whose exact
// distance is within the radius, sorted nearest first.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[string]redis.DriverLocation

	// Counters for verification
	UpdateCallCount int32
	RemoveCallCount int32

	// Error injection
	UpdateError     error
	FindNearbyError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{locations: make(map[string]redis.DriverLocation)}
}

// SetLocation seeds a driver position.
func (m *MockLocationStore) SetLocation(driverID string, lat, lng float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[driverID] = redis.DriverLocation{DriverID: driverID, Lat: lat, Lng: lng}
}

// HasLocation reports whether a driver is present in the index.
func (m *MockLocationStore) HasLocation(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.locations[driverID]
	return ok
}

func (m *MockLocationStore) Update(ctx context.Context, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[driverID] = redis.DriverLocation{DriverID: driverID, Lat: lat, Lng: lng}
	return nil
}

func (m *MockLocationStore) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]redis.DriverLocation, error) {
	if m.FindNearbyError != nil {
		return nil, m.FindNearbyError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []redis.DriverLocation
	for _, loc := range m.locations {
		dist := geo.Haversine(lat, lng, loc.Lat, loc.Lng)
		if dist <= radiusKm {
			loc.Distance = dist
			result = append(result, loc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Distance < result[j].Distance })
	return result, nil
}

func (m *MockLocationStore) Remove(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.RemoveCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, driverID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) acquire(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] {
		return false
	}
	m.locks[key] = true
	return true
}

func (m *MockLockStore) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, key)
}

func (m *MockLockStore) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	return m.acquire("driver:" + driverID), nil
}

func (m *MockLockStore) ReleaseDriverLock(ctx context.Context, driverID string) error {
	m.release("driver:" + driverID)
	return nil
}

func (m *MockLockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	return m.acquire("ride:" + rideID), nil
}

func (m *MockLockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	m.release("ride:" + rideID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK PUBLISHER
// ──────────────────────────────────────────────

// MockPublisher records published ride events.
type MockPublisher struct {
	mu     sync.Mutex
	events []domain.RideEvent
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishRideEvent(ctx context.Context, event domain.RideEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns all published events for test assertions.
func (m *MockPublisher) Events() []domain.RideEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]domain.RideEvent, len(m.events))
	copy(result, m.events)
	return result
}

// EventsOfType returns the published events matching the given type.
func (m *MockPublisher) EventsOfType(eventType domain.RideEventType) []domain.RideEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.RideEvent
	for _, e := range m.events {
		if e.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// Ensure mocks satisfy the interfaces they stand in for.
var (
	_ repository.RideRepository    = (*MockRideRepository)(nil)
	_ repository.DriverRepository  = (*MockDriverRepository)(nil)
	_ repository.VehicleRepository = (*MockVehicleRepository)(nil)
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ repository.WalletRepository  = (*MockWalletRepository)(nil)
	_ repository.LedgerRepository  = (*MockLedgerRepository)(nil)
	_ repository.ChatRepository    = (*MockChatRepository)(nil)
	_ repository.TxManager         = (*MockTxManager)(nil)
	_ redis.LocationStoreInterface = (*MockLocationStore)(nil)
	_ redis.LockStoreInterface     = (*MockLockStore)(nil)
	_ stream.Publisher             = (*MockPublisher)(nil)
)
