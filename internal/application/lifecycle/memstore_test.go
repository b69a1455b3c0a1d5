package lifecycle

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leasehub/leasehub/internal/domain/application"
	"github.com/leasehub/leasehub/internal/domain/billing"
	"github.com/leasehub/leasehub/internal/domain/contract"
	"github.com/leasehub/leasehub/internal/domain/notification"
	"github.com/leasehub/leasehub/internal/domain/payment"
	"github.com/leasehub/leasehub/internal/domain/room"
	"github.com/leasehub/leasehub/internal/domain/storage"
)

// memStore is an in-memory storage.Store. ExecTx serializes transactions and
// restores a snapshot on error, so rollback semantics match the real store
// closely enough for transition tests. Reads hand out copies; only Update and
// Create persist mutations.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	contracts     map[uuid.UUID]*contract.Contract
	rooms         map[uuid.UUID]*room.Room
	applications  map[uuid.UUID]*application.RentalApplication
	invoices      map[uuid.UUID]*billing.Invoice
	payments      map[uuid.UUID]*billing.Payment
	configs       map[uuid.UUID]*payment.Config
	notifications map[uuid.UUID]*notification.Notification
	sequences     map[string]int64
}

func newMemStore() *memStore {
	return &memStore{
		contracts:     make(map[uuid.UUID]*contract.Contract),
		rooms:         make(map[uuid.UUID]*room.Room),
		applications:  make(map[uuid.UUID]*application.RentalApplication),
		invoices:      make(map[uuid.UUID]*billing.Invoice),
		payments:      make(map[uuid.UUID]*billing.Payment),
		configs:       make(map[uuid.UUID]*payment.Config),
		notifications: make(map[uuid.UUID]*notification.Notification),
		sequences:     make(map[string]int64),
	}
}

var _ storage.Store = (*memStore)(nil)

func (s *memStore) Contracts() contract.Repository           { return (*memContracts)(s) }
func (s *memStore) Rooms() room.Repository                   { return (*memRooms)(s) }
func (s *memStore) Applications() application.Repository     { return (*memApplications)(s) }
func (s *memStore) Billing() billing.Repository              { return (*memBilling)(s) }
func (s *memStore) PaymentConfigs() payment.ConfigRepository { return (*memConfigs)(s) }
func (s *memStore) Notifications() notification.Repository   { return (*memNotifications)(s) }

func (s *memStore) NextContractSequence(ctx context.Context, landlordID uuid.UUID, yearMonth string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := landlordID.String() + "/" + yearMonth
	s.sequences[key]++
	return s.sequences[key], nil
}

func (s *memStore) ExecTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	contracts     map[uuid.UUID]*contract.Contract
	rooms         map[uuid.UUID]*room.Room
	applications  map[uuid.UUID]*application.RentalApplication
	invoices      map[uuid.UUID]*billing.Invoice
	payments      map[uuid.UUID]*billing.Payment
	configs       map[uuid.UUID]*payment.Config
	notifications map[uuid.UUID]*notification.Notification
	sequences     map[string]int64
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		contracts:     make(map[uuid.UUID]*contract.Contract, len(s.contracts)),
		rooms:         make(map[uuid.UUID]*room.Room, len(s.rooms)),
		applications:  make(map[uuid.UUID]*application.RentalApplication, len(s.applications)),
		invoices:      make(map[uuid.UUID]*billing.Invoice, len(s.invoices)),
		payments:      make(map[uuid.UUID]*billing.Payment, len(s.payments)),
		configs:       make(map[uuid.UUID]*payment.Config, len(s.configs)),
		notifications: make(map[uuid.UUID]*notification.Notification, len(s.notifications)),
		sequences:     make(map[string]int64, len(s.sequences)),
	}
	for k, v := range s.contracts {
		snap.contracts[k] = cloneContract(v)
	}
	for k, v := range s.rooms {
		snap.rooms[k] = cloneRoom(v)
	}
	for k, v := range s.applications {
		snap.applications[k] = cloneApplication(v)
	}
	for k, v := range s.invoices {
		c := *v
		snap.invoices[k] = &c
	}
	for k, v := range s.payments {
		c := *v
		snap.payments[k] = &c
	}
	for k, v := range s.configs {
		c := *v
		snap.configs[k] = &c
	}
	for k, v := range s.notifications {
		c := *v
		snap.notifications[k] = &c
	}
	for k, v := range s.sequences {
		snap.sequences[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts = snap.contracts
	s.rooms = snap.rooms
	s.applications = snap.applications
	s.invoices = snap.invoices
	s.payments = snap.payments
	s.configs = snap.configs
	s.notifications = snap.notifications
	s.sequences = snap.sequences
}

func cloneContract(c *contract.Contract) *contract.Contract {
	out := *c
	return &out
}

func cloneRoom(r *room.Room) *room.Room {
	out := *r
	return &out
}

func cloneApplication(a *application.RentalApplication) *application.RentalApplication {
	out := *a
	return &out
}

// memContracts implements contract.Repository over memStore.
type memContracts memStore

func (m *memContracts) Create(ctx context.Context, c *contract.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[c.ID] = cloneContract(c)
	return nil
}

func (m *memContracts) GetByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[id]
	if !ok {
		return nil, contract.ErrNotFound
	}
	return cloneContract(c), nil
}

func (m *memContracts) GetForUpdate(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	return m.GetByID(ctx, id)
}

func (m *memContracts) List(ctx context.Context, filter contract.Filter, limit, offset int) ([]*contract.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*contract.Contract
	for _, c := range m.contracts {
		if filter.TenantID != nil && c.TenantID != *filter.TenantID {
			continue
		}
		if filter.LandlordID != nil && c.LandlordID != *filter.LandlordID {
			continue
		}
		if filter.RoomID != nil && c.RoomID != *filter.RoomID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(c.ContractNumber, filter.Search) {
			continue
		}
		out = append(out, cloneContract(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return pageContracts(out, limit, offset), nil
}

func (m *memContracts) ListByStatus(ctx context.Context, status contract.Status, limit int) ([]*contract.Contract, error) {
	return m.List(ctx, contract.Filter{Status: &status}, limit, 0)
}

func (m *memContracts) ListActiveEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*contract.Contract, error) {
	all, _ := m.ListByStatus(ctx, contract.StatusActive, 0)
	var out []*contract.Contract
	for _, c := range all {
		if c.EndDate.Before(cutoff) {
			out = append(out, c)
		}
	}
	return pageContracts(out, limit, 0), nil
}

func (m *memContracts) ListActiveEndingBetween(ctx context.Context, from, to time.Time) ([]*contract.Contract, error) {
	all, _ := m.ListByStatus(ctx, contract.StatusActive, 0)
	var out []*contract.Contract
	for _, c := range all {
		if !c.EndDate.Before(from) && c.EndDate.Before(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memContracts) ListStaleNegotiations(ctx context.Context, cutoff time.Time, limit int) ([]*contract.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*contract.Contract
	for _, c := range m.contracts {
		if c.Status != contract.StatusDraft && c.Status != contract.StatusPendingSignature {
			continue
		}
		if c.UpdatedAt.Before(cutoff) {
			out = append(out, cloneContract(c))
		}
	}
	return pageContracts(out, limit, 0), nil
}

func (m *memContracts) Update(ctx context.Context, c *contract.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contracts[c.ID]; !ok {
		return contract.ErrNotFound
	}
	m.contracts[c.ID] = cloneContract(c)
	return nil
}

func (m *memContracts) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contracts[id]; !ok {
		return contract.ErrNotFound
	}
	delete(m.contracts, id)
	return nil
}

func pageContracts(in []*contract.Contract, limit, offset int) []*contract.Contract {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

// memRooms implements room.Repository over memStore.
type memRooms memStore

func (m *memRooms) Create(ctx context.Context, r *room.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID] = cloneRoom(r)
	return nil
}

func (m *memRooms) GetByID(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, room.ErrNotFound
	}
	return cloneRoom(r), nil
}

func (m *memRooms) GetForUpdate(ctx context.Context, id uuid.UUID) (*room.Room, error) {
	return m.GetByID(ctx, id)
}

func (m *memRooms) List(ctx context.Context, landlordID *uuid.UUID, limit, offset int) ([]*room.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*room.Room
	for _, r := range m.rooms {
		if landlordID != nil && r.LandlordID != *landlordID {
			continue
		}
		out = append(out, cloneRoom(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (m *memRooms) UpdateStatus(ctx context.Context, id uuid.UUID, status room.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return room.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// memApplications implements application.Repository over memStore.
type memApplications memStore

func (m *memApplications) Create(ctx context.Context, a *application.RentalApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applications[a.ID] = cloneApplication(a)
	return nil
}

func (m *memApplications) GetByID(ctx context.Context, id uuid.UUID) (*application.RentalApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if !ok {
		return nil, application.ErrNotFound
	}
	return cloneApplication(a), nil
}

func (m *memApplications) List(ctx context.Context, filter application.Filter, limit, offset int) ([]*application.RentalApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*application.RentalApplication
	for _, a := range m.applications {
		if filter.TenantID != nil && a.TenantID != *filter.TenantID {
			continue
		}
		if filter.LandlordID != nil && a.LandlordID != *filter.LandlordID {
			continue
		}
		if filter.RoomID != nil && a.RoomID != *filter.RoomID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		out = append(out, cloneApplication(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memApplications) Update(ctx context.Context, a *application.RentalApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.applications[a.ID]; !ok {
		return application.ErrNotFound
	}
	m.applications[a.ID] = cloneApplication(a)
	return nil
}

func (m *memApplications) Complete(ctx context.Context, id, contractID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if !ok {
		return application.ErrNotFound
	}
	a.Status = application.StatusCompleted
	a.ContractID = &contractID
	if a.ReviewedAt == nil {
		a.ReviewedAt = &at
	}
	return nil
}

func (m *memApplications) RejectOtherPending(ctx context.Context, roomID uuid.UUID, exceptID *uuid.UUID, reason string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.applications {
		if a.RoomID != roomID || a.Status != application.StatusPending {
			continue
		}
		if exceptID != nil && a.ID == *exceptID {
			continue
		}
		a.Status = application.StatusRejected
		r := reason
		a.RejectionReason = &r
		a.ReviewedAt = &at
		n++
	}
	return n, nil
}

// memBilling implements billing.Repository over memStore.
type memBilling memStore

func (m *memBilling) CreateInvoice(ctx context.Context, inv *billing.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *inv
	m.invoices[inv.ID] = &c
	return nil
}

func (m *memBilling) GetInvoiceByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invoices {
		if inv.InvoiceNumber == invoiceNumber {
			c := *inv
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memBilling) ListInvoicesByContract(ctx context.Context, contractID uuid.UUID) ([]*billing.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*billing.Invoice
	for _, inv := range m.invoices {
		if inv.ContractID == contractID {
			c := *inv
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memBilling) CreatePayment(ctx context.Context, p *billing.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *p
	m.payments[p.ID] = &c
	return nil
}

func (m *memBilling) GetCompletedPayment(ctx context.Context, invoiceID uuid.UUID) (*billing.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.InvoiceID == invoiceID && p.Status == billing.PaymentStatusCompleted {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

// memConfigs implements payment.ConfigRepository over memStore.
type memConfigs memStore

func (m *memConfigs) GetByLandlord(ctx context.Context, landlordID uuid.UUID) (*payment.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[landlordID]
	if !ok {
		return nil, nil
	}
	c := *cfg
	return &c, nil
}

func (m *memConfigs) Upsert(ctx context.Context, cfg *payment.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *cfg
	m.configs[cfg.LandlordID] = &c
	return nil
}

// memNotifications implements notification.Repository over memStore.
type memNotifications memStore

func (m *memNotifications) Create(ctx context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *n
	m.notifications[n.ID] = &c
	return nil
}

func (m *memNotifications) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memNotifications) MarkRead(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil
	}
	n.Read = true
	return nil
}
