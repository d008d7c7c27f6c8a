package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/MiniBodegas/Plataforma-sub000/internal/availability"
	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
	"github.com/MiniBodegas/Plataforma-sub000/internal/queue"
	"github.com/MiniBodegas/Plataforma-sub000/internal/repository"
)

// In-memory store fakes.  They mimic the repository contracts closely
// enough for the engine logic: sql.ErrNoRows for missing rows, the
// sentinel errors for guard violations, and the capacity re-check in
// CreateLocked.

type fakeWarehouseStore struct {
	items  map[uint64]*model.Warehouse
	owners map[uint64]uint64 // warehouseID -> owner user id
}

func newFakeWarehouseStore() *fakeWarehouseStore {
	return &fakeWarehouseStore{
		items:  make(map[uint64]*model.Warehouse),
		owners: make(map[uint64]uint64),
	}
}

func (f *fakeWarehouseStore) add(w *model.Warehouse, ownerID uint64) {
	f.items[w.ID] = w
	f.owners[w.ID] = ownerID
}

func (f *fakeWarehouseStore) GetByID(_ context.Context, id uint64) (*model.Warehouse, error) {
	w, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return w, nil
}

func (f *fakeWarehouseStore) OwnerOf(_ context.Context, id uint64) (uint64, error) {
	owner, ok := f.owners[id]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return owner, nil
}

type fakeReservationStore struct {
	mu        sync.Mutex
	rows      map[uint64]*model.Reservation
	nextID    uint64
	providers map[uint64]uint64 // warehouseID -> provider user id
	caps      map[uint64]uint32 // warehouseID -> pool capacity, default 1
	createErr error
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{
		rows:      make(map[uint64]*model.Reservation),
		providers: make(map[uint64]uint64),
		caps:      make(map[uint64]uint32),
	}
}

func (f *fakeReservationStore) seed(r model.Reservation) *model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	f.rows[r.ID] = &r
	return &r
}

func (f *fakeReservationStore) ListActive(_ context.Context, warehouseID uint64) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, r := range f.rows {
		if r.WarehouseID == warehouseID &&
			(r.Estado == model.EstadoPendiente || r.Estado == model.EstadoAceptada) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReservationStore) CreateLocked(ctx context.Context, res *model.Reservation) error {
	if f.createErr != nil {
		return f.createErr
	}
	active, _ := f.ListActive(ctx, res.WarehouseID)
	capacity := uint32(1)
	if c, ok := f.caps[res.WarehouseID]; ok {
		capacity = c
	}
	cal := availability.Build(active, capacity, fixedToday())
	if !cal.RangeFree(res.StartDate, res.EndDate) {
		return repository.ErrConflict
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	res.ID = f.nextID
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	cp := *res
	f.rows[res.ID] = &cp
	return nil
}

func (f *fakeReservationStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservationStore) Parties(_ context.Context, id uint64) (uint64, uint64, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return 0, 0, 0, sql.ErrNoRows
	}
	return r.RenterID, f.providers[r.WarehouseID], r.WarehouseID, nil
}

func (f *fakeReservationStore) TransitionFromPending(_ context.Context, id uint64, estado string, motivo *string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if r.Estado != model.EstadoPendiente {
		return nil, repository.ErrInvalidTransition
	}
	r.Estado = estado
	r.MotivoRechazo = motivo
	now := time.Now().UTC()
	r.DecidedAt = &now
	r.UpdatedAt = now
	cp := *r
	return &cp, nil
}

type fakeNotificationStore struct {
	mu        sync.Mutex
	rows      []model.Notification
	nextID    uint64
	insertErr error

	markReadCalls   int
	markManyBatches [][]uint64
	markAllCalls    int
}

func (f *fakeNotificationStore) Insert(_ context.Context, n *model.Notification) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now().UTC()
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotificationStore) CountUnread(_ context.Context, userID uint64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, row := range f.rows {
		if row.RecipientID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationStore) ListByRecipient(_ context.Context, userID uint64, _ int) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, row := range f.rows {
		if row.RecipientID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, userID, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markReadCalls++
	f.markLocked(userID, id)
	return nil
}

func (f *fakeNotificationStore) MarkManyRead(_ context.Context, userID uint64, ids []uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := make([]uint64, len(ids))
	copy(batch, ids)
	f.markManyBatches = append(f.markManyBatches, batch)
	for _, id := range ids {
		f.markLocked(userID, id)
	}
	return nil
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markAllCalls++
	for i := range f.rows {
		if f.rows[i].RecipientID == userID {
			f.rows[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationStore) markLocked(userID, id uint64) {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].RecipientID == userID {
			f.rows[i].IsRead = true
		}
	}
}

func (f *fakeNotificationStore) byRecipient(userID uint64) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, row := range f.rows {
		if row.RecipientID == userID {
			out = append(out, row)
		}
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
}

func (f *fakePublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}
