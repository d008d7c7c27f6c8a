package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
	"github.com/MiniBodegas/Plataforma-sub000/internal/repository"
)

const (
	testOwnerID  = uint64(10)
	testRenterID = uint64(20)
)

func fixedToday() time.Time {
	return time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time { return &t }

type ReservationServiceSuite struct {
	suite.Suite
	svc          *ReservationService
	warehouses   *fakeWarehouseStore
	reservations *fakeReservationStore
	notes        *fakeNotificationStore
	pub          *fakePublisher
}

func (s *ReservationServiceSuite) SetupTest() {
	s.warehouses = newFakeWarehouseStore()
	s.reservations = newFakeReservationStore()
	s.notes = &fakeNotificationStore{}
	s.pub = &fakePublisher{}
	s.svc = NewReservationService(s.warehouses, s.reservations, NewDispatcher(s.notes, s.pub))
	s.svc.now = fixedToday

	s.warehouses.add(&model.Warehouse{
		ID:                1,
		CompanyID:         5,
		City:              "Bogotá",
		Address:           "Calle 100 #12-34",
		MonthlyPriceCents: 150_000_00,
		TotalUnits:        1,
		Available:         true,
	}, testOwnerID)
	s.reservations.providers[1] = testOwnerID
}

func (s *ReservationServiceSuite) TestCreateReservation() {
	start := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	res, err := s.svc.Create(context.Background(), CreateRequest{
		RenterID:    testRenterID,
		WarehouseID: 1,
		StartDate:   start,
		Services:    []string{"transporte", "seguro", "transporte"},
	})
	s.Require().NoError(err)
	s.NotZero(res.ID)
	s.Equal(model.EstadoPendiente, res.Estado)

	s.Require().NotNil(res.EndDate, "default term should set an end date")
	wantEnd := time.Date(2025, time.July, 9, 0, 0, 0, 0, time.UTC)
	s.True(res.EndDate.Equal(wantEnd), "end date = %v, want %v (one month inclusive)", res.EndDate, wantEnd)
	s.Equal(uint64(150_000_00), res.TotalPriceCents, "want one monthly rate")
	s.Len(res.Services, 2, "duplicates removed")

	got := s.notes.byRecipient(testOwnerID)
	s.Require().Len(got, 1, "exactly one provider notification")
	s.Equal(model.NotifNuevaSolicitud, got[0].Tipo)
	s.Require().NotNil(got[0].ReservationID)
	s.Equal(res.ID, *got[0].ReservationID)
	s.Len(s.pub.events, 1)
}

func (s *ReservationServiceSuite) TestCreateIndefinite() {
	res, err := s.svc.Create(context.Background(), CreateRequest{
		RenterID:    testRenterID,
		WarehouseID: 1,
		StartDate:   time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		Indefinite:  true,
	})
	s.Require().NoError(err)
	s.Nil(res.EndDate, "indefinite reservation must have no end date")
	s.Equal(uint64(150_000_00), res.TotalPriceCents, "one month up front")
}

func (s *ReservationServiceSuite) TestCreateValidation() {
	ctx := context.Background()

	cases := []struct {
		name  string
		req   CreateRequest
		field string
	}{
		{"missing renter", CreateRequest{WarehouseID: 1, StartDate: fixedToday()}, "renter_id"},
		{"missing warehouse", CreateRequest{RenterID: testRenterID, StartDate: fixedToday()}, "warehouse_id"},
		{"missing start", CreateRequest{RenterID: testRenterID, WarehouseID: 1}, "start_date"},
		{"past start", CreateRequest{
			RenterID: testRenterID, WarehouseID: 1,
			StartDate: time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC),
		}, "start_date"},
		{"end before start", CreateRequest{
			RenterID: testRenterID, WarehouseID: 1,
			StartDate: time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
			EndDate:   datePtr(time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)),
		}, "end_date"},
	}
	for _, tc := range cases {
		_, err := s.svc.Create(ctx, tc.req)
		var ve *ValidationError
		s.Require().ErrorAs(err, &ve, tc.name)
		s.Equal(tc.field, ve.Field, tc.name)
	}
	s.Empty(s.notes.rows, "rejected requests must not notify")
}

func (s *ReservationServiceSuite) TestCreateUnavailableWarehouse() {
	s.warehouses.items[1].Available = false

	_, err := s.svc.Create(context.Background(), CreateRequest{
		RenterID:    testRenterID,
		WarehouseID: 1,
		StartDate:   time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
	})
	s.Require().ErrorIs(err, repository.ErrUnitUnavailable)
	s.Empty(s.notes.rows)
}

func (s *ReservationServiceSuite) TestCreateConflict() {
	s.reservations.seed(model.Reservation{
		RenterID:    33,
		WarehouseID: 1,
		StartDate:   time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC),
		EndDate:     datePtr(time.Date(2025, time.June, 25, 0, 0, 0, 0, time.UTC)),
		Estado:      model.EstadoAceptada,
	})

	_, err := s.svc.Create(context.Background(), CreateRequest{
		RenterID:    testRenterID,
		WarehouseID: 1,
		StartDate:   time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     datePtr(time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC)),
	})
	s.Require().ErrorIs(err, repository.ErrConflict)
	s.Empty(s.notes.rows, "conflicting request must not notify")
}

func (s *ReservationServiceSuite) TestCreateStoreConflictLeavesNoNotification() {
	// The fast path can pass while the locked insert still refuses; a
	// refused insert must not leak a provider notification.
	s.reservations.createErr = repository.ErrConflict

	_, err := s.svc.Create(context.Background(), CreateRequest{
		RenterID:    testRenterID,
		WarehouseID: 1,
		StartDate:   time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
	})
	s.Require().ErrorIs(err, repository.ErrConflict)
	s.Empty(s.notes.rows)
}

func (s *ReservationServiceSuite) TestCreateNotificationFailureDoesNotFail() {
	s.notes.insertErr = errors.New("notification store down")

	res, err := s.svc.Create(context.Background(), CreateRequest{
		RenterID:    testRenterID,
		WarehouseID: 1,
		StartDate:   time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err, "creation must survive a notification failure")
	s.NotZero(res.ID)
}

func (s *ReservationServiceSuite) TestCreatePoolSecondUnit() {
	s.warehouses.items[1].TotalUnits = 2
	s.reservations.caps[1] = 2
	s.reservations.seed(model.Reservation{
		RenterID:    33,
		WarehouseID: 1,
		StartDate:   time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC),
		EndDate:     datePtr(time.Date(2025, time.June, 25, 0, 0, 0, 0, time.UTC)),
		Estado:      model.EstadoAceptada,
	})

	_, err := s.svc.Create(context.Background(), CreateRequest{
		RenterID:    testRenterID,
		WarehouseID: 1,
		StartDate:   time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     datePtr(time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC)),
	})
	s.Require().NoError(err, "second unit of a two-unit pool should book")
}

func (s *ReservationServiceSuite) TestTotalPriceMultiMonth() {
	res, err := s.svc.Create(context.Background(), CreateRequest{
		RenterID:    testRenterID,
		WarehouseID: 1,
		StartDate:   time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     datePtr(time.Date(2025, time.August, 20, 0, 0, 0, 0, time.UTC)),
	})
	s.Require().NoError(err)
	s.Equal(uint64(3*150_000_00), res.TotalPriceCents, "three months at the monthly rate")
}

func (s *ReservationServiceSuite) TestTotalPriceLongTermNoOverflow() {
	// A ten-year booking at the ceiling of the monthly rate column must
	// not wrap; the total is carried in 64 bits end to end.
	s.warehouses.items[1].MonthlyPriceCents = 1<<32 - 1

	res, err := s.svc.Create(context.Background(), CreateRequest{
		RenterID:    testRenterID,
		WarehouseID: 1,
		StartDate:   time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     datePtr(time.Date(2035, time.June, 9, 0, 0, 0, 0, time.UTC)),
	})
	s.Require().NoError(err)
	want := uint64(1<<32-1) * 120
	s.Equal(want, res.TotalPriceCents)
}

func TestReservationServiceSuite(t *testing.T) {
	suite.Run(t, new(ReservationServiceSuite))
}
