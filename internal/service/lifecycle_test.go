package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
	"github.com/MiniBodegas/Plataforma-sub000/internal/repository"
)

type LifecycleSuite struct {
	suite.Suite
	lc           *Lifecycle
	reservations *fakeReservationStore
	notes        *fakeNotificationStore
}

func (s *LifecycleSuite) SetupTest() {
	s.reservations = newFakeReservationStore()
	s.reservations.providers[1] = testOwnerID
	s.notes = &fakeNotificationStore{}
	s.lc = NewLifecycle(s.reservations, NewDispatcher(s.notes, nil))
}

func (s *LifecycleSuite) pending() *model.Reservation {
	return s.reservations.seed(model.Reservation{
		RenterID:    testRenterID,
		WarehouseID: 1,
		StartDate:   time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     datePtr(time.Date(2025, time.July, 9, 0, 0, 0, 0, time.UTC)),
		Estado:      model.EstadoPendiente,
	})
}

func (s *LifecycleSuite) TestAccept() {
	res := s.pending()

	got, err := s.lc.Accept(context.Background(), testOwnerID, res.ID)
	s.Require().NoError(err)
	s.Equal(model.EstadoAceptada, got.Estado)
	s.NotNil(got.DecidedAt)

	renterNotes := s.notes.byRecipient(testRenterID)
	s.Require().Len(renterNotes, 1)
	s.Equal(model.NotifReservaAceptada, renterNotes[0].Tipo)
}

func (s *LifecycleSuite) TestAcceptForbiddenForNonOwner() {
	res := s.pending()

	_, err := s.lc.Accept(context.Background(), testRenterID, res.ID)
	s.Require().ErrorIs(err, repository.ErrForbidden)

	after, _ := s.reservations.GetByID(context.Background(), res.ID)
	s.Equal(model.EstadoPendiente, after.Estado, "forbidden actor must not change estado")
	s.Empty(s.notes.rows, "forbidden accept must not notify")
}

func (s *LifecycleSuite) TestAcceptAfterCancel() {
	res := s.pending()
	_, err := s.lc.Cancel(context.Background(), testRenterID, res.ID)
	s.Require().NoError(err)

	_, err = s.lc.Accept(context.Background(), testOwnerID, res.ID)
	s.Require().ErrorIs(err, repository.ErrInvalidTransition)

	after, _ := s.reservations.GetByID(context.Background(), res.ID)
	s.Equal(model.EstadoCancelada, after.Estado, "terminal estado must not mutate")
}

func (s *LifecycleSuite) TestAcceptAfterReject() {
	res := s.pending()
	_, err := s.lc.Reject(context.Background(), testOwnerID, res.ID, "sin espacio")
	s.Require().NoError(err)

	_, err = s.lc.Accept(context.Background(), testOwnerID, res.ID)
	s.Require().ErrorIs(err, repository.ErrInvalidTransition)

	after, _ := s.reservations.GetByID(context.Background(), res.ID)
	s.Equal(model.EstadoRechazada, after.Estado, "a rejected reservation must stay rejected")
	s.Require().NotNil(after.MotivoRechazo)
	s.Equal("sin espacio", *after.MotivoRechazo)
}

func (s *LifecycleSuite) TestAcceptMissingReservation() {
	_, err := s.lc.Accept(context.Background(), testOwnerID, 999)
	s.Require().ErrorIs(err, sql.ErrNoRows)
}

func (s *LifecycleSuite) TestRejectWithMotivo() {
	res := s.pending()

	got, err := s.lc.Reject(context.Background(), testOwnerID, res.ID, "  la bodega entra en mantenimiento  ")
	s.Require().NoError(err)
	s.Equal(model.EstadoRechazada, got.Estado)
	s.Require().NotNil(got.MotivoRechazo)
	s.Equal("la bodega entra en mantenimiento", *got.MotivoRechazo)

	renterNotes := s.notes.byRecipient(testRenterID)
	s.Require().Len(renterNotes, 1)
	s.Equal(model.NotifReservaRechazada, renterNotes[0].Tipo)
	s.Contains(renterNotes[0].Message, "la bodega entra en mantenimiento")
}

func (s *LifecycleSuite) TestRejectWithoutMotivo() {
	res := s.pending()

	got, err := s.lc.Reject(context.Background(), testOwnerID, res.ID, "   ")
	s.Require().NoError(err)
	s.Nil(got.MotivoRechazo, "blank motivo should be stored as null")
}

func (s *LifecycleSuite) TestCancel() {
	res := s.pending()

	got, err := s.lc.Cancel(context.Background(), testRenterID, res.ID)
	s.Require().NoError(err)
	s.Equal(model.EstadoCancelada, got.Estado)

	providerNotes := s.notes.byRecipient(testOwnerID)
	s.Require().Len(providerNotes, 1)
	s.Equal(model.NotifReservaCancelada, providerNotes[0].Tipo)
}

func (s *LifecycleSuite) TestCancelForbiddenForProvider() {
	res := s.pending()

	_, err := s.lc.Cancel(context.Background(), testOwnerID, res.ID)
	s.Require().ErrorIs(err, repository.ErrForbidden)
}

func (s *LifecycleSuite) TestTransitionSurvivesNotificationFailure() {
	res := s.pending()
	s.notes.insertErr = errors.New("notification store down")

	got, err := s.lc.Accept(context.Background(), testOwnerID, res.ID)
	s.Require().NoError(err, "the transition must stand when notifying fails")
	s.Equal(model.EstadoAceptada, got.Estado)

	after, _ := s.reservations.GetByID(context.Background(), res.ID)
	s.Equal(model.EstadoAceptada, after.Estado)
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}
