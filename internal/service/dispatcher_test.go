package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
)

func TestNotifyDecisionRequiresDecidedEstado(t *testing.T) {
	d := NewDispatcher(&fakeNotificationStore{}, nil)
	res := &model.Reservation{ID: 1, RenterID: testRenterID, Estado: model.EstadoPendiente}
	require.Error(t, d.NotifyDecision(context.Background(), res))
}

func TestNotifyMirrorsEventToBroker(t *testing.T) {
	notes := &fakeNotificationStore{}
	pub := &fakePublisher{}
	d := NewDispatcher(notes, pub)

	resID := uint64(42)
	err := d.Notify(context.Background(), testOwnerID, model.NotifNuevaSolicitud, "t", "m", &resID)
	require.NoError(t, err)
	require.Len(t, pub.events, 1)

	ev := pub.events[0]
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, model.NotifNuevaSolicitud, ev.Tipo)
	assert.Equal(t, resID, ev.ReservationID)
	assert.Equal(t, testOwnerID, ev.RecipientID)

	_, err = time.Parse(time.RFC3339, ev.OccurredAt)
	assert.NoError(t, err, "OccurredAt must be RFC3339")
}

func TestNotifyWithoutBroker(t *testing.T) {
	notes := &fakeNotificationStore{}
	d := NewDispatcher(notes, nil)
	err := d.Notify(context.Background(), testOwnerID, model.NotifRecordatorio, "t", "m", nil)
	require.NoError(t, err, "without a broker the row is still stored")
	assert.Len(t, notes.rows, 1)
}
