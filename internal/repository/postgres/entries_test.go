package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkos/parklot/internal/domain/models"
)

func TestCreateEntry_SerialFromIdentityColumn(t *testing.T) {
	store, mock := newMockStore(t)
	entry := &models.ParkingEntry{
		ID:            uuid.New(),
		TransportName: "KSRTC",
		VehicleType:   "4 Wheeler",
		VehicleNumber: "KA01AB1234",
		DriverName:    "N/A",
		DriverPhone:   "N/A",
		EntryTime:     time.Now(),
		Status:        models.EntryStatusParked,
		PaymentStatus: models.PaymentStatusUnpaid,
		CreatedBy:     "System",
		LastModified:  time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO parking_entries").
		WillReturnRows(sqlmock.NewRows([]string{"serial_number"}).AddRow(42))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.CreateEntry(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, 42, entry.Serial)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEntry_RollsBackWhenAuditFails(t *testing.T) {
	store, mock := newMockStore(t)
	entry := &models.ParkingEntry{
		ID:            uuid.New(),
		TransportName: "KSRTC",
		VehicleType:   "2 Wheeler",
		VehicleNumber: "KA02CD5678",
		EntryTime:     time.Now(),
		Status:        models.EntryStatusParked,
		PaymentStatus: models.PaymentStatusUnpaid,
		LastModified:  time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO parking_entries").
		WillReturnRows(sqlmock.NewRows([]string{"serial_number"}).AddRow(7))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.CreateEntry(context.Background(), entry)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
