package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAssistantDisabledWithoutModel(t *testing.T) {
	svc := NewAssistantService(nil, time.Second)

	_, err := svc.Chat(context.Background(), "hello", nil)
	assert.True(t, util.IsKind(err, util.KindUnavailable))

	_, err = svc.ImproveText(context.Background(), "pt c/o headache")
	assert.True(t, util.IsKind(err, util.KindUnavailable))
}

func TestAssistantChat(t *testing.T) {
	model := &mockChatModel{}
	history := []ChatTurn{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}
	model.On("Chat", mock.Anything, chatSystemPrompt, history, "How much water should I drink?").
		Return("About two litres a day.", nil).Once()
	svc := NewAssistantService(model, time.Second)

	reply, err := svc.Chat(context.Background(), "  How much water should I drink? ", history)
	require.NoError(t, err)
	assert.Equal(t, "About two litres a day.", reply)

	_, err = svc.Chat(context.Background(), " ", nil)
	assert.True(t, util.IsKind(err, util.KindValidation))
	model.AssertExpectations(t)
}

func TestAssistantImproveText(t *testing.T) {
	model := &mockChatModel{}
	model.On("Chat", mock.Anything, improveSystemPrompt, []ChatTurn(nil), "pt c/o headache").
		Return("", nil).Once()
	model.On("Chat", mock.Anything, improveSystemPrompt, []ChatTurn(nil), "pt has fever").
		Return("", errors.New("quota exceeded")).Once()
	svc := NewAssistantService(model, 0)

	_, err := svc.ImproveText(context.Background(), "pt c/o headache")
	assert.True(t, util.IsKind(err, util.KindInternal))

	_, err = svc.ImproveText(context.Background(), "pt has fever")
	assert.True(t, util.IsKind(err, util.KindInternal))
	assert.Equal(t, util.INTERNAL_SERVER_ERROR, util.PublicMessage(err))
	model.AssertExpectations(t)
}

func TestStatsAdminOnly(t *testing.T) {
	f := newFixture()
	appointments := newAppointmentService(f)
	ctx := context.Background()
	_, err := appointments.Create(ctx, f.patient, booking(f, "09:00"))
	require.NoError(t, err)
	_, err = NewHospitalService(f.store).Create(ctx, f.admin, models.HospitalInput{Name: "City General"})
	require.NoError(t, err)

	svc := NewStatsService(f.store)
	_, err = svc.Get(ctx, f.doctor)
	assert.True(t, util.IsKind(err, util.KindForbidden))

	stats, err := svc.Get(ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Users["DOCTOR"]+stats.Users["ADMIN"])
	assert.Equal(t, int64(2), stats.Users["PATIENT"])
	assert.Equal(t, int64(1), stats.Appointments["Pending"])
	assert.Equal(t, int64(0), stats.Appointments["Cancelled"])
	assert.Equal(t, int64(0), stats.HealthRecords["Active"])
	assert.Equal(t, int64(1), stats.Hospitals)
}

func TestNewWiresLocalLockerByDefault(t *testing.T) {
	f := newFixture()
	all := New(f.store.stores(), Options{})
	_, ok := all.Appointments.locker.(*LocalLocker)
	assert.True(t, ok)

	_, err := all.Assistant.Chat(context.Background(), "hi", nil)
	assert.True(t, util.IsKind(err, util.KindUnavailable))
}
