package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
)

func TestDispatchRendersTemplate(t *testing.T) {
	client := &models.User{Email: "client@example.com", Role: models.UserRoleClient, FirstName: "Amina", Name: "Berrada"}
	userRepo := newFakeUserRepo(client)
	notifRepo := &fakeNotificationRepo{}
	mail := &recordingEmail{}
	svc := NewNotificationService(notifRepo, userRepo, mail)

	requestID := "req-1"
	err := svc.Dispatch(Event{
		Kind:      EventExpertTaken,
		UserID:    client.ID,
		Args:      []interface{}{"Karim Alaoui", "Renouvellement CIN"},
		RequestID: &requestID,
	})
	require.NoError(t, err)

	rows := notifRepo.forUser(client.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationRequestUpdate, rows[0].Type)
	assert.Equal(t, "Expert assigné", rows[0].Title)
	assert.Contains(t, rows[0].Content, "Karim Alaoui")
	assert.Contains(t, rows[0].Content, "Renouvellement CIN")
	require.NotNil(t, rows[0].ServiceRequestID)
	assert.Equal(t, requestID, *rows[0].ServiceRequestID)

	assert.Equal(t, []string{"client@example.com"}, mail.sent)
}

func TestDispatchUnknownKindFails(t *testing.T) {
	svc := NewNotificationService(&fakeNotificationRepo{}, newFakeUserRepo(), &recordingEmail{})

	err := svc.Dispatch(Event{Kind: "no_such_event", UserID: "u1"})
	assert.Error(t, err)
}

func TestEmailFailureDoesNotFailDispatch(t *testing.T) {
	user := &models.User{Email: "u@example.com", Role: models.UserRoleClient}
	userRepo := newFakeUserRepo(user)
	notifRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(notifRepo, userRepo, &recordingEmail{failing: true})

	err := svc.Dispatch(Event{
		Kind:   EventNewMessage,
		UserID: user.ID,
		Args:   []interface{}{"Karim Alaoui"},
	})
	require.NoError(t, err)
	assert.Len(t, notifRepo.forUser(user.ID), 1)
}

func TestMarkAsReadScopedToOwner(t *testing.T) {
	owner := &models.User{Email: "owner@example.com"}
	other := &models.User{Email: "other@example.com"}
	userRepo := newFakeUserRepo(owner, other)
	notifRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(notifRepo, userRepo, &recordingEmail{})

	require.NoError(t, svc.Notify(owner.ID, models.NotificationSystem, "Info", "contenu"))
	id := notifRepo.forUser(owner.ID)[0].ID

	assert.Error(t, svc.MarkAsRead(other.ID, id))
	assert.NoError(t, svc.MarkAsRead(owner.ID, id))

	count, err := svc.UnreadCount(owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListIncludesUnreadCounter(t *testing.T) {
	user := &models.User{Email: "u@example.com"}
	userRepo := newFakeUserRepo(user)
	notifRepo := &fakeNotificationRepo{}
	svc := NewNotificationService(notifRepo, userRepo, &recordingEmail{})

	require.NoError(t, svc.Notify(user.ID, models.NotificationSystem, "Un", "a"))
	require.NoError(t, svc.Notify(user.ID, models.NotificationSystem, "Deux", "b"))

	list, err := svc.GetUserNotifications(user.ID, repositories.NotificationCriteria{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, int64(2), list.UnreadCount)

	require.NoError(t, svc.MarkAllAsRead(user.ID))
	list, err = svc.GetUserNotifications(user.ID, repositories.NotificationCriteria{})
	require.NoError(t, err)
	assert.Zero(t, list.UnreadCount)
}
