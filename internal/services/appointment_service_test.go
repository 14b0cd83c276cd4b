package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

type appointmentWorld struct {
	client   *models.User
	expert   *models.User
	admin    *models.User
	service  *models.Service
	userRepo *fakeUserRepo
	apptRepo *fakeAppointmentRepo
	nRepo    *fakeNotificationRepo
	svc      AppointmentService
}

func newAppointmentWorld(t *testing.T) *appointmentWorld {
	t.Helper()

	w := &appointmentWorld{
		client:  &models.User{Email: "client@example.com", Role: models.UserRoleClient, FirstName: "Amina", Name: "Berrada", IsActive: true},
		expert:  &models.User{Email: "expert@example.com", Role: models.UserRoleExpert, FirstName: "Karim", Name: "Alaoui", IsActive: true},
		admin:   &models.User{Email: "admin@example.com", Role: models.UserRoleAdmin, FirstName: "Hassan", Name: "Tazi", IsActive: true},
		service: &models.Service{Category: "fiscal", Title: "Consultation fiscale", IsActive: true},
	}
	w.userRepo = newFakeUserRepo(w.client, w.expert, w.admin)
	w.apptRepo = newFakeAppointmentRepo()
	w.nRepo = &fakeNotificationRepo{}
	serviceRepo := newFakeServiceRepo(w.service)

	notification := NewNotificationService(w.nRepo, w.userRepo, &recordingEmail{})
	w.svc = NewAppointmentService(w.apptRepo, newFakeRequestRepo(), serviceRepo, w.userRepo, notification)
	return w
}

func futureSlot() string {
	return time.Now().Add(48 * time.Hour).Format("2006-01-02T15:04")
}

func (w *appointmentWorld) schedule(t *testing.T) *dto.AppointmentResponse {
	t.Helper()
	response, err := w.svc.Schedule(w.client.ID, dto.ScheduleAppointmentRequest{
		ExpertID:         w.expert.ID,
		ServiceID:        w.service.ID,
		DateTime:         futureSlot(),
		ConsultationType: string(models.ConsultationVideo),
	})
	require.NoError(t, err)
	return response
}

func TestScheduleDefaultsAndNotifies(t *testing.T) {
	w := newAppointmentWorld(t)

	response := w.schedule(t)
	assert.Equal(t, models.AppointmentStatusScheduled, response.Status)
	assert.Equal(t, 60, response.Duration)
	assert.Equal(t, models.ConsultationVideo, response.ConsultationType)

	expertNotifs := w.nRepo.forUser(w.expert.ID)
	require.Len(t, expertNotifs, 1)
	assert.Equal(t, "Nouveau rendez-vous", expertNotifs[0].Title)
	assert.Contains(t, expertNotifs[0].Content, "Amina Berrada")
}

func TestSchedulePastSlotRejected(t *testing.T) {
	w := newAppointmentWorld(t)

	_, err := w.svc.Schedule(w.client.ID, dto.ScheduleAppointmentRequest{
		ExpertID:         w.expert.ID,
		ServiceID:        w.service.ID,
		DateTime:         time.Now().Add(-time.Hour).Format("2006-01-02T15:04"),
		ConsultationType: string(models.ConsultationPhone),
	})
	assert.Error(t, err)
}

func TestCancelOnlyFromActiveStatuses(t *testing.T) {
	w := newAppointmentWorld(t)
	created := w.schedule(t)

	_, err := w.svc.Cancel(w.client.ID, created.ID, dto.CancelAppointmentRequest{Reason: "Empêchement"})
	require.NoError(t, err)

	_, err = w.svc.Cancel(w.client.ID, created.ID, dto.CancelAppointmentRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAppointmentNotCancellable, err)
}

func TestCancelNotifiesCounterpartWithOriginalSlot(t *testing.T) {
	w := newAppointmentWorld(t)
	created := w.schedule(t)
	originalDay := created.DateTime.Format("02/01/2006")

	_, err := w.svc.Cancel(w.client.ID, created.ID, dto.CancelAppointmentRequest{})
	require.NoError(t, err)

	var cancelled *models.Notification
	for _, n := range w.nRepo.forUser(w.expert.ID) {
		if n.Title == "Rendez-vous annulé" {
			cancelled = n
		}
	}
	require.NotNil(t, cancelled)
	assert.Contains(t, cancelled.Content, originalDay)
	assert.Contains(t, cancelled.Content, "le client")
}

func TestConfirmRequiresExpert(t *testing.T) {
	w := newAppointmentWorld(t)
	created := w.schedule(t)

	_, err := w.svc.Confirm(w.client.ID, created.ID)
	require.Error(t, err)

	response, err := w.svc.Confirm(w.expert.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, response.Status)

	// Confirming twice fails, the appointment already left scheduled.
	_, err = w.svc.Confirm(w.expert.ID, created.ID)
	assert.Error(t, err)
}

func TestConfirmedAppointmentStillCancellable(t *testing.T) {
	w := newAppointmentWorld(t)
	created := w.schedule(t)

	_, err := w.svc.Confirm(w.expert.ID, created.ID)
	require.NoError(t, err)

	response, err := w.svc.Cancel(w.expert.ID, created.ID, dto.CancelAppointmentRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, response.Status)
}

func TestRescheduleKeepsPartiesAndNotifies(t *testing.T) {
	w := newAppointmentWorld(t)
	created := w.schedule(t)

	newSlot := time.Now().Add(96 * time.Hour)
	response, err := w.svc.Reschedule(w.expert.ID, created.ID, dto.RescheduleAppointmentRequest{
		DateTime: newSlot.Format("2006-01-02T15:04"),
		Duration: 90,
	})
	require.NoError(t, err)
	assert.Equal(t, 90, response.Duration)

	var notif *models.Notification
	for _, n := range w.nRepo.forUser(w.client.ID) {
		if n.Title == "Rendez-vous reporté" {
			notif = n
		}
	}
	require.NotNil(t, notif)
	assert.Contains(t, notif.Content, newSlot.Format("02/01/2006"))
}

func TestStrangerCannotTouchAppointment(t *testing.T) {
	w := newAppointmentWorld(t)
	created := w.schedule(t)

	stranger := &models.User{Email: "stranger@example.com", Role: models.UserRoleClient, FirstName: "Omar", Name: "Fassi", IsActive: true}
	require.NoError(t, w.userRepo.Create(stranger))

	_, err := w.svc.Get(stranger.ID, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAppointmentPartyMismatch, err)

	_, err = w.svc.Cancel(stranger.ID, created.ID, dto.CancelAppointmentRequest{})
	assert.Error(t, err)
}

func TestCompleteRequiresExpertOrAdmin(t *testing.T) {
	w := newAppointmentWorld(t)
	created := w.schedule(t)

	_, err := w.svc.Complete(w.client.ID, created.ID)
	require.Error(t, err)

	response, err := w.svc.Complete(w.admin.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCompleted, response.Status)
}
