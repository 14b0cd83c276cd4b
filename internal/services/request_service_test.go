package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

type requestWorld struct {
	client   *models.User
	expert   *models.User
	expert2  *models.User
	admin    *models.User
	service  *models.Service
	userRepo *fakeUserRepo
	reqRepo  *fakeRequestRepo
	msgRepo  *fakeMessageRepo
	nRepo    *fakeNotificationRepo
	svc      RequestService
}

func newRequestWorld(t *testing.T) *requestWorld {
	t.Helper()

	w := &requestWorld{
		client:  &models.User{Email: "client@example.com", Role: models.UserRoleClient, FirstName: "Amina", Name: "Berrada", IsActive: true},
		expert:  &models.User{Email: "expert@example.com", Role: models.UserRoleExpert, FirstName: "Karim", Name: "Alaoui", IsActive: true},
		expert2: &models.User{Email: "expert2@example.com", Role: models.UserRoleExpert, FirstName: "Sara", Name: "Idrissi", IsActive: true},
		admin:   &models.User{Email: "admin@example.com", Role: models.UserRoleAdmin, FirstName: "Hassan", Name: "Tazi", IsActive: true},
		service: &models.Service{Category: "administrative", Title: "Renouvellement CIN", IsActive: true},
	}
	w.userRepo = newFakeUserRepo(w.client, w.expert, w.expert2, w.admin)
	w.reqRepo = newFakeRequestRepo()
	w.msgRepo = &fakeMessageRepo{}
	w.nRepo = &fakeNotificationRepo{}
	serviceRepo := newFakeServiceRepo(w.service)

	notification := NewNotificationService(w.nRepo, w.userRepo, &recordingEmail{})
	w.svc = NewRequestService(w.reqRepo, serviceRepo, w.userRepo, w.msgRepo, notification)
	return w
}

func (w *requestWorld) newRequest(t *testing.T) *dto.RequestResponse {
	t.Helper()
	response, err := w.svc.Create(w.client.ID, dto.CreateRequestRequest{
		ServiceID:   w.service.ID,
		Title:       "Renouvellement CIN",
		Description: "Ma carte expire le mois prochain.",
	})
	require.NoError(t, err)
	return response
}

func TestCreateRequestNotifiesAdmins(t *testing.T) {
	w := newRequestWorld(t)

	response := w.newRequest(t)
	assert.Equal(t, models.RequestStatusNew, response.Status)
	assert.Equal(t, models.PriorityMedium, response.Priority)

	adminNotifs := w.nRepo.forUser(w.admin.ID)
	require.Len(t, adminNotifs, 1)
	assert.Equal(t, "Nouvelle demande", adminNotifs[0].Title)
	assert.Contains(t, adminNotifs[0].Content, "Amina Berrada")
}

func TestTakeRequestAssignsAndIntroduces(t *testing.T) {
	w := newRequestWorld(t)
	created := w.newRequest(t)

	response, err := w.svc.AssignExpert(w.expert.ID, created.ID, dto.AssignExpertRequest{ExpertID: w.expert.ID})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusInProgress, response.Status)

	clientNotifs := w.nRepo.forUser(w.client.ID)
	require.Len(t, clientNotifs, 1)
	assert.Equal(t, "Expert assigné", clientNotifs[0].Title)
	assert.Contains(t, clientNotifs[0].Content, "Karim Alaoui")

	// The expert's introduction opens the request conversation.
	messages, err := w.msgRepo.FindByRequest(created.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, w.expert.ID, messages[0].SenderID)
	assert.Equal(t, w.client.ID, messages[0].RecipientID)
	assert.Contains(t, messages[0].Content, "Karim Alaoui")
}

func TestSecondTakeLosesTheRace(t *testing.T) {
	w := newRequestWorld(t)
	created := w.newRequest(t)

	_, err := w.svc.AssignExpert(w.expert.ID, created.ID, dto.AssignExpertRequest{ExpertID: w.expert.ID})
	require.NoError(t, err)

	_, err = w.svc.AssignExpert(w.expert2.ID, created.ID, dto.AssignExpertRequest{ExpertID: w.expert2.ID})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrRequestAlreadyAssigned) || err == apperrors.ErrRequestAlreadyAssigned)

	// The winner keeps the slot.
	current, findErr := w.reqRepo.FindByID(created.ID)
	require.NoError(t, findErr)
	require.NotNil(t, current.ExpertID)
	assert.Equal(t, w.expert.ID, *current.ExpertID)
}

func TestExpertCannotAssignSomeoneElse(t *testing.T) {
	w := newRequestWorld(t)
	created := w.newRequest(t)

	_, err := w.svc.AssignExpert(w.expert.ID, created.ID, dto.AssignExpertRequest{ExpertID: w.expert2.ID})
	assert.Error(t, err)
}

func TestAdminAssignmentNotifiesBothParties(t *testing.T) {
	w := newRequestWorld(t)
	created := w.newRequest(t)

	_, err := w.svc.AssignExpert(w.admin.ID, created.ID, dto.AssignExpertRequest{
		ExpertID: w.expert.ID,
		Notes:    "Dossier urgent, merci de traiter en priorité.",
	})
	require.NoError(t, err)

	expertNotifs := w.nRepo.forUser(w.expert.ID)
	require.Len(t, expertNotifs, 1)
	assert.Equal(t, "Nouvelle assignation", expertNotifs[0].Title)

	clientNotifs := w.nRepo.forUser(w.client.ID)
	require.Len(t, clientNotifs, 1)
	assert.Equal(t, "Expert assigné", clientNotifs[0].Title)

	// The admin's notes travel to the expert as a request message.
	messages, err := w.msgRepo.FindByRequest(created.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, w.admin.ID, messages[0].SenderID)
	assert.Equal(t, w.expert.ID, messages[0].RecipientID)
}

func TestAdminCanReassign(t *testing.T) {
	w := newRequestWorld(t)
	created := w.newRequest(t)

	_, err := w.svc.AssignExpert(w.expert.ID, created.ID, dto.AssignExpertRequest{ExpertID: w.expert.ID})
	require.NoError(t, err)

	_, err = w.svc.AssignExpert(w.admin.ID, created.ID, dto.AssignExpertRequest{ExpertID: w.expert2.ID})
	require.NoError(t, err)

	current, err := w.reqRepo.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, w.expert2.ID, *current.ExpertID)
}

func TestAssignedExpertChangesStatus(t *testing.T) {
	w := newRequestWorld(t)
	created := w.newRequest(t)
	_, err := w.svc.AssignExpert(w.expert.ID, created.ID, dto.AssignExpertRequest{ExpertID: w.expert.ID})
	require.NoError(t, err)

	response, err := w.svc.ChangeStatus(w.expert.ID, created.ID, dto.ChangeStatusRequest{
		Status:  string(models.RequestStatusPendingInfo),
		Comment: "Merci de joindre une copie de votre passeport.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPendingInfo, response.Status)

	// Status notification plus the comment relayed as a message.
	clientNotifs := w.nRepo.forUser(w.client.ID)
	var statusNotif *models.Notification
	for _, n := range clientNotifs {
		if n.Title == "Statut de la demande mis à jour" {
			statusNotif = n
		}
	}
	require.NotNil(t, statusNotif)
	assert.Contains(t, statusNotif.Content, "En attente d'informations")

	messages, err := w.msgRepo.FindByRequest(created.ID)
	require.NoError(t, err)
	var comment *models.Message
	for i := range messages {
		if messages[i].RecipientID == w.client.ID && messages[i].SenderID == w.expert.ID {
			comment = &messages[i]
		}
	}
	require.NotNil(t, comment)
	assert.Contains(t, comment.Content, "Statut mis à jour : Merci de joindre")
}

func TestUnassignedExpertCannotChangeStatus(t *testing.T) {
	w := newRequestWorld(t)
	created := w.newRequest(t)
	_, err := w.svc.AssignExpert(w.expert.ID, created.ID, dto.AssignExpertRequest{ExpertID: w.expert.ID})
	require.NoError(t, err)

	_, err = w.svc.ChangeStatus(w.expert2.ID, created.ID, dto.ChangeStatusRequest{
		Status: string(models.RequestStatusCompleted),
	})
	assert.Error(t, err)
}

func TestExpertCannotReject(t *testing.T) {
	w := newRequestWorld(t)
	created := w.newRequest(t)
	_, err := w.svc.AssignExpert(w.expert.ID, created.ID, dto.AssignExpertRequest{ExpertID: w.expert.ID})
	require.NoError(t, err)

	_, err = w.svc.ChangeStatus(w.expert.ID, created.ID, dto.ChangeStatusRequest{
		Status: string(models.RequestStatusRejected),
	})
	assert.Error(t, err)
}

func TestStatusChangeConflictSurfaces(t *testing.T) {
	w := newRequestWorld(t)
	created := w.newRequest(t)
	_, err := w.svc.AssignExpert(w.expert.ID, created.ID, dto.AssignExpertRequest{ExpertID: w.expert.ID})
	require.NoError(t, err)

	// Another actor flips the row between the read and the update.
	conflicted := &casConflictRequestRepo{fakeRequestRepo: w.reqRepo}
	notification := NewNotificationService(w.nRepo, w.userRepo, &recordingEmail{})
	svc := NewRequestService(conflicted, newFakeServiceRepo(w.service), w.userRepo, w.msgRepo, notification)

	_, err = svc.ChangeStatus(w.expert.ID, created.ID, dto.ChangeStatusRequest{
		Status: string(models.RequestStatusCompleted),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTransitionConflict, err)
}

func TestTerminalRequestRefusesTransitions(t *testing.T) {
	w := newRequestWorld(t)
	created := w.newRequest(t)

	_, err := w.svc.Cancel(w.client.ID, created.ID, dto.CancelRequestRequest{Reason: "Plus besoin."})
	require.NoError(t, err)

	_, err = w.svc.Cancel(w.client.ID, created.ID, dto.CancelRequestRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrRequestTerminal, err)

	_, err = w.svc.ChangeStatus(w.admin.ID, created.ID, dto.ChangeStatusRequest{
		Status: string(models.RequestStatusInProgress),
	})
	assert.Equal(t, apperrors.ErrRequestTerminal, err)
}

func TestCancelNotifiesCounterpartWithReason(t *testing.T) {
	w := newRequestWorld(t)
	created := w.newRequest(t)
	_, err := w.svc.AssignExpert(w.expert.ID, created.ID, dto.AssignExpertRequest{ExpertID: w.expert.ID})
	require.NoError(t, err)

	_, err = w.svc.Cancel(w.client.ID, created.ID, dto.CancelRequestRequest{Reason: "Problème résolu autrement."})
	require.NoError(t, err)

	expertNotifs := w.nRepo.forUser(w.expert.ID)
	var cancelled *models.Notification
	for _, n := range expertNotifs {
		if n.Title == "Demande annulée" {
			cancelled = n
		}
	}
	require.NotNil(t, cancelled)
	assert.Contains(t, cancelled.Content, "Problème résolu autrement.")
	assert.Contains(t, cancelled.Content, "Amina Berrada")
}

func TestClientListSeesOnlyOwnRequests(t *testing.T) {
	w := newRequestWorld(t)
	w.newRequest(t)

	otherClient := &models.User{Email: "other@example.com", Role: models.UserRoleClient, FirstName: "Omar", Name: "Fassi", IsActive: true}
	require.NoError(t, w.userRepo.Create(otherClient))

	list, err := w.svc.List(otherClient.ID, dto.RequestCriteria{})
	require.NoError(t, err)
	assert.Empty(t, list.Requests)

	list, err = w.svc.List(w.client.ID, dto.RequestCriteria{})
	require.NoError(t, err)
	assert.Len(t, list.Requests, 1)
}

// casConflictRequestRepo fails every status CAS, simulating a row
// changed by a concurrent actor.
type casConflictRequestRepo struct {
	*fakeRequestRepo
}

func (r *casConflictRequestRepo) UpdateStatusCAS(id string, from, to models.RequestStatus) (bool, error) {
	return false, nil
}
