package services

import (
	"fmt"
	"time"

	"servicesbladi_backend/internal/logger"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

const appointmentTimeLayout = "2006-01-02T15:04"

// cancellableStatuses are the only statuses an appointment can be
// cancelled or rescheduled from.
var cancellableStatuses = []models.AppointmentStatus{
	models.AppointmentStatusScheduled,
	models.AppointmentStatusConfirmed,
}

type AppointmentService interface {
	// Schedule books a rendez-vous. A client books with an expert, an
	// expert books with a client; when the appointment is tied to a
	// request, the counterpart defaults to the request's other party.
	Schedule(actorID string, req dto.ScheduleAppointmentRequest) (*dto.AppointmentResponse, error)

	Get(actorID, appointmentID string) (*dto.AppointmentResponse, error)
	List(actorID string, status models.AppointmentStatus) ([]dto.AppointmentResponse, error)
	ListByRequest(actorID, requestID string) ([]dto.AppointmentResponse, error)

	Confirm(actorID, appointmentID string) (*dto.AppointmentResponse, error)
	Reschedule(actorID, appointmentID string, req dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error)

	// Cancel moves a scheduled or confirmed appointment to cancelled and
	// notifies the counterpart with the original slot and the actor's
	// role. Terminal appointments cannot be cancelled.
	Cancel(actorID, appointmentID string, req dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error)

	Complete(actorID, appointmentID string) (*dto.AppointmentResponse, error)
	MarkMissed(actorID, appointmentID string) (*dto.AppointmentResponse, error)
}

type appointmentService struct {
	appointmentRepo repositories.AppointmentRepository
	requestRepo     repositories.RequestRepository
	serviceRepo     repositories.ServiceRepository
	userRepo        repositories.UserRepository
	notification    NotificationService
}

func NewAppointmentService(
	appointmentRepo repositories.AppointmentRepository,
	requestRepo repositories.RequestRepository,
	serviceRepo repositories.ServiceRepository,
	userRepo repositories.UserRepository,
	notification NotificationService,
) AppointmentService {
	return &appointmentService{
		appointmentRepo: appointmentRepo,
		requestRepo:     requestRepo,
		serviceRepo:     serviceRepo,
		userRepo:        userRepo,
		notification:    notification,
	}
}

func (s *appointmentService) Schedule(actorID string, req dto.ScheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	dateTime, err := parseAppointmentTime(req.DateTime)
	if err != nil {
		return nil, err
	}
	if !dateTime.After(time.Now()) {
		return nil, apperrors.NewBadRequestError("Appointment must be scheduled in the future")
	}

	service, err := s.serviceRepo.FindByID(req.ServiceID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if !service.IsActive {
		return nil, apperrors.ErrInvalidOperation("appointment", "Service is no longer offered")
	}

	clientID, expertID, requestID, err := s.resolveParties(actor, req)
	if err != nil {
		return nil, err
	}

	duration := req.Duration
	if duration == 0 {
		duration = 60
	}

	appointment := &models.Appointment{
		ClientID:         clientID,
		ExpertID:         expertID,
		ServiceRequestID: requestID,
		ServiceID:        req.ServiceID,
		DateTime:         dateTime,
		Duration:         duration,
		ConsultationType: models.ConsultationType(req.ConsultationType),
		Status:           models.AppointmentStatusScheduled,
		Notes:            req.Notes,
	}
	if err := s.appointmentRepo.Create(appointment); err != nil {
		return nil, apperrors.InternalError(err)
	}

	counterpart := clientID
	if actorID == clientID {
		counterpart = expertID
	}
	if err := s.notification.Dispatch(Event{
		Kind:          EventAppointmentScheduled,
		UserID:        counterpart,
		Args:          []interface{}{actor.FullName(), formatSlot(dateTime)},
		RequestID:     requestID,
		AppointmentID: &appointment.ID,
	}); err != nil {
		logger.Warn("appointment notification failed", "appointment_id", appointment.ID, "error", err)
	}

	return s.respond(appointment.ID)
}

// resolveParties determines the (client, expert) pair of a new
// appointment from the actor's role, the explicit expert_id and the
// optional request binding.
func (s *appointmentService) resolveParties(actor *models.User, req dto.ScheduleAppointmentRequest) (string, string, *string, error) {
	var request *models.ServiceRequest
	var requestID *string

	if req.ServiceRequestID != "" {
		r, err := s.requestRepo.FindByID(req.ServiceRequestID)
		if err != nil {
			return "", "", nil, apperrors.ErrNotFound(err)
		}
		if r.Status.IsTerminal() {
			return "", "", nil, apperrors.ErrRequestTerminal
		}
		request = r
		id := req.ServiceRequestID
		requestID = &id
	}

	switch actor.Role {
	case models.UserRoleClient:
		expertID := req.ExpertID
		if request != nil {
			if request.ClientID != actor.ID {
				return "", "", nil, apperrors.ErrAppointmentPartyMismatch
			}
			if request.ExpertID == nil {
				return "", "", nil, apperrors.ErrInvalidOperation("appointment", "Request has no assigned expert yet")
			}
			expertID = *request.ExpertID
		}
		if expertID == "" {
			return "", "", nil, apperrors.NewBadRequestError("expert_id is required")
		}
		expert, err := s.userRepo.FindByID(expertID)
		if err != nil {
			return "", "", nil, apperrors.ErrNotFound(err)
		}
		if expert.Role != models.UserRoleExpert || !expert.IsActive {
			return "", "", nil, apperrors.ErrInvalidOperation("appointment", "Selected expert is not available")
		}
		return actor.ID, expertID, requestID, nil

	case models.UserRoleExpert:
		if request == nil {
			return "", "", nil, apperrors.NewBadRequestError("service_request_id is required for expert bookings")
		}
		if request.ExpertID == nil || *request.ExpertID != actor.ID {
			return "", "", nil, apperrors.ErrAppointmentPartyMismatch
		}
		return request.ClientID, actor.ID, requestID, nil

	case models.UserRoleAdmin:
		if request == nil || request.ExpertID == nil {
			return "", "", nil, apperrors.NewBadRequestError("Admin bookings require a request with an assigned expert")
		}
		return request.ClientID, *request.ExpertID, requestID, nil
	}

	return "", "", nil, apperrors.ErrPermissionDenied("appointment", "Unknown role")
}

func (s *appointmentService) Get(actorID, appointmentID string) (*dto.AppointmentResponse, error) {
	appointment, err := s.loadAuthorized(actorID, appointmentID)
	if err != nil {
		return nil, err
	}
	response := buildAppointmentResponse(appointment)
	return &response, nil
}

func (s *appointmentService) List(actorID string, status models.AppointmentStatus) ([]dto.AppointmentResponse, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	var appointments []models.Appointment
	switch actor.Role {
	case models.UserRoleClient:
		appointments, err = s.appointmentRepo.FindByClient(actorID, status)
	case models.UserRoleExpert:
		appointments, err = s.appointmentRepo.FindByExpert(actorID, status)
	default:
		return nil, apperrors.ErrInvalidOperation("appointment", "Admins list appointments per request")
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		responses = append(responses, buildAppointmentResponse(&appointments[i]))
	}
	return responses, nil
}

func (s *appointmentService) ListByRequest(actorID, requestID string) ([]dto.AppointmentResponse, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if !isRequestParticipant(request, actor) {
		return nil, apperrors.ErrAppointmentPartyMismatch
	}

	appointments, err := s.appointmentRepo.FindByRequest(requestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	responses := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		responses = append(responses, buildAppointmentResponse(&appointments[i]))
	}
	return responses, nil
}

func (s *appointmentService) Confirm(actorID, appointmentID string) (*dto.AppointmentResponse, error) {
	appointment, err := s.loadAuthorized(actorID, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireExpertOrAdmin(actorID, appointment); err != nil {
		return nil, err
	}

	changed, err := s.appointmentRepo.UpdateStatusCAS(appointmentID,
		[]models.AppointmentStatus{models.AppointmentStatusScheduled},
		models.AppointmentStatusConfirmed)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !changed {
		return nil, apperrors.ErrInvalidOperation("appointment", "Only a scheduled appointment can be confirmed")
	}
	return s.respond(appointmentID)
}

func (s *appointmentService) Reschedule(actorID, appointmentID string, req dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := s.loadAuthorized(actorID, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Status.IsTerminal() {
		return nil, apperrors.ErrInvalidOperation("appointment", "Appointment can no longer be rescheduled")
	}

	dateTime, err := parseAppointmentTime(req.DateTime)
	if err != nil {
		return nil, err
	}
	if !dateTime.After(time.Now()) {
		return nil, apperrors.NewBadRequestError("Appointment must be rescheduled to a future time")
	}

	duration := req.Duration
	if duration == 0 {
		duration = appointment.Duration
	}
	if err := s.appointmentRepo.Reschedule(appointmentID, dateTime, duration); err != nil {
		return nil, apperrors.InternalError(err)
	}

	counterpart := s.counterpartOf(actorID, appointment)
	if counterpart != "" {
		if err := s.notification.Dispatch(Event{
			Kind:          EventAppointmentRescheduled,
			UserID:        counterpart,
			Args:          []interface{}{formatSlot(dateTime)},
			AppointmentID: &appointment.ID,
		}); err != nil {
			logger.Warn("reschedule notification failed", "appointment_id", appointmentID, "error", err)
		}
	}
	return s.respond(appointmentID)
}

func (s *appointmentService) Cancel(actorID, appointmentID string, req dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	appointment, err := s.loadAuthorizedUser(actor, appointmentID)
	if err != nil {
		return nil, err
	}

	originalSlot := formatSlot(appointment.DateTime)

	changed, err := s.appointmentRepo.UpdateStatusCAS(appointmentID, cancellableStatuses, models.AppointmentStatusCancelled)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !changed {
		return nil, apperrors.ErrAppointmentNotCancellable
	}

	counterpart := s.counterpartOf(actorID, appointment)
	if counterpart != "" {
		if err := s.notification.Dispatch(Event{
			Kind:          EventAppointmentCancelled,
			UserID:        counterpart,
			Args:          []interface{}{originalSlot, roleLabel(actor.Role)},
			AppointmentID: &appointment.ID,
		}); err != nil {
			logger.Warn("cancellation notification failed", "appointment_id", appointmentID, "error", err)
		}
	}

	if req.Reason != "" {
		if err := s.appointmentRepo.UpdateNotes(appointmentID, "Annulé : "+req.Reason); err != nil {
			logger.Warn("cancellation note failed", "appointment_id", appointmentID, "error", err)
		}
	}

	return s.respond(appointmentID)
}

func (s *appointmentService) Complete(actorID, appointmentID string) (*dto.AppointmentResponse, error) {
	return s.finish(actorID, appointmentID, models.AppointmentStatusCompleted)
}

func (s *appointmentService) MarkMissed(actorID, appointmentID string) (*dto.AppointmentResponse, error) {
	return s.finish(actorID, appointmentID, models.AppointmentStatusMissed)
}

func (s *appointmentService) finish(actorID, appointmentID string, target models.AppointmentStatus) (*dto.AppointmentResponse, error) {
	appointment, err := s.loadAuthorized(actorID, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireExpertOrAdmin(actorID, appointment); err != nil {
		return nil, err
	}

	changed, err := s.appointmentRepo.UpdateStatusCAS(appointmentID, cancellableStatuses, target)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !changed {
		return nil, apperrors.ErrInvalidOperation("appointment", "Appointment already reached a final status")
	}
	return s.respond(appointmentID)
}

func (s *appointmentService) loadAuthorized(actorID, appointmentID string) (*models.Appointment, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	return s.loadAuthorizedUser(actor, appointmentID)
}

func (s *appointmentService) loadAuthorizedUser(actor *models.User, appointmentID string) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.FindByID(appointmentID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if actor.Role != models.UserRoleAdmin &&
		appointment.ClientID != actor.ID && appointment.ExpertID != actor.ID {
		return nil, apperrors.ErrAppointmentPartyMismatch
	}
	return appointment, nil
}

func (s *appointmentService) requireExpertOrAdmin(actorID string, appointment *models.Appointment) error {
	if appointment.ExpertID == actorID {
		return nil
	}
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	if actor.Role == models.UserRoleAdmin {
		return nil
	}
	return apperrors.ErrPermissionDenied("appointment", "Only the expert or an administrator can perform this action")
}

// counterpartOf picks the other party to notify. An admin acting on an
// appointment notifies the client.
func (s *appointmentService) counterpartOf(actorID string, appointment *models.Appointment) string {
	switch actorID {
	case appointment.ClientID:
		return appointment.ExpertID
	case appointment.ExpertID:
		return appointment.ClientID
	default:
		return appointment.ClientID
	}
}

func (s *appointmentService) respond(appointmentID string) (*dto.AppointmentResponse, error) {
	appointment, err := s.appointmentRepo.FindByID(appointmentID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	response := buildAppointmentResponse(appointment)
	return &response, nil
}

func parseAppointmentTime(value string) (time.Time, error) {
	t, err := time.Parse(appointmentTimeLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewBadRequestError("Date must use the YYYY-MM-DDTHH:MM format")
	}
	return t, nil
}

func formatSlot(t time.Time) string {
	return fmt.Sprintf("%s à %s", t.Format("02/01/2006"), t.Format("15h04"))
}

func roleLabel(role models.UserRole) string {
	switch role {
	case models.UserRoleClient:
		return "le client"
	case models.UserRoleExpert:
		return "l'expert"
	case models.UserRoleAdmin:
		return "l'administrateur"
	}
	return string(role)
}

func buildAppointmentResponse(a *models.Appointment) dto.AppointmentResponse {
	response := dto.AppointmentResponse{
		ID:               a.ID,
		DateTime:         a.DateTime,
		Duration:         a.Duration,
		ConsultationType: a.ConsultationType,
		Status:           a.Status,
		Notes:            a.Notes,
		ServiceRequestID: a.ServiceRequestID,
		CreatedAt:        a.CreatedAt,
	}
	if a.Client != nil {
		response.Client = &dto.ActorRef{ID: a.Client.ID, Name: a.Client.FullName(), Role: a.Client.Role}
	}
	if a.Expert != nil {
		response.Expert = &dto.ActorRef{ID: a.Expert.ID, Name: a.Expert.FullName(), Role: a.Expert.Role}
	}
	if a.Service != nil {
		response.Service = &dto.ServiceRef{ID: a.Service.ID, Category: a.Service.Category, Title: a.Service.Title}
	}
	return response
}
