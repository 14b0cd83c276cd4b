package services

import (
	"fmt"
	"time"

	"servicesbladi_backend/internal/auth"
	"servicesbladi_backend/internal/logger"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/pkg/apperrors"
)

const desiredDateLayout = "2006-01-02"

type RequestService interface {
	Create(actorID string, req dto.CreateRequestRequest) (*dto.RequestResponse, error)
	Get(actorID, requestID string) (*dto.RequestResponse, error)

	// List returns the requests visible to the actor: own requests for
	// clients, assigned ones for experts, everything for admins.
	List(actorID string, criteria dto.RequestCriteria) (*dto.RequestListResponse, error)

	// ListUnassigned is the expert work queue: new requests with no
	// expert slot filled yet.
	ListUnassigned(actorID string, criteria dto.RequestCriteria) (*dto.RequestListResponse, error)

	Update(actorID, requestID string, req dto.UpdateRequestRequest) (*dto.RequestResponse, error)

	// AssignExpert fills or replaces the expert slot. An expert may only
	// self-assign an unassigned request; an admin may assign or reassign
	// anyone. Both paths move the request to in_progress.
	AssignExpert(actorID, requestID string, req dto.AssignExpertRequest) (*dto.RequestResponse, error)

	ChangeStatus(actorID, requestID string, req dto.ChangeStatusRequest) (*dto.RequestResponse, error)
	Cancel(actorID, requestID string, req dto.CancelRequestRequest) (*dto.RequestResponse, error)

	// Delete removes a request and its owned appointments and documents.
	// Admin only.
	Delete(actorID, requestID string) error
}

type requestService struct {
	requestRepo  repositories.RequestRepository
	serviceRepo  repositories.ServiceRepository
	userRepo     repositories.UserRepository
	messageRepo  repositories.MessageRepository
	notification NotificationService
}

func NewRequestService(
	requestRepo repositories.RequestRepository,
	serviceRepo repositories.ServiceRepository,
	userRepo repositories.UserRepository,
	messageRepo repositories.MessageRepository,
	notification NotificationService,
) RequestService {
	return &requestService{
		requestRepo:  requestRepo,
		serviceRepo:  serviceRepo,
		userRepo:     userRepo,
		messageRepo:  messageRepo,
		notification: notification,
	}
}

func (s *requestService) Create(actorID string, req dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	if err := auth.AuthorizeRequest(actor.Role, auth.RequestFacts{}, auth.ActionCreateRequest); err != nil {
		return nil, err
	}

	clientID := actorID
	if req.OnBehalfOfClientID != "" {
		if actor.Role != models.UserRoleAdmin {
			return nil, apperrors.ErrPermissionDenied("request", "Only administrators can create requests on behalf of a client")
		}
		client, err := s.userRepo.FindByID(req.OnBehalfOfClientID)
		if err != nil {
			return nil, apperrors.ErrNotFound(err)
		}
		if client.Role != models.UserRoleClient {
			return nil, apperrors.ErrInvalidOperation("request", "Target user is not a client")
		}
		clientID = client.ID
	}

	service, err := s.serviceRepo.FindByID(req.ServiceID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if !service.IsActive {
		return nil, apperrors.ErrInvalidOperation("request", "Service is no longer offered")
	}

	desiredDate, err := parseDesiredDate(req.DesiredDate)
	if err != nil {
		return nil, err
	}

	request := &models.ServiceRequest{
		ClientID:    clientID,
		ServiceID:   req.ServiceID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.RequestStatusNew,
		Priority:    models.RequestPriority(req.Priority),
		DesiredDate: desiredDate,
		IsUrgent:    req.IsUrgent,
	}
	if request.Priority == "" {
		request.Priority = models.PriorityMedium
	}

	if err := s.requestRepo.Create(request); err != nil {
		return nil, apperrors.InternalError(err)
	}

	client := actor
	if clientID != actorID {
		client, _ = s.userRepo.FindByID(clientID)
	}
	s.notifyAdmins(request, client, actorID)

	return s.respond(request.ID)
}

// notifyAdmins fans the new-request notification out to every active
// administrator. Failures are logged, the request itself already exists.
func (s *requestService) notifyAdmins(request *models.ServiceRequest, client *models.User, actorID string) {
	admins, err := s.userRepo.FindActiveAdmins()
	if err != nil {
		logger.Warn("admin lookup for new request notification failed", "request_id", request.ID, "error", err)
		return
	}

	clientName := ""
	if client != nil {
		clientName = client.FullName()
	}

	for i := range admins {
		if admins[i].ID == actorID {
			continue
		}
		if err := s.notification.Dispatch(Event{
			Kind:      EventRequestCreated,
			UserID:    admins[i].ID,
			Args:      []interface{}{request.Title, clientName},
			RequestID: &request.ID,
		}); err != nil {
			logger.Warn("new request notification failed", "request_id", request.ID, "admin_id", admins[i].ID, "error", err)
		}
	}
}

func (s *requestService) Get(actorID, requestID string) (*dto.RequestResponse, error) {
	actor, request, err := s.loadActorAndRequest(actorID, requestID)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeRequest(actor.Role, requestFacts(request, actorID), auth.ActionViewRequest); err != nil {
		return nil, err
	}
	response := buildRequestResponse(request)
	return &response, nil
}

func (s *requestService) List(actorID string, criteria dto.RequestCriteria) (*dto.RequestListResponse, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	repoCriteria := repositories.RequestCriteria{
		Status:   models.RequestStatus(criteria.Status),
		Search:   criteria.Search,
		Page:     criteria.Page,
		PageSize: criteria.PageSize,
	}

	var (
		requests []models.ServiceRequest
		total    int64
	)
	switch actor.Role {
	case models.UserRoleClient:
		requests, total, err = s.requestRepo.FindByClient(actorID, repoCriteria)
	case models.UserRoleExpert:
		requests, total, err = s.requestRepo.FindByExpert(actorID, repoCriteria)
	default:
		requests, total, err = s.requestRepo.FindAll(repoCriteria)
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return buildRequestList(requests, total, criteria), nil
}

func (s *requestService) ListUnassigned(actorID string, criteria dto.RequestCriteria) (*dto.RequestListResponse, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if actor.Role != models.UserRoleExpert && actor.Role != models.UserRoleAdmin {
		return nil, apperrors.ErrPermissionDenied("request", "Only experts and administrators can browse the unassigned queue")
	}

	requests, total, err := s.requestRepo.FindUnassigned(repositories.RequestCriteria{
		Search:   criteria.Search,
		Page:     criteria.Page,
		PageSize: criteria.PageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildRequestList(requests, total, criteria), nil
}

func (s *requestService) Update(actorID, requestID string, req dto.UpdateRequestRequest) (*dto.RequestResponse, error) {
	actor, request, err := s.loadActorAndRequest(actorID, requestID)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeRequest(actor.Role, requestFacts(request, actorID), auth.ActionEditRequest); err != nil {
		return nil, err
	}

	desiredDate, err := parseDesiredDate(req.DesiredDate)
	if err != nil {
		return nil, err
	}

	priority := models.RequestPriority(req.Priority)
	if priority == "" {
		priority = request.Priority
	}

	if err := s.requestRepo.UpdateDetails(requestID, req.Title, req.Description, priority, desiredDate); err != nil {
		if err == repositories.ErrRequestNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if request.ExpertID != nil && *request.ExpertID != actorID {
		if err := s.notification.Dispatch(Event{
			Kind:      EventRequestUpdated,
			UserID:    *request.ExpertID,
			Args:      []interface{}{req.Title, actor.FullName()},
			RequestID: &request.ID,
		}); err != nil {
			logger.Warn("request update notification failed", "request_id", requestID, "error", err)
		}
	}

	return s.respond(requestID)
}

func (s *requestService) AssignExpert(actorID, requestID string, req dto.AssignExpertRequest) (*dto.RequestResponse, error) {
	actor, request, err := s.loadActorAndRequest(actorID, requestID)
	if err != nil {
		return nil, err
	}

	if request.Status.IsTerminal() {
		return nil, apperrors.ErrRequestTerminal
	}

	if actor.Role == models.UserRoleExpert && req.ExpertID != actorID {
		return nil, apperrors.ErrPermissionDenied("request", "Experts can only assign themselves")
	}
	if err := auth.AuthorizeRequest(actor.Role, requestFacts(request, actorID), auth.ActionAssignExpert); err != nil {
		return nil, err
	}

	expert, err := s.userRepo.FindByID(req.ExpertID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if expert.Role != models.UserRoleExpert {
		return nil, apperrors.ErrInvalidOperation("request", "Target user is not an expert")
	}
	if !expert.IsActive {
		return nil, apperrors.ErrInvalidOperation("request", "Expert account is disabled")
	}

	if request.ExpertID == nil {
		assigned, err := s.requestRepo.AssignExpertCAS(requestID, expert.ID, models.RequestStatusInProgress)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if !assigned {
			return nil, apperrors.ErrRequestAlreadyAssigned
		}
	} else {
		// Reassignment by an admin overrides the current expert.
		if actor.Role != models.UserRoleAdmin {
			return nil, apperrors.ErrRequestAlreadyAssigned
		}
		if err := s.requestRepo.ReassignExpert(requestID, expert.ID); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	if actor.Role == models.UserRoleExpert {
		s.notifySelfAssignment(request, expert)
	} else {
		s.notifyAdminAssignment(request, actor, expert, req.Notes)
	}

	return s.respond(requestID)
}

// notifySelfAssignment covers the "take request" path: the client is
// told the expert took the case, and the expert writes the opening
// message of the request-scoped conversation.
func (s *requestService) notifySelfAssignment(request *models.ServiceRequest, expert *models.User) {
	if err := s.notification.Dispatch(Event{
		Kind:      EventExpertTaken,
		UserID:    request.ClientID,
		Args:      []interface{}{expert.FullName(), request.Title},
		RequestID: &request.ID,
	}); err != nil {
		logger.Warn("expert taken notification failed", "request_id", request.ID, "error", err)
	}

	intro := fmt.Sprintf(
		"Bonjour, je suis %s, l'expert qui va prendre en charge votre demande \"%s\". N'hésitez pas à me poser vos questions ici.",
		expert.FullName(), request.Title)

	message := &models.Message{
		SenderID:         expert.ID,
		RecipientID:      request.ClientID,
		ServiceRequestID: &request.ID,
		Content:          intro,
	}
	if err := s.messageRepo.Create(message); err != nil {
		logger.Warn("expert introduction message failed", "request_id", request.ID, "error", err)
	}
}

func (s *requestService) notifyAdminAssignment(request *models.ServiceRequest, admin, expert *models.User, notes string) {
	if err := s.notification.Dispatch(Event{
		Kind:      EventExpertAssignment,
		UserID:    expert.ID,
		Args:      []interface{}{request.Title, admin.FullName()},
		RequestID: &request.ID,
	}); err != nil {
		logger.Warn("expert assignment notification failed", "request_id", request.ID, "error", err)
	}

	if err := s.notification.Dispatch(Event{
		Kind:      EventExpertAssignedClient,
		UserID:    request.ClientID,
		Args:      []interface{}{request.Title},
		RequestID: &request.ID,
	}); err != nil {
		logger.Warn("expert assigned notification failed", "request_id", request.ID, "error", err)
	}

	if notes != "" {
		message := &models.Message{
			SenderID:         admin.ID,
			RecipientID:      expert.ID,
			ServiceRequestID: &request.ID,
			Content:          notes,
		}
		if err := s.messageRepo.Create(message); err != nil {
			logger.Warn("assignment notes message failed", "request_id", request.ID, "error", err)
		}
	}
}

func (s *requestService) ChangeStatus(actorID, requestID string, req dto.ChangeStatusRequest) (*dto.RequestResponse, error) {
	actor, request, err := s.loadActorAndRequest(actorID, requestID)
	if err != nil {
		return nil, err
	}

	target := models.RequestStatus(req.Status)
	if !target.Valid() {
		return nil, apperrors.NewBadRequestError("Unknown request status")
	}
	if request.Status.IsTerminal() {
		return nil, apperrors.ErrRequestTerminal
	}
	if target == request.Status {
		return nil, apperrors.ErrInvalidOperation("request", "Request already has this status")
	}

	if err := auth.AuthorizeRequest(actor.Role, requestFacts(request, actorID), auth.ActionChangeStatus); err != nil {
		return nil, err
	}
	if err := auth.CanSetStatus(actor.Role, target); err != nil {
		return nil, err
	}

	changed, err := s.requestRepo.UpdateStatusCAS(requestID, request.Status, target)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !changed {
		return nil, apperrors.ErrTransitionConflict
	}

	s.notifyStatusChange(request, actor, target, req.Comment)

	return s.respond(requestID)
}

// notifyStatusChange tells the client about the new status and, when an
// admin drove the change, the assigned expert as well. A non-empty
// comment additionally lands in the client's conversation.
func (s *requestService) notifyStatusChange(request *models.ServiceRequest, actor *models.User, target models.RequestStatus, comment string) {
	recipients := []string{}
	if request.ClientID != actor.ID {
		recipients = append(recipients, request.ClientID)
	}
	if actor.Role == models.UserRoleAdmin && request.ExpertID != nil && *request.ExpertID != actor.ID {
		recipients = append(recipients, *request.ExpertID)
	}

	for _, userID := range recipients {
		if err := s.notification.Dispatch(Event{
			Kind:      EventStatusChanged,
			UserID:    userID,
			Args:      []interface{}{request.Title, target.Label()},
			RequestID: &request.ID,
		}); err != nil {
			logger.Warn("status change notification failed", "request_id", request.ID, "user_id", userID, "error", err)
		}
	}

	if comment == "" {
		return
	}
	for _, userID := range recipients {
		message := &models.Message{
			SenderID:         actor.ID,
			RecipientID:      userID,
			ServiceRequestID: &request.ID,
			Content:          "Statut mis à jour : " + comment,
		}
		if err := s.messageRepo.Create(message); err != nil {
			logger.Warn("status comment message failed", "request_id", request.ID, "user_id", userID, "error", err)
		}
	}
}

func (s *requestService) Cancel(actorID, requestID string, req dto.CancelRequestRequest) (*dto.RequestResponse, error) {
	actor, request, err := s.loadActorAndRequest(actorID, requestID)
	if err != nil {
		return nil, err
	}

	if request.Status.IsTerminal() {
		return nil, apperrors.ErrRequestTerminal
	}
	if err := auth.AuthorizeRequest(actor.Role, requestFacts(request, actorID), auth.ActionCancelRequest); err != nil {
		return nil, err
	}

	changed, err := s.requestRepo.UpdateStatusCAS(requestID, request.Status, models.RequestStatusCancelled)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !changed {
		return nil, apperrors.ErrTransitionConflict
	}

	reason := req.Reason
	if reason == "" {
		reason = "non précisée"
	}

	recipients := []string{}
	if request.ClientID != actorID {
		recipients = append(recipients, request.ClientID)
	}
	if request.ExpertID != nil && *request.ExpertID != actorID {
		recipients = append(recipients, *request.ExpertID)
	}
	for _, userID := range recipients {
		if err := s.notification.Dispatch(Event{
			Kind:      EventRequestCancelled,
			UserID:    userID,
			Args:      []interface{}{request.Title, actor.FullName(), reason},
			RequestID: &request.ID,
		}); err != nil {
			logger.Warn("cancellation notification failed", "request_id", request.ID, "user_id", userID, "error", err)
		}
	}

	return s.respond(requestID)
}

func (s *requestService) Delete(actorID, requestID string) error {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	if actor.Role != models.UserRoleAdmin {
		return apperrors.ErrPermissionDenied("request", "Only administrators can delete requests")
	}

	if _, err := s.requestRepo.FindByID(requestID); err != nil {
		return apperrors.ErrNotFound(err)
	}
	if err := s.requestRepo.Delete(requestID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *requestService) loadActorAndRequest(actorID, requestID string) (*models.User, *models.ServiceRequest, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, nil, apperrors.ErrNotFound(err)
	}
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, nil, apperrors.ErrNotFound(err)
	}
	return actor, request, nil
}

func (s *requestService) respond(requestID string) (*dto.RequestResponse, error) {
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	response := buildRequestResponse(request)
	return &response, nil
}

func requestFacts(request *models.ServiceRequest, actorID string) auth.RequestFacts {
	return auth.RequestFacts{
		IsOwner:          request.ClientID == actorID,
		IsAssignedExpert: request.ExpertID != nil && *request.ExpertID == actorID,
		Unassigned:       request.ExpertID == nil,
		Status:           request.Status,
	}
}

func parseDesiredDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(desiredDateLayout, value)
	if err != nil {
		return nil, apperrors.NewBadRequestError("Desired date must use the YYYY-MM-DD format")
	}
	return &t, nil
}

func buildRequestResponse(r *models.ServiceRequest) dto.RequestResponse {
	response := dto.RequestResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		IsUrgent:    r.IsUrgent,
		DesiredDate: r.DesiredDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Client != nil {
		response.Client = &dto.ActorRef{ID: r.Client.ID, Name: r.Client.FullName(), Role: r.Client.Role}
	}
	if r.Expert != nil {
		response.Expert = &dto.ActorRef{ID: r.Expert.ID, Name: r.Expert.FullName(), Role: r.Expert.Role}
	}
	if r.Service != nil {
		response.Service = &dto.ServiceRef{ID: r.Service.ID, Category: r.Service.Category, Title: r.Service.Title}
	}
	return response
}

func buildRequestList(requests []models.ServiceRequest, total int64, criteria dto.RequestCriteria) *dto.RequestListResponse {
	responses := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, buildRequestResponse(&requests[i]))
	}
	return &dto.RequestListResponse{
		Requests: responses,
		Total:    total,
		Page:     criteria.Page,
		PageSize: criteria.PageSize,
	}
}
