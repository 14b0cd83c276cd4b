package services

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"servicesbladi_backend/internal/config"
	"servicesbladi_backend/internal/logger"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/internal/storage"
	"servicesbladi_backend/pkg/apperrors"
)

// FileUpload is the transport-agnostic view of an incoming file.
type FileUpload struct {
	Name     string
	Size     int64
	MimeType string
	Reader   io.Reader
}

type DocumentService interface {
	// Upload stores the file and records the document row. The uploader
	// must be a participant of the target request or appointment.
	Upload(actorID string, req dto.UploadDocumentRequest, file FileUpload) (*dto.DocumentResponse, error)

	Get(actorID, documentID string) (*dto.DocumentResponse, error)
	Download(actorID, documentID string) (io.ReadCloser, *dto.DocumentResponse, error)
	ListByRequest(actorID, requestID string) ([]dto.DocumentResponse, error)
	ListMine(actorID string) ([]dto.DocumentResponse, error)

	// ListPending is the admin review queue.
	ListPending(actorID string) ([]dto.DocumentResponse, error)

	// Verify and Reject settle a pending document exactly once; a
	// document already reviewed cannot be reviewed again.
	Verify(actorID, documentID string) (*dto.DocumentResponse, error)
	Reject(actorID, documentID string, req dto.RejectDocumentRequest) (*dto.DocumentResponse, error)

	Delete(actorID, documentID string) error
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	requestRepo  repositories.RequestRepository
	userRepo     repositories.UserRepository
	store        storage.Storage
	notification NotificationService
}

func NewDocumentService(
	documentRepo repositories.DocumentRepository,
	requestRepo repositories.RequestRepository,
	userRepo repositories.UserRepository,
	store storage.Storage,
	notification NotificationService,
) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		requestRepo:  requestRepo,
		userRepo:     userRepo,
		store:        store,
		notification: notification,
	}
}

func (s *documentService) Upload(actorID string, req dto.UploadDocumentRequest, file FileUpload) (*dto.DocumentResponse, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	cfg := config.GetConfig()
	if file.Size > cfg.Upload.MaxSize {
		return nil, apperrors.ErrFileTooLarge
	}
	if !allowedMimeType(file.MimeType, cfg.Upload.AllowedTypes) {
		return nil, apperrors.ErrInvalidFileType
	}

	var requestID *string
	if req.ServiceRequestID != "" {
		request, err := s.requestRepo.FindByID(req.ServiceRequestID)
		if err != nil {
			return nil, apperrors.ErrNotFound(err)
		}
		if !isRequestParticipant(request, actor) {
			return nil, apperrors.ErrPermissionDenied("document", "You are not a participant of this request")
		}
		id := req.ServiceRequestID
		requestID = &id
	}
	var appointmentID *string
	if req.AppointmentID != "" {
		id := req.AppointmentID
		appointmentID = &id
	}

	docType := models.DocumentType(req.Type)
	if docType == "" {
		docType = models.DocumentTypeOther
	}

	key := fmt.Sprintf("documents/%s/%s%s", actorID, uuid.NewString(), filepath.Ext(file.Name))
	path, err := s.store.Save(key, file.Reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "document", "Failed to store file", 500)
	}

	document := &models.Document{
		ServiceRequestID: requestID,
		AppointmentID:    appointmentID,
		UploadedByID:     actorID,
		Type:             docType,
		IsOfficial:       req.IsOfficial,
		ReferenceNumber:  req.ReferenceNumber,
		Name:             file.Name,
		FilePath:         path,
		FileURL:          s.store.URL(key),
		MimeType:         file.MimeType,
		SizeKB:           file.Size / 1024,
		Status:           models.DocumentStatusPending,
	}
	if err := s.documentRepo.Create(document); err != nil {
		if delErr := s.store.Delete(key); delErr != nil {
			logger.Warn("orphan file cleanup failed", "key", key, "error", delErr)
		}
		return nil, apperrors.InternalError(err)
	}

	return s.respond(document.ID)
}

func allowedMimeType(mimeType string, allowed []string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	for _, t := range allowed {
		if mimeType == t {
			return true
		}
	}
	return false
}

func (s *documentService) Get(actorID, documentID string) (*dto.DocumentResponse, error) {
	document, err := s.loadAuthorized(actorID, documentID)
	if err != nil {
		return nil, err
	}
	response := buildDocumentResponse(document)
	return &response, nil
}

func (s *documentService) Download(actorID, documentID string) (io.ReadCloser, *dto.DocumentResponse, error) {
	document, err := s.loadAuthorized(actorID, documentID)
	if err != nil {
		return nil, nil, err
	}

	key := strings.TrimPrefix(document.FileURL, s.store.URL(""))
	reader, err := s.store.Open(strings.TrimPrefix(key, "/"))
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeInternalError, "document", "Failed to open file", 500)
	}
	response := buildDocumentResponse(document)
	return reader, &response, nil
}

func (s *documentService) ListByRequest(actorID, requestID string) ([]dto.DocumentResponse, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if !isRequestParticipant(request, actor) {
		return nil, apperrors.ErrPermissionDenied("document", "You are not a participant of this request")
	}

	documents, err := s.documentRepo.FindByRequest(requestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildDocumentResponses(documents), nil
}

func (s *documentService) ListMine(actorID string) ([]dto.DocumentResponse, error) {
	documents, err := s.documentRepo.FindByUploader(actorID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildDocumentResponses(documents), nil
}

func (s *documentService) ListPending(actorID string) ([]dto.DocumentResponse, error) {
	if err := s.requireAdmin(actorID); err != nil {
		return nil, err
	}
	documents, err := s.documentRepo.FindPending()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildDocumentResponses(documents), nil
}

func (s *documentService) Verify(actorID, documentID string) (*dto.DocumentResponse, error) {
	return s.review(actorID, documentID, models.DocumentStatusVerified, "")
}

func (s *documentService) Reject(actorID, documentID string, req dto.RejectDocumentRequest) (*dto.DocumentResponse, error) {
	return s.review(actorID, documentID, models.DocumentStatusRejected, req.Reason)
}

func (s *documentService) review(actorID, documentID string, status models.DocumentStatus, reason string) (*dto.DocumentResponse, error) {
	if err := s.requireAdmin(actorID); err != nil {
		return nil, err
	}
	document, err := s.documentRepo.FindByID(documentID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	reviewed, err := s.documentRepo.SetReviewStatus(documentID, status, actorID, reason)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !reviewed {
		return nil, apperrors.ErrDocumentAlreadyReviewed
	}

	event := Event{
		UserID:        document.UploadedByID,
		RequestID:     document.ServiceRequestID,
		AppointmentID: document.AppointmentID,
	}
	if status == models.DocumentStatusVerified {
		event.Kind = EventDocumentVerified
		event.Args = []interface{}{document.Name}
	} else {
		event.Kind = EventDocumentRejected
		event.Args = []interface{}{document.Name, reason}
	}
	if err := s.notification.Dispatch(event); err != nil {
		logger.Warn("document review notification failed", "document_id", documentID, "error", err)
	}

	return s.respond(documentID)
}

func (s *documentService) Delete(actorID, documentID string) error {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	document, err := s.documentRepo.FindByID(documentID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}

	if actor.Role != models.UserRoleAdmin {
		if document.UploadedByID != actorID {
			return apperrors.ErrPermissionDenied("document", "You can only delete your own documents")
		}
		if document.Status != models.DocumentStatusPending {
			return apperrors.ErrDocumentAlreadyReviewed
		}
	}

	if err := s.documentRepo.Delete(documentID); err != nil {
		return apperrors.InternalError(err)
	}

	key := strings.TrimPrefix(document.FileURL, s.store.URL(""))
	if err := s.store.Delete(strings.TrimPrefix(key, "/")); err != nil {
		logger.Warn("document file cleanup failed", "document_id", documentID, "error", err)
	}
	return nil
}

func (s *documentService) loadAuthorized(actorID, documentID string) (*models.Document, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	document, err := s.documentRepo.FindByID(documentID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if actor.Role == models.UserRoleAdmin || document.UploadedByID == actorID {
		return document, nil
	}
	if document.ServiceRequestID != nil {
		request, err := s.requestRepo.FindByID(*document.ServiceRequestID)
		if err == nil && isRequestParticipant(request, actor) {
			return document, nil
		}
	}
	return nil, apperrors.ErrPermissionDenied("document", "You do not have access to this document")
}

func (s *documentService) requireAdmin(actorID string) error {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	if actor.Role != models.UserRoleAdmin {
		return apperrors.ErrInsufficientPermissions
	}
	return nil
}

func (s *documentService) respond(documentID string) (*dto.DocumentResponse, error) {
	document, err := s.documentRepo.FindByID(documentID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	response := buildDocumentResponse(document)
	return &response, nil
}

func buildDocumentResponse(d *models.Document) dto.DocumentResponse {
	response := dto.DocumentResponse{
		ID:               d.ID,
		Name:             d.Name,
		Type:             d.Type,
		Status:           d.Status,
		IsOfficial:       d.IsOfficial,
		ReferenceNumber:  d.ReferenceNumber,
		URL:              d.FileURL,
		MimeType:         d.MimeType,
		SizeKB:           d.SizeKB,
		RejectionReason:  d.RejectionReason,
		ServiceRequestID: d.ServiceRequestID,
		AppointmentID:    d.AppointmentID,
		UploadedAt:       d.CreatedAt,
	}
	if d.UploadedBy != nil {
		response.UploadedBy = &dto.ActorRef{ID: d.UploadedBy.ID, Name: d.UploadedBy.FullName(), Role: d.UploadedBy.Role}
	}
	return response
}

func buildDocumentResponses(documents []models.Document) []dto.DocumentResponse {
	responses := make([]dto.DocumentResponse, 0, len(documents))
	for i := range documents {
		responses = append(responses, buildDocumentResponse(&documents[i]))
	}
	return responses
}
