package services

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
)

// In-memory repository fakes. CAS methods reproduce the SQL semantics
// so concurrency edge cases are testable without a database.

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByRole(role models.UserRole, limit, offset int) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindActiveAdmins() ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.Role == models.UserRoleAdmin && u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) CountByRole(role models.UserRole) (int64, error) {
	var count int64
	for _, u := range r.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SetActive(userID string, active bool) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserRepo) UpdateLastActive(userID string) error { return nil }

func (r *fakeUserRepo) CreateRefreshToken(token *models.RefreshToken) error { return nil }
func (r *fakeUserRepo) FindRefreshToken(token string) (*models.RefreshToken, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeUserRepo) DeleteRefreshToken(token string) error      { return nil }
func (r *fakeUserRepo) DeleteUserRefreshTokens(userID string) error { return nil }

type fakeRequestRepo struct {
	requests map[string]*models.ServiceRequest
}

func newFakeRequestRepo(requests ...*models.ServiceRequest) *fakeRequestRepo {
	repo := &fakeRequestRepo{requests: make(map[string]*models.ServiceRequest)}
	for _, req := range requests {
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		repo.requests[req.ID] = req
	}
	return repo
}

func (r *fakeRequestRepo) Create(request *models.ServiceRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	r.requests[request.ID] = request
	return nil
}

func (r *fakeRequestRepo) FindByID(id string) (*models.ServiceRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, repositories.ErrRequestNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *fakeRequestRepo) FindByClient(clientID string, criteria repositories.RequestCriteria) ([]models.ServiceRequest, int64, error) {
	var out []models.ServiceRequest
	for _, req := range r.requests {
		if req.ClientID == clientID {
			out = append(out, *req)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRequestRepo) FindByExpert(expertID string, criteria repositories.RequestCriteria) ([]models.ServiceRequest, int64, error) {
	var out []models.ServiceRequest
	for _, req := range r.requests {
		if req.ExpertID != nil && *req.ExpertID == expertID {
			out = append(out, *req)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRequestRepo) FindUnassigned(criteria repositories.RequestCriteria) ([]models.ServiceRequest, int64, error) {
	var out []models.ServiceRequest
	for _, req := range r.requests {
		if req.ExpertID == nil && req.Status == models.RequestStatusNew {
			out = append(out, *req)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRequestRepo) FindAll(criteria repositories.RequestCriteria) ([]models.ServiceRequest, int64, error) {
	var out []models.ServiceRequest
	for _, req := range r.requests {
		out = append(out, *req)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRequestRepo) UpdateDetails(id string, title, description string, priority models.RequestPriority, desiredDate *time.Time) error {
	req, ok := r.requests[id]
	if !ok {
		return repositories.ErrRequestNotFound
	}
	req.Title = title
	req.Description = description
	req.Priority = priority
	if desiredDate != nil {
		req.DesiredDate = desiredDate
	}
	return nil
}

func (r *fakeRequestRepo) UpdateStatusCAS(id string, from, to models.RequestStatus) (bool, error) {
	req, ok := r.requests[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	return true, nil
}

func (r *fakeRequestRepo) AssignExpertCAS(id, expertID string, status models.RequestStatus) (bool, error) {
	req, ok := r.requests[id]
	if !ok || req.ExpertID != nil {
		return false, nil
	}
	req.ExpertID = &expertID
	req.Status = status
	return true, nil
}

func (r *fakeRequestRepo) ReassignExpert(id, expertID string) error {
	req, ok := r.requests[id]
	if !ok {
		return repositories.ErrRequestNotFound
	}
	req.ExpertID = &expertID
	req.Status = models.RequestStatusInProgress
	return nil
}

func (r *fakeRequestRepo) Delete(id string) error {
	delete(r.requests, id)
	return nil
}

type fakeMessageRepo struct {
	messages []*models.Message
}

func (r *fakeMessageRepo) Create(message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.SentAt.IsZero() {
		message.SentAt = time.Now()
	}
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) FindByID(id string) (*models.Message, error) {
	for _, m := range r.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, repositories.ErrMessageNotFound
}

func (r *fakeMessageRepo) FindConversation(a, b string, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range r.messages {
		if (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) FindByRequest(requestID string) ([]models.Message, error) {
	var out []models.Message
	for _, m := range r.messages {
		if m.ServiceRequestID != nil && *m.ServiceRequestID == requestID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) FindUserMessages(userID string) ([]models.Message, error) {
	var out []models.Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		if m.SenderID == userID || m.RecipientID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkConversationRead(recipientID, otherID string) (int64, error) {
	var flipped int64
	now := time.Now()
	for _, m := range r.messages {
		if m.RecipientID == recipientID && m.SenderID == otherID && !m.IsRead {
			m.IsRead = true
			m.ReadAt = &now
			flipped++
		}
	}
	return flipped, nil
}

func (r *fakeMessageRepo) CountUnread(userID string) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.RecipientID == userID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) HasMessageFrom(requestID, senderID string) (bool, error) {
	for _, m := range r.messages {
		if m.ServiceRequestID != nil && *m.ServiceRequestID == requestID && m.SenderID == senderID {
			return true, nil
		}
	}
	return false, nil
}

type fakeNotificationRepo struct {
	notifications []*models.Notification
}

func (r *fakeNotificationRepo) Create(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) CreateBulk(notifications []*models.Notification) error {
	for _, n := range notifications {
		if err := r.Create(n); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeNotificationRepo) FindByID(id string) (*models.Notification, error) {
	for _, n := range r.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) FindUserNotifications(userID string, criteria repositories.NotificationCriteria) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if criteria.UnreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) MarkAsRead(userID, notificationID string) error {
	for _, n := range r.notifications {
		if n.ID == notificationID && n.UserID == userID {
			n.IsRead = true
			now := time.Now()
			n.ReadAt = &now
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllAsRead(userID string) error {
	now := time.Now()
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(userID string) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) DeleteOlderThan(cutoff time.Time) (int64, error) { return 0, nil }

func (r *fakeNotificationRepo) forUser(userID string) []*models.Notification {
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeAppointmentRepo struct {
	appointments map[string]*models.Appointment
}

func newFakeAppointmentRepo(appointments ...*models.Appointment) *fakeAppointmentRepo {
	repo := &fakeAppointmentRepo{appointments: make(map[string]*models.Appointment)}
	for _, a := range appointments {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		repo.appointments[a.ID] = a
	}
	return repo
}

func (r *fakeAppointmentRepo) Create(appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	r.appointments[appointment.ID] = appointment
	return nil
}

func (r *fakeAppointmentRepo) FindByID(id string) (*models.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, repositories.ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAppointmentRepo) FindByClient(clientID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appointments {
		if a.ClientID == clientID && (status == "" || a.Status == status) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindByExpert(expertID string, status models.AppointmentStatus) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appointments {
		if a.ExpertID == expertID && (status == "" || a.Status == status) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindByRequest(requestID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range r.appointments {
		if a.ServiceRequestID != nil && *a.ServiceRequestID == requestID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) UpdateStatusCAS(id string, from []models.AppointmentStatus, to models.AppointmentStatus) (bool, error) {
	a, ok := r.appointments[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if a.Status == f {
			a.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) Reschedule(id string, dateTime time.Time, duration int) error {
	a, ok := r.appointments[id]
	if !ok {
		return repositories.ErrAppointmentNotFound
	}
	a.DateTime = dateTime
	a.Duration = duration
	return nil
}

func (r *fakeAppointmentRepo) UpdateNotes(id string, notes string) error {
	a, ok := r.appointments[id]
	if !ok {
		return repositories.ErrAppointmentNotFound
	}
	a.Notes = notes
	return nil
}

func (r *fakeAppointmentRepo) Delete(id string) error {
	delete(r.appointments, id)
	return nil
}

type fakeServiceRepo struct {
	services map[string]*models.Service
}

func newFakeServiceRepo(services ...*models.Service) *fakeServiceRepo {
	repo := &fakeServiceRepo{services: make(map[string]*models.Service)}
	for _, s := range services {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		repo.services[s.ID] = s
	}
	return repo
}

func (r *fakeServiceRepo) Create(service *models.Service) error {
	if service.ID == "" {
		service.ID = uuid.NewString()
	}
	r.services[service.ID] = service
	return nil
}

func (r *fakeServiceRepo) FindByID(id string) (*models.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, repositories.ErrServiceNotFound
	}
	return s, nil
}

func (r *fakeServiceRepo) FindActive(category string) ([]models.Service, error) {
	var out []models.Service
	for _, s := range r.services {
		if s.IsActive && (category == "" || s.Category == category) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeServiceRepo) Update(service *models.Service) error {
	r.services[service.ID] = service
	return nil
}

func (r *fakeServiceRepo) SetActive(id string, active bool) error {
	s, ok := r.services[id]
	if !ok {
		return repositories.ErrServiceNotFound
	}
	s.IsActive = active
	return nil
}

// recordingEmail captures sends; failing lets tests check best-effort
// delivery never surfaces an error.
type recordingEmail struct {
	sent    []string
	failing bool
}

func (e *recordingEmail) Send(to, subject, body string) error {
	if e.failing {
		return errors.New("smtp unavailable")
	}
	e.sent = append(e.sent, to)
	return nil
}

func (e *recordingEmail) Close() error { return nil }
