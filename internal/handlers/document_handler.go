package handlers

import (
	"github.com/gin-gonic/gin"

	"servicesbladi_backend/internal/middleware"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/services"
	"servicesbladi_backend/internal/services/dto"
	"servicesbladi_backend/internal/validator"
	"servicesbladi_backend/pkg/apperrors"
)

type DocumentHandler struct {
	BaseHandler
	documentService services.DocumentService
}

func NewDocumentHandler(documentService services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	documents := rg.Group("/documents", middleware.AuthMiddleware())
	{
		documents.POST("", h.Upload)
		documents.GET("/mine", h.ListMine)
		documents.GET("/pending", middleware.RequireRoles(models.UserRoleAdmin), h.ListPending)
		documents.GET("/:id", h.Get)
		documents.GET("/:id/download", h.Download)
		documents.POST("/:id/verify", middleware.RequireRoles(models.UserRoleAdmin), h.Verify)
		documents.POST("/:id/reject", middleware.RequireRoles(models.UserRoleAdmin), h.Reject)
		documents.DELETE("/:id", h.Delete)
	}

	rg.GET("/requests/:id/documents", middleware.AuthMiddleware(), h.ListByRequest)
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}

	var req dto.UploadDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid form data"))
		return
	}
	if problems := validator.ValidateStruct(&req); problems != nil {
		apperrors.HandleError(c, apperrors.ValidationError(problems))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("File is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}
	defer file.Close()

	response, err := h.documentService.Upload(userID, req, services.FileUpload{
		Name:     fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Reader:   file,
	})
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.Created(c, response)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	response, err := h.documentService.Get(userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *DocumentHandler) Download(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	reader, document, err := h.documentService.Download(userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+document.Name+`"`)
	c.Header("Content-Type", document.MimeType)
	c.DataFromReader(200, document.SizeKB*1024, document.MimeType, reader, nil)
}

func (h *DocumentHandler) ListByRequest(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	responses, err := h.documentService.ListByRequest(userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"documents": responses})
}

func (h *DocumentHandler) ListMine(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	responses, err := h.documentService.ListMine(userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"documents": responses})
}

func (h *DocumentHandler) ListPending(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	responses, err := h.documentService.ListPending(userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"documents": responses})
}

func (h *DocumentHandler) Verify(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	response, err := h.documentService.Verify(userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *DocumentHandler) Reject(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	var req dto.RejectDocumentRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	response, err := h.documentService.Reject(userID, c.Param("id"), req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.OK(c, response)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := h.AuthenticatedUserID(c)
	if !ok {
		return
	}
	if err := h.documentService.Delete(userID, c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
