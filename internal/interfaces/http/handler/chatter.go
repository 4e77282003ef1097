package handler

import (
	chatterapp "github.com/erp/procurement/internal/application/chatter"
	"github.com/gin-gonic/gin"
)

// ChatterHandler handles record threads, activities and attachments
type ChatterHandler struct {
	BaseHandler
	chatterService *chatterapp.ChatterService
}

// NewChatterHandler creates a new ChatterHandler
func NewChatterHandler(chatterService *chatterapp.ChatterService) *ChatterHandler {
	return &ChatterHandler{chatterService: chatterService}
}

// ListMessages lists the thread of a record, newest first.
//
// @Summary      List a record's messages
// @Description  Lists the thread of a record, newest first.
// @Tags         chatter
// @Produce      json
// @Param        model path string true "Record model"
// @Param        id path string true "Record ID" format(uuid)
// @Param        filter query chatterapp.MessageListFilter false "Paging"
// @Success      200 {object} dto.Response{data=[]chatterapp.MessageResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /chatter/{model}/{id}/messages [get]
func (h *ChatterHandler) ListMessages(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	resID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var filter chatterapp.MessageListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	messages, total, err := h.chatterService.ListMessages(c.Request.Context(), tenantID, c.Param("model"), resID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, messages, total, filter.Page, filter.PageSize)
}

// PostMessage posts a comment on a record.
//
// @Summary      Post a message
// @Description  Posts a comment on a record.
// @Tags         chatter
// @Accept       json
// @Produce      json
// @Param        model path string true "Record model"
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body chatterapp.PostMessageRequest true "Message"
// @Success      201 {object} dto.Response{data=chatterapp.MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /chatter/{model}/{id}/messages [post]
func (h *ChatterHandler) PostMessage(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	resID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req chatterapp.PostMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	msg, err := h.chatterService.PostMessage(c.Request.Context(), tenantID, c.Param("model"), resID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}

// ScheduleActivity schedules a to-do on a record.
//
// @Summary      Schedule an activity
// @Description  Schedules a to-do on a record.
// @Tags         chatter
// @Accept       json
// @Produce      json
// @Param        model path string true "Record model"
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body chatterapp.ScheduleActivityRequest true "Activity"
// @Success      201 {object} dto.Response{data=chatterapp.ActivityResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /chatter/{model}/{id}/activities [post]
func (h *ChatterHandler) ScheduleActivity(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	resID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req chatterapp.ScheduleActivityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	activity, err := h.chatterService.ScheduleActivity(c.Request.Context(), tenantID, c.Param("model"), resID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, activity)
}

// MyActivities lists the activities assigned to the caller.
//
// @Summary      List the caller's activities
// @Description  Lists the activities assigned to the caller.
// @Tags         activities
// @Produce      json
// @Param        filter query chatterapp.ActivityListFilter false "Filters"
// @Success      200 {object} dto.Response{data=[]chatterapp.ActivityResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /activities/mine [get]
func (h *ChatterHandler) MyActivities(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var filter chatterapp.ActivityListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	activities, total, err := h.chatterService.ListMyActivities(c.Request.Context(), tenantID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, activities, total, filter.Page, filter.PageSize)
}

// MarkActivityDone closes one of the caller's activities.
//
// @Summary      Mark an activity done
// @Description  Closes one of the caller's activities.
// @Tags         activities
// @Accept       json
// @Produce      json
// @Param        id path string true "Activity ID" format(uuid)
// @Param        request body chatterapp.MarkDoneRequest false "Feedback"
// @Success      200 {object} dto.Response{data=chatterapp.ActivityResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /activities/{id}/done [post]
func (h *ChatterHandler) MarkActivityDone(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req chatterapp.MarkDoneRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	activity, err := h.chatterService.MarkActivityDone(c.Request.Context(), tenantID, id, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, activity)
}

// RequestAttachmentUpload registers an attachment on a message and returns
// a presigned upload URL.
//
// @Summary      Request an attachment upload URL
// @Description  Registers an attachment on a message and returns a presigned upload URL.
// @Tags         chatter
// @Accept       json
// @Produce      json
// @Param        id path string true "Message ID" format(uuid)
// @Param        request body chatterapp.RequestUploadRequest true "Attachment"
// @Success      201 {object} dto.Response{data=chatterapp.UploadURLResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /chatter/messages/{id}/attachments [post]
func (h *ChatterHandler) RequestAttachmentUpload(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	messageID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req chatterapp.RequestUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	upload, err := h.chatterService.RequestAttachmentUpload(c.Request.Context(), tenantID, messageID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, upload)
}

// DownloadAttachment returns a presigned download URL.
//
// @Summary      Get an attachment download URL
// @Description  Returns a presigned download URL.
// @Tags         chatter
// @Produce      json
// @Param        id path string true "Attachment ID" format(uuid)
// @Success      200 {object} dto.Response{data=chatterapp.DownloadURLResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /chatter/attachments/{id}/download [get]
func (h *ChatterHandler) DownloadAttachment(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	download, err := h.chatterService.AttachmentDownloadURL(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, download)
}
