package handler

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Sirpyerre/file-manager/internal/api/metrics"
	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

// FileHandler handles HTTP requests for file operations.
type FileHandler struct {
	service ports.FileService
}

func NewFileHandler(service ports.FileService) *FileHandler {
	return &FileHandler{service: service}
}

// Upload handles POST /upload.
//
// @Summary      Upload a file into a folder
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file       formData  file    true   "Content (jpeg, png or pdf)"
// @Param        folder_id  formData  string  true   "Target folder id"
// @Param        file_name  formData  string  false  "Stored name, defaults to the uploaded file name"
// @Success      201        {object}  idResponse
// @Failure      400        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Failure      409        {object}  errorResponse
// @Failure      413        {object}  errorResponse
// @Router       /upload [post]
func (h *FileHandler) Upload(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	content, fh, err := formFile(c, "file")
	if err != nil {
		return err
	}

	name := strings.TrimSpace(c.FormValue("file_name"))
	if name == "" {
		name = fh.Filename
	}

	id, err := h.service.UploadFile(c.Request().Context(), ports.UploadFileInput{
		Content:     content,
		Filename:    name,
		FolderID:    c.FormValue("folder_id"),
		ContentType: fh.Header.Get(echo.HeaderContentType),
	}, actor)
	observeOperation("upload", err)
	if err != nil {
		return err
	}

	metrics.UploadSizeBytes.Observe(float64(len(content)))
	return c.JSON(http.StatusCreated, idResponse{ID: id})
}

// Rename handles PUT /files/:id.
//
// @Summary      Rename a file
// @Tags         files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "File id"
// @Param        body  body      renameFileRequest  true  "New file name"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /files/{id} [put]
func (h *FileHandler) Rename(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req renameFileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.service.RenameFile(c.Request().Context(), c.Param("id"), req.Filename, actor)
	observeOperation("rename", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "file renamed"})
}

// Delete handles DELETE /files/:id. Admin only.
//
// @Summary      Delete a file
// @Tags         files
// @Security     BearerAuth
// @Param        id   path  string  true  "File id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /files/{id} [delete]
func (h *FileHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	err = h.service.DeleteFile(c.Request().Context(), c.Param("id"), actor)
	observeOperation("delete", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Download handles GET /files/:id/download.
//
// @Summary      Download a file
// @Tags         files
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id   path  string  true  "File id"
// @Success      200
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /files/{id}/download [get]
func (h *FileHandler) Download(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	dl, err := h.service.DownloadFile(c.Request().Context(), c.Param("id"), actor)
	observeOperation("download", err)
	if err != nil {
		return err
	}
	defer dl.Content.Close()

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": dl.Entry.Filename}))
	if dl.Entry.Size > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(dl.Entry.Size, 10))
	}
	return c.Stream(http.StatusOK, dl.Entry.ContentType, dl.Content)
}
