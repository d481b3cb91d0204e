package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

// FolderHandler handles HTTP requests for the folder tree.
type FolderHandler struct {
	service ports.FolderService
}

func NewFolderHandler(service ports.FolderService) *FolderHandler {
	return &FolderHandler{service: service}
}

// Root handles GET /folders/root.
//
// @Summary      Get the root folder
// @Tags         folders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  folderResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /folders/root [get]
func (h *FolderHandler) Root(c echo.Context) error {
	root, err := h.service.Root(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toFolderResponse(root))
}

// Create handles POST /folders.
//
// @Summary      Create a folder
// @Tags         folders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createFolderRequest  true  "Folder name and parent"
// @Success      201   {object}  idResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /folders [post]
func (h *FolderHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createFolderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.service.CreateFolder(c.Request().Context(), req.Name, req.ParentFolderID, actor)
	observeOperation("create_folder", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, idResponse{ID: id})
}

// Rename handles PUT /folders/:id.
//
// @Summary      Rename a folder
// @Tags         folders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Folder id"
// @Param        body  body      renameFolderRequest  true  "New name"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /folders/{id} [put]
func (h *FolderHandler) Rename(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req renameFolderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.service.RenameFolder(c.Request().Context(), c.Param("id"), req.Name, actor)
	observeOperation("rename_folder", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "folder renamed"})
}

// Delete handles DELETE /folders/:id. Only empty, non-root folders can go.
//
// @Summary      Delete an empty folder
// @Tags         folders
// @Security     BearerAuth
// @Param        id   path  string  true  "Folder id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /folders/{id} [delete]
func (h *FolderHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	err = h.service.DeleteFolder(c.Request().Context(), c.Param("id"), actor)
	observeOperation("delete_folder", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Contents handles GET /folders/:id/contents.
//
// @Summary      List a folder's immediate children
// @Tags         folders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Folder id"
// @Success      200  {object}  folderContentsResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /folders/{id}/contents [get]
func (h *FolderHandler) Contents(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	fc, err := h.service.ListContentsByID(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toFolderContentsResponse(fc))
}

// ContentsByName handles GET /folders/by-name/:name.
//
// @Summary      List a folder's children by folder name
// @Tags         folders
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Folder name"
// @Success      200   {object}  folderContentsResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /folders/by-name/{name} [get]
func (h *FolderHandler) ContentsByName(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	fc, err := h.service.ListContents(c.Request().Context(), c.Param("name"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toFolderContentsResponse(fc))
}
