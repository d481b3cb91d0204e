package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
)

// formFile reads a whole multipart file field into memory. The request body
// is already capped by the BodyLimit middleware.
func formFile(c echo.Context, field string) ([]byte, *multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, field+" file is required")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open form file %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read form file %s: %w", field, err)
	}
	return data, fh, nil
}
