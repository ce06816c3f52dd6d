package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/retailer-dashboard/internal/api/dto"
	"github.com/spec-kit/retailer-dashboard/internal/domain"
	"github.com/spec-kit/retailer-dashboard/internal/service"
	apperrors "github.com/spec-kit/retailer-dashboard/pkg/util/errorutil"
)

func actionResponse(result service.Result) dto.ActionResponse {
	return dto.ActionResponse{Data: result.Data, Message: result.Message, Redirect: result.Redirect}
}

// formUpload opens the named file part. A missing part yields a nil upload and a no-op close.
func formUpload(c *fiber.Ctx, field string) (*domain.Upload, func(), error) {
	noop := func() {}
	if _, err := c.MultipartForm(); err != nil {
		return nil, noop, nil
	}
	header, err := c.FormFile(field)
	if err != nil {
		return nil, noop, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, noop, apperrors.NewValidationError("invalid file upload", map[string]any{"field": field})
	}
	return uploadFrom(header, file), func() { _ = file.Close() }, nil
}

func uploadFrom(header *multipart.FileHeader, file multipart.File) *domain.Upload {
	return &domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Body:        file,
	}
}

// formValue returns a submitted multipart or urlencoded field, or nil when the field was not sent.
func formValue(c *fiber.Ctx, field string) *string {
	if form, err := c.MultipartForm(); err == nil {
		if values, ok := form.Value[field]; ok && len(values) > 0 {
			v := values[0]
			return &v
		}
		return nil
	}
	args := c.Request().PostArgs()
	if !args.Has(field) {
		return nil
	}
	v := string(args.Peek(field))
	return &v
}
