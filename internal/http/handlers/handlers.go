package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/tenantbase/backend/internal/apperr"
	"github.com/tenantbase/backend/internal/http/dto"
)

// respondErr translates a domain error to its status and {error: message}
// body. Unclassified errors surface as a generic 500.
func respondErr(c *fiber.Ctx, err error) error {
	status := apperr.StatusOf(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "internal error"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg})
}

// formValue returns the field's value only when the form actually carries the
// key; absence and empty string stay distinguishable for merge updates.
func formValue(form *multipart.Form, key string) *string {
	if vs, ok := form.Value[key]; ok && len(vs) > 0 {
		v := vs[0]
		return &v
	}
	return nil
}

func firstFormValue(form *multipart.Form, keys ...string) *string {
	for _, k := range keys {
		if v := formValue(form, k); v != nil {
			return v
		}
	}
	return nil
}
