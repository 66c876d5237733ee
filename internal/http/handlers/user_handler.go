package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tenantbase/backend/internal/http/dto"
	"github.com/tenantbase/backend/internal/middleware"
	"github.com/tenantbase/backend/internal/models"
	"github.com/tenantbase/backend/internal/services"
	"github.com/tenantbase/backend/internal/uploads"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *services.UserService
	storage     *uploads.Storage
	log         *zap.Logger
}

func NewUserHandler(userService *services.UserService, storage *uploads.Storage, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, storage: storage, log: log}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.userService.List(c.Context(), middleware.GetSessionUser(c))
	if err != nil {
		h.log.Error("list users failed", zap.Error(err))
		return respondErr(c, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(users)
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	u, err := h.userService.Me(c.Context(), middleware.GetSessionUser(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(u)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid user id"})
	}
	u, err := h.userService.Get(c.Context(), middleware.GetSessionUser(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(u)
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	actor := middleware.GetSessionUser(c)
	in, err := h.userInput(c, actor.TenantID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	u, err := h.userService.Create(c.Context(), actor, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreatedResponse{ID: u.ID, TenantUserID: u.TenantUserID})
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid user id"})
	}

	actor := middleware.GetSessionUser(c)
	in, err := h.userInput(c, actor.TenantID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	changed, err := h.userService.Update(c.Context(), actor, id, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Changed: changed})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid user id"})
	}
	if err := h.userService.Remove(c.Context(), middleware.GetSessionUser(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// userInput builds the partial payload from either a JSON body or a
// multipart form (the photo-upload path). An uploaded file wins over any
// Photo value in the body.
func (h *UserHandler) userInput(c *fiber.Ctx, tenantID string) (models.UserInput, error) {
	var in models.UserInput

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return in, err
		}
		in.FirstName = formValue(form, "FirstName")
		in.LastName = formValue(form, "LastName")
		in.Email = formValue(form, "Email")
		in.Comments = formValue(form, "Comments")
		in.Password = formValue(form, "Password")
		in.Password2 = formValue(form, "Password2")
		in.Photo = formValue(form, "Photo")
		if v := firstFormValue(form, "Active", "active"); v != nil {
			b := models.Bit(models.Truthy(*v))
			in.Active = &b
		}
	} else if err := c.BodyParser(&in); err != nil {
		return in, err
	}

	if fh, err := c.FormFile("photo"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			return in, err
		}
		defer f.Close()
		path, err := h.storage.Save(tenantID, fh.Filename, f)
		if err != nil {
			return in, err
		}
		in.Photo = &path
	}

	return in, nil
}
