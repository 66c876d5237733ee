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

type ClientHandler struct {
	clientService *services.ClientService
	storage       *uploads.Storage
	log           *zap.Logger
}

func NewClientHandler(clientService *services.ClientService, storage *uploads.Storage, log *zap.Logger) *ClientHandler {
	return &ClientHandler{clientService: clientService, storage: storage, log: log}
}

func (h *ClientHandler) List(c *fiber.Ctx) error {
	clients, err := h.clientService.List(c.Context(), middleware.GetSessionUser(c))
	if err != nil {
		h.log.Error("list clients failed", zap.Error(err))
		return respondErr(c, err)
	}
	if clients == nil {
		clients = []models.Client{}
	}
	return c.JSON(clients)
}

func (h *ClientHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid client id"})
	}
	client, err := h.clientService.Get(c.Context(), middleware.GetSessionUser(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(client)
}

func (h *ClientHandler) Create(c *fiber.Ctx) error {
	actor := middleware.GetSessionUser(c)
	in, err := h.clientInput(c, actor.TenantID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	client, err := h.clientService.Create(c.Context(), actor, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreatedResponse{ID: client.ID})
}

func (h *ClientHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid client id"})
	}

	actor := middleware.GetSessionUser(c)
	in, err := h.clientInput(c, actor.TenantID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	changed, err := h.clientService.Update(c.Context(), actor, id, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true, Changed: changed})
}

func (h *ClientHandler) clientInput(c *fiber.Ctx, tenantID string) (models.ClientInput, error) {
	var in models.ClientInput

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
		in.Phone = formValue(form, "Phone")
		in.Address = formValue(form, "Address")
		in.City = formValue(form, "City")
		in.State = formValue(form, "State")
		in.Zip = formValue(form, "Zip")
		in.Country = formValue(form, "Country")
		in.Gender = formValue(form, "Gender")
		in.DateOfBirth = firstFormValue(form, "DateOfBirth", "dateOfBirth")
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
