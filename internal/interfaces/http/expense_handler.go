package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturo-api/internal/application/dto"
	"github.com/jhoicas/Facturo-api/internal/application/expense"
)

// ExpenseHandler gastos del tenant y sus recibos.
type ExpenseHandler struct {
	uc *expense.UseCase
}

// NewExpenseHandler construye el handler.
func NewExpenseHandler(uc *expense.UseCase) *ExpenseHandler {
	return &ExpenseHandler{uc: uc}
}

// Create POST /api/expenses
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	var in dto.ExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/expenses?category=&from=YYYY-MM-DD&to=YYYY-MM-DD&limit=&offset=
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	q := dto.ExpenseListQuery{
		Category:    c.Query("category"),
		From:        c.Query("from"),
		To:          c.Query("to"),
		PageRequest: pageQuery(c),
	}
	out, err := h.uc.List(c.UserContext(), GetTenantID(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/expenses/:id
func (h *ExpenseHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/expenses/:id
func (h *ExpenseHandler) Update(c *fiber.Ctx) error {
	var in dto.ExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetTenantID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/expenses/:id
func (h *ExpenseHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetTenantID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadReceipt adjunta el recibo (campo multipart "file") y guarda el texto leído por OCR.
// POST /api/expenses/:id/receipt
func (h *ExpenseHandler) UploadReceipt(c *fiber.Ctx) error {
	name, contentType, data, err := uploadedFile(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "se espera un archivo en el campo 'file'"})
	}
	out, err := h.uc.AttachReceipt(c.UserContext(), GetTenantID(c), GetUserID(c), c.Params("id"), expense.ReceiptInput{
		Filename:    name,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
