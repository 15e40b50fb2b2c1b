package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturo-api/internal/application/auth"
	"github.com/jhoicas/Facturo-api/internal/application/billing"
	"github.com/jhoicas/Facturo-api/internal/application/expense"
	"github.com/jhoicas/Facturo-api/internal/application/storage"
	"github.com/jhoicas/Facturo-api/internal/application/usecase"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/infrastructure/authz"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	TenantUC    *usecase.TenantUseCase
	CustomerUC  *billing.CustomerUseCase
	ProductUC   *usecase.ProductUseCase
	InvoiceUC   *billing.InvoiceUseCase
	InvoicePDF  *billing.PDFUseCase
	ExportUC    *billing.ExportUseCase
	ExpenseUC   *expense.UseCase
	FileUC      *storage.FileUseCase
	Permissions PermissionChecker
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	authMw := AuthMiddleware(deps.JWTSecret)
	perm := func(object, action string) fiber.Handler {
		return RequirePermission(deps.Permissions, object, action)
	}
	// Cada grupo lleva su propio middleware para no interceptar las rutas públicas.
	scoped := func(prefix string) fiber.Router {
		return api.Group(prefix, authMw, RequireTenant())
	}

	// Auth (público salvo /me)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/signup", authHandler.Signup)
	api.Post("/auth/login", authHandler.Login)
	api.Get("/auth/me", authMw, authHandler.Me)

	// Super admin
	tenantHandler := NewTenantHandler(deps.TenantUC)
	admin := api.Group("/admin", authMw, RequireRole(entity.RoleSuperAdmin))
	admin.Get("/tenants", perm(authz.ObjectAdmin, authz.ActionView), tenantHandler.ListTenants)

	// Tenant
	tenant := scoped("/tenant")
	tenant.Get("/", perm(authz.ObjectTenant, authz.ActionView), tenantHandler.Get)
	tenant.Put("/", perm(authz.ObjectTenant, authz.ActionUpdate), tenantHandler.Update)
	tenant.Get("/settings", perm(authz.ObjectTenant, authz.ActionView), tenantHandler.GetSettings)
	tenant.Put("/settings", perm(authz.ObjectTenant, authz.ActionUpdate), tenantHandler.UpdateSettings)
	tenant.Put("/subscription", perm(authz.ObjectTenant, authz.ActionUpdate), tenantHandler.UpdateSubscription)

	// Customers
	customers := scoped("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", perm(authz.ObjectCustomer, authz.ActionCreate), customerHandler.Create)
	customers.Get("/", perm(authz.ObjectCustomer, authz.ActionView), customerHandler.List)
	customers.Get("/:id", perm(authz.ObjectCustomer, authz.ActionView), customerHandler.GetByID)
	customers.Put("/:id", perm(authz.ObjectCustomer, authz.ActionUpdate), customerHandler.Update)
	customers.Delete("/:id", perm(authz.ObjectCustomer, authz.ActionDelete), customerHandler.Delete)

	// Products
	products := scoped("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", perm(authz.ObjectProduct, authz.ActionCreate), productHandler.Create)
	products.Get("/", perm(authz.ObjectProduct, authz.ActionView), productHandler.List)
	products.Get("/:id", perm(authz.ObjectProduct, authz.ActionView), productHandler.GetByID)
	products.Put("/:id", perm(authz.ObjectProduct, authz.ActionUpdate), productHandler.Update)
	products.Delete("/:id", perm(authz.ObjectProduct, authz.ActionDelete), productHandler.Delete)

	// Invoices
	invoices := scoped("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDF, deps.ExportUC)
	invoices.Post("/", perm(authz.ObjectInvoice, authz.ActionCreate), invoiceHandler.Create)
	invoices.Get("/", perm(authz.ObjectInvoice, authz.ActionView), invoiceHandler.List)
	invoices.Get("/:id", perm(authz.ObjectInvoice, authz.ActionView), invoiceHandler.GetByID)
	invoices.Put("/:id", perm(authz.ObjectInvoice, authz.ActionUpdate), invoiceHandler.Update)
	invoices.Delete("/:id", perm(authz.ObjectInvoice, authz.ActionDelete), invoiceHandler.Delete)
	invoices.Post("/:id/send", perm(authz.ObjectInvoice, authz.ActionSend), invoiceHandler.Send)
	invoices.Post("/:id/pay", perm(authz.ObjectInvoice, authz.ActionPay), invoiceHandler.Pay)
	invoices.Post("/:id/cancel", perm(authz.ObjectInvoice, authz.ActionCancel), invoiceHandler.Cancel)
	invoices.Get("/:id/pdf", perm(authz.ObjectInvoice, authz.ActionPDF), invoiceHandler.PDF)
	invoices.Post("/:id/export", perm(authz.ObjectInvoice, authz.ActionExport), invoiceHandler.Export)

	// Expenses
	expenses := scoped("/expenses")
	expenseHandler := NewExpenseHandler(deps.ExpenseUC)
	expenses.Post("/", perm(authz.ObjectExpense, authz.ActionCreate), expenseHandler.Create)
	expenses.Get("/", perm(authz.ObjectExpense, authz.ActionView), expenseHandler.List)
	expenses.Get("/:id", perm(authz.ObjectExpense, authz.ActionView), expenseHandler.GetByID)
	expenses.Put("/:id", perm(authz.ObjectExpense, authz.ActionUpdate), expenseHandler.Update)
	expenses.Delete("/:id", perm(authz.ObjectExpense, authz.ActionDelete), expenseHandler.Delete)
	expenses.Post("/:id/receipt", perm(authz.ObjectExpense, authz.ActionUpdate), expenseHandler.UploadReceipt)

	// Files
	files := scoped("/files")
	fileHandler := NewFileHandler(deps.FileUC)
	files.Post("/:bucket", perm(authz.ObjectFile, authz.ActionCreate), fileHandler.Upload)
	files.Get("/:id", perm(authz.ObjectFile, authz.ActionView), fileHandler.Get)
	files.Get("/:id/download", perm(authz.ObjectFile, authz.ActionView), fileHandler.Download)
	files.Delete("/:id", perm(authz.ObjectFile, authz.ActionDelete), fileHandler.Delete)
}
