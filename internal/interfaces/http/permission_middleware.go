package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Facturo-api/internal/application/dto"
)

// PermissionChecker es el contrato mínimo que necesita el middleware para evaluar permisos.
// Lo implementa *authz.Enforcer.
type PermissionChecker interface {
	Allowed(role, object, action string) (bool, error)
}

// RequirePermission verifica que el rol del token pueda ejecutar action sobre object.
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 si el token no trae rol.
//   - 403 si la política no lo permite.
//   - 503 si el motor de políticas falla.
func RequirePermission(checker PermissionChecker, object, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "MISSING_ROLE",
				Message: "el token no incluye rol",
			})
		}

		ok, err := checker.Allowed(role, object, action)
		if err != nil {
			log.Error().Err(err).Str("role", role).Str("object", object).Str("action", action).
				Msg("evaluar permiso")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "PERMISSION_CHECK_FAILED",
				Message: "no se pudo verificar el permiso, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "sin permiso para '" + action + "' sobre '" + object + "'",
			})
		}
		return c.Next()
	}
}
