package controller

import (
	"net/http"

	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/service"
	"github.com/labstack/echo/v4"
)

type AdminController interface {
	Unlock(c echo.Context) error
}

type adminController struct {
	adminGate service.AdminGate
}

func newAdminController(adminGate service.AdminGate) AdminController {
	return &adminController{
		adminGate: adminGate,
	}
}

// Unlock lets a client check the admin secret for an action before showing
// the admin screens.
func (a *adminController) Unlock(c echo.Context) error {
	var request dto.UnlockRequest
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	action, err := service.ParseAction(request.Action)
	if err != nil {
		return respondError(c, err)
	}

	decision := a.adminGate.Authorize(c.Request().Header.Get(AdminSecretHeader), action)
	response := dto.UnlockResponse{
		Action:  string(action),
		Granted: decision.Granted,
		Reason:  decision.Reason,
	}
	if !decision.Granted {
		return c.JSON(http.StatusUnauthorized, response)
	}
	return c.JSON(http.StatusOK, response)
}
