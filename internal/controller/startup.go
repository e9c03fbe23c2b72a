package controller

import (
	"net/http"

	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/model"
	"github.com/krakosik/demoday/internal/service"
	"github.com/labstack/echo/v4"
)

type StartupController interface {
	List(c echo.Context) error
	Create(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
}

type startupController struct {
	rosterService service.RosterService
}

func newStartupController(rosterService service.RosterService) StartupController {
	return &startupController{
		rosterService: rosterService,
	}
}

func (s *startupController) List(c echo.Context) error {
	startups, err := s.rosterService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	response := make([]dto.StartupResponse, 0, len(startups))
	for _, startup := range startups {
		response = append(response, toStartupResponse(startup))
	}
	return c.JSON(http.StatusOK, response)
}

func (s *startupController) Create(c echo.Context) error {
	var request dto.CreateStartupRequest
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	startup, err := s.rosterService.Create(c.Request().Context(), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toStartupResponse(startup))
}

func (s *startupController) Update(c echo.Context) error {
	var request dto.UpdateStartupRequest
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	startup, err := s.rosterService.Update(c.Request().Context(), c.Param("id"), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toStartupResponse(startup))
}

func (s *startupController) Delete(c echo.Context) error {
	if err := s.rosterService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func toStartupResponse(startup model.Startup) dto.StartupResponse {
	return dto.StartupResponse{
		ID:              startup.ID,
		Name:            startup.Name,
		Website:         startup.Website,
		FounderLinkedIn: startup.FounderLinkedIn,
		DeckURL:         startup.DeckURL,
		CreatedAt:       startup.CreatedAt,
		UpdatedAt:       startup.UpdatedAt,
	}
}
