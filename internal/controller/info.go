package controller

import (
	"net/http"

	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/service"
	"github.com/labstack/echo/v4"
)

const Version = "1.0.0"

type InfoController interface {
	Info(c echo.Context) error
	Health(c echo.Context) error
	Config(c echo.Context) error
}

type infoController struct {
	votingService service.VotingService
}

func newInfoController(votingService service.VotingService) InfoController {
	return &infoController{
		votingService: votingService,
	}
}

func (i *infoController) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.InfoResponse{
		Name:    "demoday",
		Version: Version,
		Status:  "ok",
	})
}

func (i *infoController) Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (i *infoController) Config(c echo.Context) error {
	quota := i.votingService.Quota()
	return c.JSON(http.StatusOK, dto.ConfigResponse{
		DemoDayTarget:      quota.DemoDay,
		PrivatePitchTarget: quota.PrivatePitch,
	})
}
