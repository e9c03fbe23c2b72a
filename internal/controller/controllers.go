package controller

import (
	"github.com/krakosik/demoday/internal/service"
	"github.com/labstack/echo/v4"
)

type Controllers interface {
	Info() InfoController
	Startup() StartupController
	Session() SessionController
	Ballot() BallotController
	Results() ResultsController
	Admin() AdminController

	Route(e *echo.Echo)
}

type controllers struct {
	infoController    InfoController
	startupController StartupController
	sessionController SessionController
	ballotController  BallotController
	resultsController ResultsController
	adminController   AdminController
	adminGate         service.AdminGate
}

func NewControllers(services service.Services) Controllers {
	return &controllers{
		infoController:    newInfoController(services.Voting()),
		startupController: newStartupController(services.Roster()),
		sessionController: newSessionController(services.Voting()),
		ballotController:  newBallotController(services.Voting()),
		resultsController: newResultsController(services.Results()),
		adminController:   newAdminController(services.Admin()),
		adminGate:         services.Admin(),
	}
}

func (c controllers) Info() InfoController {
	return c.infoController
}

func (c controllers) Startup() StartupController {
	return c.startupController
}

func (c controllers) Session() SessionController {
	return c.sessionController
}

func (c controllers) Ballot() BallotController {
	return c.ballotController
}

func (c controllers) Results() ResultsController {
	return c.resultsController
}

func (c controllers) Admin() AdminController {
	return c.adminController
}

func (c controllers) Route(e *echo.Echo) {
	e.GET("/", c.infoController.Info)
	e.GET("/health", c.infoController.Health)

	viewResults := RequireAdmin(c.adminGate, service.ActionViewResults)
	editRoster := RequireAdmin(c.adminGate, service.ActionEditRoster)

	api := e.Group("/api")
	api.GET("/config", c.infoController.Config)

	api.GET("/startups", c.startupController.List)
	api.POST("/startups", c.startupController.Create, editRoster)
	api.PUT("/startups/:id", c.startupController.Update, editRoster)
	api.DELETE("/startups/:id", c.startupController.Delete, editRoster)

	api.POST("/sessions", c.sessionController.Start)
	api.GET("/sessions/:id", c.sessionController.Get)
	api.POST("/sessions/:id/selections", c.sessionController.Select)
	api.POST("/sessions/:id/submit", c.sessionController.Submit)

	api.POST("/ballots", c.ballotController.Submit)

	api.POST("/admin/unlock", c.adminController.Unlock)
	api.GET("/results", c.resultsController.Results, viewResults)
	api.GET("/results/stream", c.resultsController.Stream, viewResults)
}
