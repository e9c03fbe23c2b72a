package controller

import (
	"net/http"

	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/service"
	"github.com/labstack/echo/v4"
)

type SessionController interface {
	Start(c echo.Context) error
	Get(c echo.Context) error
	Select(c echo.Context) error
	Submit(c echo.Context) error
}

type sessionController struct {
	votingService service.VotingService
}

func newSessionController(votingService service.VotingService) SessionController {
	return &sessionController{
		votingService: votingService,
	}
}

func (s *sessionController) Start(c echo.Context) error {
	var request dto.StartSessionRequest
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	session, err := s.votingService.Start(c.Request().Context(), request.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toSessionResponse(session))
}

func (s *sessionController) Get(c echo.Context) error {
	session, err := s.votingService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

func (s *sessionController) Select(c echo.Context) error {
	var request dto.SelectRequest
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if request.StartupID == "" {
		return badRequest(c, "startup_id is required")
	}
	session, err := s.votingService.Select(c.Request().Context(), c.Param("id"), request.StartupID, request.Category)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

func (s *sessionController) Submit(c echo.Context) error {
	receipt, err := s.votingService.Submit(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toSubmitResponse(receipt))
}

func toSessionResponse(session service.Session) dto.SessionResponse {
	selections := make(map[string]string, len(session.Selections))
	for id, category := range session.Selections {
		selections[id] = string(category)
	}
	return dto.SessionResponse{
		ID:                 session.ID,
		VoterName:          session.VoterName,
		Status:             string(session.Status),
		DemoDayCount:       session.DemoDay,
		PrivatePitchCount:  session.Private,
		DemoDayTarget:      session.Quota.DemoDay,
		PrivatePitchTarget: session.Quota.PrivatePitch,
		Submittable:        session.Submittable,
		Selections:         selections,
	}
}

func toSubmitResponse(receipt service.Receipt) dto.SubmitBallotResponse {
	return dto.SubmitBallotResponse{
		BallotID:  receipt.BallotID,
		VoterName: receipt.VoterName,
		Timestamp: receipt.Timestamp,
		Message:   "Thank you for voting!",
	}
}
