package controller

import (
	"net/http"

	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/service"
	"github.com/labstack/echo/v4"
)

type BallotController interface {
	Submit(c echo.Context) error
}

type ballotController struct {
	votingService service.VotingService
}

func newBallotController(votingService service.VotingService) BallotController {
	return &ballotController{
		votingService: votingService,
	}
}

func (b *ballotController) Submit(c echo.Context) error {
	var request dto.SubmitBallotRequest
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	receipt, err := b.votingService.SubmitBallot(c.Request().Context(), request.VoterName, request.Selections)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toSubmitResponse(receipt))
}
