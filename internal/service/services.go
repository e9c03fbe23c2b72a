package service

import (
	"github.com/krakosik/demoday/internal/client"
	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/repository"
)

type Services interface {
	Voting() VotingService
	Roster() RosterService
	Results() ResultsService
	Admin() AdminGate
}

type services struct {
	votingService  VotingService
	rosterService  RosterService
	resultsService ResultsService
	adminGate      AdminGate
}

func NewServices(repositories repository.Repositories, config dto.Config, clients client.Clients) Services {
	return &services{
		votingService:  newVotingService(repositories.Startup(), repositories.Ballot(), clients.Bus(), config),
		rosterService:  newRosterService(repositories.Startup(), config),
		resultsService: newResultsService(repositories.Startup(), repositories.Ballot(), clients.Bus(), config),
		adminGate:      newAdminGate(config),
	}
}

func (s services) Voting() VotingService {
	return s.votingService
}

func (s services) Roster() RosterService {
	return s.rosterService
}

func (s services) Results() ResultsService {
	return s.resultsService
}

func (s services) Admin() AdminGate {
	return s.adminGate
}
