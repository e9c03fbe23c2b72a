package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/service"
	"github.com/krakosik/demoday/internal/tally"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ResultsController interface {
	Results(c echo.Context) error
	Stream(c echo.Context) error
}

type resultsController struct {
	resultsService service.ResultsService
}

func newResultsController(resultsService service.ResultsService) ResultsController {
	return &resultsController{
		resultsService: resultsService,
	}
}

func (r *resultsController) Results(c echo.Context) error {
	results, err := r.resultsService.Results(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toResultsResponse(results))
}

// Stream pushes a "results" server-sent event with the full tally whenever
// it changes, until the client goes away.
func (r *resultsController) Stream(c echo.Context) error {
	stream, err := r.resultsService.Stream(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	for results := range stream {
		payload, err := json.Marshal(toResultsResponse(results))
		if err != nil {
			logrus.Errorf("Error marshaling results: %v", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "event: results\ndata: %s\n\n", payload); err != nil {
			logrus.Infof("Results stream closed: %v", err)
			break
		}
		w.Flush()
	}
	// Drain so the producer can exit once the request context is done.
	for range stream {
	}
	return nil
}

func toResultsResponse(results tally.Results) dto.ResultsResponse {
	return dto.ResultsResponse{
		DemoDay:      toRankingEntries(results.DemoDay),
		PrivatePitch: toRankingEntries(results.PrivatePitch),
		BallotCount:  results.BallotCount,
		ComputedAt:   results.ComputedAt,
	}
}

func toRankingEntries(entries []tally.Entry) []dto.RankingEntry {
	out := make([]dto.RankingEntry, 0, len(entries))
	for _, e := range entries {
		voters := e.Voters
		if voters == nil {
			voters = []string{}
		}
		out = append(out, dto.RankingEntry{
			Rank:        e.Rank,
			StartupID:   e.StartupID,
			StartupName: e.StartupName,
			OnRoster:    e.OnRoster,
			Count:       e.Count,
			Voters:      voters,
		})
	}
	return out
}
