package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/educoach-ai/educoach/internal/coach"
)

type rootResponse struct {
	Message     string            `json:"message"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

type passageResponse struct {
	Passage   string   `json:"passage"`
	Questions []string `json:"questions"`
}

type evaluateRequest struct {
	Answers []string `json:"answers"`
}

func (s *Server) handleRoot(c echo.Context) error {
	svc := s.content.Service()
	endpoints := make(map[string]string, len(svc.Endpoints))
	for _, ep := range svc.Endpoints {
		endpoints[ep.Name] = ep.Route
	}
	return c.JSON(http.StatusOK, rootResponse{
		Message:     svc.Message,
		Version:     s.version,
		Description: svc.Description,
		Endpoints:   endpoints,
	})
}

func (s *Server) handlePassage(c echo.Context) error {
	return c.JSON(http.StatusOK, passageResponse{
		Passage:   s.content.Passage(),
		Questions: s.content.Questions(),
	})
}

func (s *Server) handleEvaluate(c echo.Context) error {
	var req evaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, s.content.Messages().InvalidBody)
	}

	report, err := s.coach.Assess(c.Request().Context(), req.Answers)
	if err != nil {
		var inErr *coach.InputError
		if errors.As(err, &inErr) {
			return echo.NewHTTPError(http.StatusBadRequest, inErr.Message)
		}
		return echo.NewHTTPError(http.StatusInternalServerError,
			fmt.Sprintf("%s: %v", s.content.Messages().InternalError, err)).SetInternal(err)
	}

	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "healthy"})
}
