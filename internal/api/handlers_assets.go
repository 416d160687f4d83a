package api

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/assets"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/config"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/models"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/storyapi"
)

func (s *Server) handleCheckIPAssets(w http.ResponseWriter, r *http.Request) {
	var req assetsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	address, verr := req.address()
	if verr != nil {
		writeError(w, http.StatusBadRequest, *verr)
		return
	}
	network := req.network(config.Testnet)
	if _, ok := s.cfg.Network(network); !ok {
		writeError(w, http.StatusBadRequest, errInvalidNetwork)
		return
	}

	res, err := s.assets.Check(r.Context(), address, network)
	if err != nil {
		s.writeCheckError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeCheckError(w http.ResponseWriter, err error) {
	var se *storyapi.StatusError
	var te *storyapi.TransportError

	switch {
	case errors.Is(err, assets.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, errInvalidAddress)
	case errors.Is(err, assets.ErrUnknownNetwork):
		writeError(w, http.StatusBadRequest, errInvalidNetwork)
	case errors.Is(err, assets.ErrNotConfigured):
		s.log.Error("STORY_API_KEY environment variable not configured")
		writeError(w, http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_config_missing",
			Message: "Server configuration error: STORY_API_KEY not set",
		})
	case errors.Is(err, assets.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, models.ErrorResponse{
			Error:   "timeout",
			Details: assets.TimeoutDetails,
		})
	case errors.As(err, &se):
		writeError(w, se.Status, models.ErrorResponse{
			Error:   "story_api_error",
			Details: se.Message,
			Status:  se.Status,
		})
	case errors.As(err, &te):
		details := te.Err.Error()
		if details == "" {
			details = "Unable to connect to Story API"
		}
		writeError(w, http.StatusInternalServerError, models.ErrorResponse{
			Error:   "network_error",
			Details: details,
		})
	default:
		s.log.Error("check IP assets failed", zap.Error(err))
		details := "An unexpected error occurred"
		if !s.cfg.IsProduction() {
			details = fmt.Sprintf("%+v", err)
		}
		writeError(w, http.StatusInternalServerError, models.ErrorResponse{
			Error:   err.Error(),
			Details: details,
		})
	}
}
