package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/assets"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/chain"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/models"
)

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	address, verr := validateAddress(mux.Vars(r)["address"])
	if verr != nil {
		writeError(w, http.StatusBadRequest, *verr)
		return
	}

	label := strings.TrimSpace(r.URL.Query().Get("network"))
	if label == "" {
		label = s.cfg.DefaultNetwork
	}
	network, ok := s.cfg.Network(label)
	if !ok {
		writeError(w, http.StatusBadRequest, errInvalidNetwork)
		return
	}

	wei, err := s.balances.Balance(r.Context(), network.Label, address)
	if err != nil {
		s.log.Warn("balance lookup failed",
			zap.String("network", network.Label), zap.String("address", address), zap.Error(err))
		writeError(w, http.StatusBadGateway, models.ErrorResponse{
			Error:   "rpc_error",
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, models.Balance{
		OK:       true,
		Address:  address,
		Network:  network.Label,
		Balance:  chain.FormatEther(wei),
		Currency: network.Currency,
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
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

	p, err := s.portfolio.Fetch(r.Context(), address)
	if err != nil {
		if errors.Is(err, assets.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, errInvalidAddress)
			return
		}
		s.log.Error("portfolio fetch failed", zap.String("address", address), zap.Error(err))
		writeError(w, http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}
