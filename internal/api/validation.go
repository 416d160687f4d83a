package api

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/assets"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("wallet_address", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return assets.ValidAddress(s) && common.IsHexAddress(s)
	})
	return v
}

type walletRequest struct {
	Address string `validate:"required,wallet_address"`
}

var (
	errAddressRequired = models.ErrorResponse{Error: "address_required", Message: "Address is required"}
	errInvalidAddress  = models.ErrorResponse{Error: "invalid_address", Message: "Invalid Ethereum address format"}
	errInvalidBody     = models.ErrorResponse{Error: "invalid_body", Message: "Request body must be a JSON object"}
	errInvalidNetwork  = models.ErrorResponse{Error: "invalid_network", Message: "Unknown network"}
)

// validateAddress returns the trimmed address, or the error envelope to send.
func validateAddress(raw string) (string, *models.ErrorResponse) {
	req := walletRequest{Address: strings.TrimSpace(raw)}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" && raw == "" {
			return "", &errAddressRequired
		}
		return "", &errInvalidAddress
	}
	return req.Address, nil
}

// assetsRequest is decoded loosely so a non-string address is reported as
// missing rather than as a malformed body.
type assetsRequest struct {
	Address interface{} `json:"address"`
	Network interface{} `json:"network"`
}

func (r assetsRequest) address() (string, *models.ErrorResponse) {
	s, ok := r.Address.(string)
	if !ok || s == "" {
		return "", &errAddressRequired
	}
	return validateAddress(s)
}

// network returns the requested label, def when it is omitted, or "" when it
// is present but not a string.
func (r assetsRequest) network(def string) string {
	switch v := r.Network.(type) {
	case nil:
		return def
	case string:
		if v == "" {
			return def
		}
		return strings.TrimSpace(v)
	}
	return ""
}
