package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/cartsync/internal/cart"
	"github.com/noah-isme/cartsync/internal/common"
	"github.com/noah-isme/cartsync/internal/security"
)

// ClickRequest describes a click on one card of the listing. The card is
// addressed by title or by its position in the list.
type ClickRequest struct {
	Title string `json:"title" validate:"required_without=Card,max=200"`
	Card  *int   `json:"card" validate:"omitempty,min=0"`
	Icon  string `json:"icon" validate:"required,max=64"`
	Liked bool   `json:"liked"`
}

// IconClass resolves the icon to a class name. Action names such as
// "increment" map to their icon class; anything else is taken as a class.
func (c ClickRequest) IconClass() string {
	icon := strings.TrimSpace(c.Icon)
	if action := cart.ParseAction(icon); action != cart.ActionNone {
		return cart.IconClass(action)
	}
	return icon
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func decodeClick(r *http.Request) (ClickRequest, error) {
	var req ClickRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if security.IsTooLarge(err) {
			return req, common.NewAppError("PAYLOAD_TOO_LARGE", "request entity too large", http.StatusRequestEntityTooLarge, err)
		}
		if errors.Is(err, io.EOF) {
			return req, common.NewAppError("BAD_REQUEST", "request body is required", http.StatusBadRequest, err)
		}
		return req, common.NewAppError("BAD_REQUEST", "invalid request body", http.StatusBadRequest, err)
	}
	if err := validate.Struct(req); err != nil {
		appErr := common.NewAppError("VALIDATION_ERROR", "invalid click", http.StatusUnprocessableEntity, err)
		appErr.Details = validationDetails(err)
		return req, appErr
	}
	return req, nil
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			out[field] = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
			continue
		}
		out[field] = fe.Tag()
	}
	return out
}
