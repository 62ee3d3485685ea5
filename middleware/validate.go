package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/C-S-V-S-Subrahmanyam/landledger/utils"
)

var validate = validator.New()

// DecodeAndValidate decodes the request body into dst, rejecting unknown
// fields, then runs struct validation. On failure it writes the 400 response
// itself and returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		msg := "Validation failed"
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			msg = "Validation failed for: " + strings.Join(fields, ", ")
		}
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: msg})
		return false
	}
	return true
}
