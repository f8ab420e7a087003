// Package handler implements the JSON HTTP API.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/hearth-app/hearth/internal/store"
)

// validate is shared by every handler; request structs carry the rules.
var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeValid decodes the request body and runs struct validation.
// Returns false after writing the error response.
func decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage turns the first violated rule into a readable error.
func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "invalid request"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " exceeds maximum of " + fe.Param()
	case "min":
		return fe.Field() + " is below minimum of " + fe.Param()
	case "email":
		return fe.Field() + " must be a valid email"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// categoryInHousehold verifies a target category belongs to the
// caller's household. Writes the error response on failure.
func categoryInHousehold(w http.ResponseWriter, logger *slog.Logger, categories *store.CategoryStore, categoryID, householdID int64) bool {
	cat, err := categories.GetByID(categoryID)
	if err != nil {
		logger.Error("get category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check category")
		return false
	}
	if cat == nil || cat.HouseholdID != householdID {
		writeError(w, http.StatusBadRequest, "category not found")
		return false
	}
	return true
}
