package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/models"
)

const maxBodyBytes = 64 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.NewBadRequestError("request body is empty")
		}
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return validateRequest(dst)
}

// validateRequest turns the first failed constraint into a validation error.
func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.NewValidationError(fe.Field(), validationTagMessage(fe))
	}
	return errors.NewBadRequestError(err.Error())
}

func validationTagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// itemKey reads the learner and item identity from the route.
func itemKey(r *http.Request) models.ItemKey {
	return models.ItemKey{
		UserID:   chi.URLParam(r, "userID"),
		Language: chi.URLParam(r, "lang"),
		ItemID:   chi.URLParam(r, "itemID"),
	}
}

// optionalInt parses an integer query parameter. It returns nil when the
// parameter is absent.
func optionalInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.NewBadRequestError(fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return &n, nil
}

// optionalBool parses a boolean query parameter, false when absent.
func optionalBool(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewBadRequestError(fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return b, nil
}

// splitList splits a comma separated query value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseItemTypes reads ?types=vocabulary,kanji.
func parseItemTypes(raw string) ([]models.ItemType, error) {
	var types []models.ItemType
	for _, part := range splitList(raw) {
		t := models.ItemType(strings.ToLower(part))
		if !t.Valid() {
			return nil, errors.NewValidationError("types", "unknown item type "+part)
		}
		types = append(types, t)
	}
	return types, nil
}

// parseCandidates reads ?new=vocabulary:taberu,kanji:水 into unscheduled items.
func parseCandidates(raw string) ([]models.ReviewableItem, error) {
	var out []models.ReviewableItem
	for _, part := range splitList(raw) {
		typ, id, ok := strings.Cut(part, ":")
		if !ok || id == "" {
			return nil, errors.NewValidationError("new", fmt.Sprintf("expected type:id, got %q", part))
		}
		t := models.ItemType(strings.ToLower(typ))
		if !t.Valid() {
			return nil, errors.NewValidationError("new", "unknown item type "+typ)
		}
		out = append(out, models.ReviewableItem{ItemID: id, ItemType: t})
	}
	return out, nil
}
