package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	maxTitleLen       = 500
	maxDescriptionLen = 1000
)

// createTodoRequest is the create payload. Pointer fields distinguish
// "absent" from zero values so defaults and required checks stay structural.
type createTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type updateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// decodeStrict unmarshals the body into dst, rejecting unknown fields and
// type mismatches. It returns human-readable messages, or nil when the body
// parsed cleanly.
func decodeStrict(body io.Reader, dst any) []string {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			return []string{fmt.Sprintf("%s must be a %s", typeErr.Field, friendlyType(typeErr.Type.String()))}
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return []string{fmt.Sprintf("unrecognized field %q", field)}
		default:
			return []string{"request body must be valid JSON"}
		}
	}

	// trailing garbage after the object
	if dec.More() {
		return []string{"request body must be a single JSON object"}
	}

	return nil
}

func friendlyType(goType string) string {
	switch goType {
	case "string", "*string":
		return "string"
	case "bool", "*bool":
		return "boolean"
	default:
		return goType
	}
}

func (r *createTodoRequest) validate() []string {
	var errs []string

	if r.Title == nil || *r.Title == "" {
		errs = append(errs, "Title is required")
	} else if len(*r.Title) > maxTitleLen {
		errs = append(errs, fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	if r.Description != nil && len(*r.Description) > maxDescriptionLen {
		errs = append(errs, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}

	return errs
}

func (r *updateTodoRequest) validate() []string {
	var errs []string

	if r.Title != nil && *r.Title == "" {
		errs = append(errs, "title must not be empty")
	}
	if r.Title != nil && len(*r.Title) > maxTitleLen {
		errs = append(errs, fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	if r.Description != nil && len(*r.Description) > maxDescriptionLen {
		errs = append(errs, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}

	return errs
}
