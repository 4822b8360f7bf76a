package mica

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// entityValidator reports field paths by wire name.
func entityValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return datasetAliases.wireName(name)
		})
		validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
			return v.Interface().(Content).Present()
		}, Content{})
		validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
			return time.Time(v.Interface().(Timestamp))
		}, Timestamp{})
	})
	return validate
}

func validateEntity(entity string, v any) error {
	err := entityValidator().Struct(v)
	if err == nil {
		return nil
	}
	return schemaError(entity, datasetAliases, err)
}

// schemaError turns decoder and validator failures into a
// SchemaValidationError naming the offending wire path.
func schemaError(entity string, aliases aliasTable, err error) error {
	var (
		fe     *fieldError
		te     *json.UnmarshalTypeError
		se     *json.SyntaxError
		verrs  validator.ValidationErrors
		schema *SchemaValidationError
	)
	switch {
	case errors.As(err, &schema):
		return schema
	case errors.As(err, &fe):
		return &SchemaValidationError{Entity: entity, Path: aliases.wirePath(fe.Path), Reason: fe.Err.Error()}
	case errors.As(err, &te):
		return &SchemaValidationError{
			Entity: entity,
			Path:   aliases.wirePath(te.Field),
			Reason: fmt.Sprintf("expected %s, got %s", te.Type, te.Value),
		}
	case errors.As(err, &se):
		return &SchemaValidationError{Entity: entity, Reason: fmt.Sprintf("malformed JSON at offset %d: %v", se.Offset, se)}
	case errors.As(err, &verrs) && len(verrs) > 0:
		first := verrs[0]
		return &SchemaValidationError{Entity: entity, Path: fieldPath(first.Namespace()), Reason: reason(first)}
	default:
		return &SchemaValidationError{Entity: entity, Reason: err.Error()}
	}
}

// fieldPath drops the leading struct name the validator puts in namespaces.
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field is missing"
	case "url":
		return "must be a URL"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
