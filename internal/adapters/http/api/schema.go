package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JayantA-10/AI-Stress-System/internal/domain/model"
	"github.com/xeipuuv/gojsonschema"
)

const maxBodyBytes = 1 << 20

// Schemas check structure and JSON types only. Value ranges are domain rules
// and are reported as 422, including integers the decoder cannot represent.
const subjectSchemaJSON = `{
  "type": "object",
  "required": ["id"],
  "additionalProperties": false,
  "properties": {
    "id": {"type": "string", "minLength": 1, "maxLength": 128},
    "display_name": {"type": "string", "maxLength": 256}
  }
}`

const checkinSchemaJSON = `{
  "type": "object",
  "required": ["subject_id", "features"],
  "additionalProperties": false,
  "properties": {
    "subject_id": {"type": "string", "minLength": 1},
    "submission_id": {"type": "string", "maxLength": 128},
    "features": {
      "type": "object",
      "required": ["study_hours", "sleep_hours", "mood_level", "assignment_pressure", "study_consistency", "performance_trend"],
      "additionalProperties": false,
      "properties": {
        "study_hours": {"type": "number"},
        "sleep_hours": {"type": "number"},
        "mood_level": {"type": "integer"},
        "assignment_pressure": {"type": "integer"},
        "study_consistency": {"type": "integer"},
        "performance_trend": {"type": "integer"}
      }
    }
  }
}`

var (
	subjectSchema = mustSchema(subjectSchemaJSON)
	checkinSchema = mustSchema(checkinSchemaJSON)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile request schema: %v", err))
	}
	return s
}

// decodeValidated reads the body, validates it against schema and decodes it
// into dst.
func decodeValidated(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrBadRequest, err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: malformed json: %w", ErrBadRequest, err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		if fe := featureTypeError(err); fe != nil {
			return fe
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

// featureTypeError turns a feature the schema accepted as an integer but
// the decoder could not fit (5.0, 1e20) into a domain violation.
func featureTypeError(err error) error {
	var te *json.UnmarshalTypeError
	if !errors.As(err, &te) {
		return nil
	}
	field, ok := strings.CutPrefix(te.Field, "features.")
	if !ok {
		return nil
	}
	return &model.InvalidFeatureError{Field: field, Value: te.Value, Reason: "must be a whole number within range"}
}
