package aura

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrEmptyResponse marks a reply without any text payload.
	ErrEmptyResponse = errors.New("aura: empty response")
	// ErrMalformedResult marks a reply that does not satisfy the schema.
	ErrMalformedResult = errors.New("aura: malformed result")
)

// ContractKind distinguishes the two ways a reply can break the contract.
type ContractKind int

const (
	EmptyResponse ContractKind = iota + 1
	MalformedResult
)

// ContractError describes why a reply could not be turned into a Result.
type ContractError struct {
	Kind   ContractKind
	Issues []string
}

func (e *ContractError) Error() string {
	switch e.Kind {
	case EmptyResponse:
		return ErrEmptyResponse.Error()
	default:
		if len(e.Issues) == 0 {
			return ErrMalformedResult.Error()
		}
		return fmt.Sprintf("%s: %s", ErrMalformedResult, strings.Join(e.Issues, "; "))
	}
}

func (e *ContractError) Is(target error) bool {
	switch target {
	case ErrEmptyResponse:
		return e.Kind == EmptyResponse
	case ErrMalformedResult:
		return e.Kind == MalformedResult
	}
	return false
}

var (
	schemaLoader     gojsonschema.JSONLoader
	schemaLoaderOnce sync.Once
)

func loadSchema() gojsonschema.JSONLoader {
	schemaLoaderOnce.Do(func() {
		schemaLoader = gojsonschema.NewGoLoader(JSONSchema())
	})
	return schemaLoader
}

// Decode parses the model's text payload, validates it against JSONSchema,
// normalizes it and checks the result invariants.
func Decode(text string) (Result, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Result{}, &ContractError{Kind: EmptyResponse}
	}

	validation, err := gojsonschema.Validate(loadSchema(), gojsonschema.NewStringLoader(raw))
	if err != nil {
		// gojsonschema reports unparsable documents as an error, not a result.
		return Result{}, &ContractError{Kind: MalformedResult, Issues: []string{err.Error()}}
	}
	if !validation.Valid() {
		issues := make([]string, 0, len(validation.Errors()))
		for _, desc := range validation.Errors() {
			issues = append(issues, desc.String())
		}
		return Result{}, &ContractError{Kind: MalformedResult, Issues: issues}
	}

	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Result{}, &ContractError{Kind: MalformedResult, Issues: []string{err.Error()}}
	}

	result = result.Normalize()
	if issues := result.Validate(); len(issues) > 0 {
		return Result{}, &ContractError{Kind: MalformedResult, Issues: issues}
	}
	return result, nil
}
