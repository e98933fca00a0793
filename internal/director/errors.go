package director

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure kinds. Every failed run wraps exactly one of these.
var (
	ErrContentUnavailable  = errors.New("post content unavailable")
	ErrNoPersonasAvailable = errors.New("no active personas for language")
	ErrGateway             = errors.New("model gateway failed")
	ErrParse               = errors.New("model response could not be parsed")
	ErrPersonaNotFound     = errors.New("selected persona not found")
	ErrPersistence         = errors.New("comment persistence failed")
)

// Stage names the pipeline step that failed
type Stage string

const (
	StageLoadThread    Stage = "load_thread"
	StageFetchContent  Stage = "fetch_content"
	StageListPersonas  Stage = "list_personas"
	StageGenerate      Stage = "generate"
	StageParse         Stage = "parse"
	StageSelectPersona Stage = "select_persona"
	StagePersist       Stage = "persist"
)

// Failure is the single error a director run surfaces to its caller
type Failure struct {
	Kind  error
	Stage Stage
	Cause error
}

func newFailure(kind error, stage Stage, cause error) *Failure {
	return &Failure{Kind: kind, Stage: stage, Cause: cause}
}

func (f *Failure) Error() string {
	if f.Cause == nil {
		return fmt.Sprintf("director %s: %v", f.Stage, f.Kind)
	}
	return fmt.Sprintf("director %s: %v: %v", f.Stage, f.Kind, f.Cause)
}

func (f *Failure) Unwrap() []error {
	if f.Cause == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Cause}
}

// Code returns the machine readable failure code used in API responses
func (f *Failure) Code() string {
	switch {
	case errors.Is(f.Kind, ErrContentUnavailable):
		return "CONTENT_UNAVAILABLE"
	case errors.Is(f.Kind, ErrNoPersonasAvailable):
		return "NO_PERSONAS_AVAILABLE"
	case errors.Is(f.Kind, ErrGateway):
		return "GATEWAY_ERROR"
	case errors.Is(f.Kind, ErrParse):
		return "PARSE_ERROR"
	case errors.Is(f.Kind, ErrPersonaNotFound):
		return "PERSONA_NOT_FOUND"
	default:
		return "PERSISTENCE_ERROR"
	}
}

// HTTPStatus maps the failure kind to a response status for manual triggers
func (f *Failure) HTTPStatus() int {
	switch {
	case errors.Is(f.Kind, ErrNoPersonasAvailable):
		return http.StatusUnprocessableEntity
	case errors.Is(f.Kind, ErrContentUnavailable), errors.Is(f.Kind, ErrGateway),
		errors.Is(f.Kind, ErrParse), errors.Is(f.Kind, ErrPersonaNotFound):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
