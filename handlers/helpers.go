package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/padel-system/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	if err != nil {
		return err
	}

	return nil
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		idStr = chi.URLParam(r, "id")
		if idStr == "" {
			return 0, fmt.Errorf("missing %s or id in URL path", paramName)
		}
	}

	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	return id, nil
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

func notImplementedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusNotImplemented, message)
}

// mapServiceErrorToHTTP translates service layer errors into HTTP responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrCompanyNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrCoupleNotFound),
		errors.Is(err, services.ErrStageNotFound),
		errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrBracketNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrCourtNotFound),
		errors.Is(err, services.ErrCourtLinkNotFound):
		notFoundResponse(w, r)

	case errors.Is(err, services.ErrCompanyEmailTaken),
		errors.Is(err, services.ErrCoupleDuplicatePair),
		errors.Is(err, services.ErrCoupleAlreadyInGroup),
		errors.Is(err, services.ErrStageOrderTaken),
		errors.Is(err, services.ErrBracketTypeTaken),
		errors.Is(err, services.ErrCourtAlreadyLinked),
		errors.Is(err, services.ErrMatchesAlreadyExist),
		errors.Is(err, services.ErrSchedulingConflict):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrCompanyNameRequired),
		errors.Is(err, services.ErrPlayerNameRequired),
		errors.Is(err, services.ErrCoupleNameRequired),
		errors.Is(err, services.ErrCoupleSamePlayer),
		errors.Is(err, services.ErrCourtNameRequired),
		errors.Is(err, services.ErrStageNameRequired),
		errors.Is(err, services.ErrStageInvalidType),
		errors.Is(err, services.ErrStageInvalidOrder),
		errors.Is(err, services.ErrStageTypeMismatch),
		errors.Is(err, services.ErrGroupNameRequired),
		errors.Is(err, services.ErrBracketInvalidType),
		errors.Is(err, services.ErrMatchInvalidWinner),
		errors.Is(err, services.ErrMatchInvalidStatus),
		errors.Is(err, services.ErrAssignInvalidMethod),
		errors.Is(err, services.ErrTournamentNameRequired),
		errors.Is(err, services.ErrTournamentDatesRequired),
		errors.Is(err, services.ErrTournamentInvalidDateRange),
		errors.Is(err, services.ErrTournamentInvalidStatus),
		errors.Is(err, services.ErrTournamentInvalidStatusTransition),
		errors.Is(err, services.ErrMainBracketUndeletable),
		errors.Is(err, services.ErrInsufficientCouples),
		errors.Is(err, services.ErrNoSeedSource),
		errors.Is(err, services.ErrSchedulingDatesRequired),
		errors.Is(err, services.ErrSchedulingInvalidRange),
		errors.Is(err, services.ErrCourtUnavailableAtTime),
		errors.Is(err, services.ErrNoCourtsLinked),
		errors.Is(err, services.ErrPosterInvalidType):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAuthenticationFailed):
		unauthorizedResponse(w, r, err.Error())

	case errors.Is(err, services.ErrForbiddenOperation):
		forbiddenResponse(w, r, err.Error())

	case errors.Is(err, services.ErrNotImplemented):
		notImplementedResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
