package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	// Generic resource errors.
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business-rule errors.
	ErrValidationFailed    = errors.New("validation failed")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrCompanyNameRequired = errors.New("company name is required")
	ErrPlayerNameRequired  = errors.New("player first and last name are required")
	ErrCoupleNameRequired  = errors.New("couple name is required")
	ErrCoupleSamePlayer    = errors.New("a couple must consist of two distinct players")
	ErrCourtNameRequired   = errors.New("court name is required")
	ErrStageNameRequired   = errors.New("stage name is required")
	ErrStageInvalidType    = errors.New("invalid stage type provided")
	ErrStageInvalidOrder   = errors.New("stage order must be positive")
	ErrStageTypeMismatch   = errors.New("operation does not apply to this stage type")
	ErrGroupNameRequired   = errors.New("group name is required")
	ErrBracketInvalidType  = errors.New("invalid bracket type provided")
	ErrMatchInvalidWinner  = errors.New("winner must be one of the match couples")
	ErrMatchInvalidStatus  = errors.New("invalid match result status provided")
	ErrAssignInvalidMethod = errors.New("invalid group assignment method provided")

	// Conflict errors.
	ErrCompanyEmailTaken    = errors.New("email address is already in use")
	ErrCoupleDuplicatePair  = errors.New("these players already form a couple in this tournament")
	ErrCoupleAlreadyInGroup = errors.New("couple is already assigned to a group in this stage")
	ErrStageOrderTaken      = errors.New("stage order is already taken in this tournament")
	ErrBracketTypeTaken     = errors.New("bracket of this type already exists in the stage")
	ErrCourtAlreadyLinked   = errors.New("court is already linked to this tournament")
	ErrMatchesAlreadyExist  = errors.New("matches already exist for this stage")
	ErrSchedulingConflict   = errors.New("requested time overlaps an existing match on this court")

	// Authentication and authorization errors.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current company")

	// Entity-specific not-found errors.
	ErrCompanyNotFound    = errors.New("company not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrCoupleNotFound     = errors.New("couple not found")
	ErrStageNotFound      = errors.New("stage not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrBracketNotFound    = errors.New("bracket not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrCourtNotFound      = errors.New("court not found")
	ErrCourtLinkNotFound  = errors.New("court is not linked to this tournament")

	// Tournament lifecycle errors.
	ErrTournamentNameRequired            = errors.New("tournament name is required")
	ErrTournamentDatesRequired           = errors.New("tournament start and end dates are required")
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")

	// Staging and generation errors.
	ErrMainBracketUndeletable = errors.New("the main bracket of a stage cannot be deleted")
	ErrInsufficientCouples    = errors.New("not enough couples to generate matches")
	ErrNoSeedSource           = errors.New("no preceding group stage found to seed the bracket")

	// Scheduling errors.
	ErrSchedulingDatesRequired = errors.New("scheduled start and end times are required")
	ErrSchedulingInvalidRange  = errors.New("scheduled end must be after start")
	ErrCourtUnavailableAtTime  = errors.New("court is not available in the requested time window")
	ErrNoCourtsLinked          = errors.New("tournament has no linked courts")

	// Poster upload errors.
	ErrPosterInvalidType = errors.New("unsupported poster content type")

	// Features declared but not implemented.
	ErrNotImplemented = errors.New("requested option is not implemented")
)
