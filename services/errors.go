package services

import "errors"

// Shared errors used across services and the HTTP mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrInvalidTimeFormat    = errors.New("invalid time format, expected HH:MM:SS or seconds")
	ErrBackyardNameRequired = errors.New("backyard name is required")
	ErrInvalidCapacity      = errors.New("backyard capacity must be positive")
	ErrInvalidNumeroInicial = errors.New("starting bib number must be positive")
	ErrInvalidStatus        = errors.New("invalid status provided")

	// Loop lifecycle preconditions: rejected synchronously, no state mutated.
	ErrBackyardNotInPreparation = errors.New("backyard has already started or finished")
	ErrBackyardNotActive        = errors.New("backyard is not active")
	ErrNoAthletesRegistered     = errors.New("no athletes registered for this backyard")
	ErrLoopNotActive            = errors.New("loop is not active")
	ErrLoopAlreadyStarted       = errors.New("loop has already been started")
	ErrAthleteNotActive         = errors.New("athlete is not active in this loop")
	ErrInvalidStatusTransition  = errors.New("invalid status transition")

	// Registration
	ErrRegistrationNotOpen      = errors.New("backyard is not accepting registrations")
	ErrRegistrationConflict     = errors.New("athlete is already registered for this backyard")
	ErrBackyardFull             = errors.New("backyard registration is full")
	ErrCancelWhileActive        = errors.New("cannot cancel a registration while the backyard is active")
	ErrRegistrationNotFound     = errors.New("registration not found")

	// Bib allocation. Capacity exhaustion is an outcome, not a hard failure.
	ErrBibCapacityExhausted = errors.New("no bib numbers available within the configured range")

	// Auth
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Entity-specific not-found errors
	ErrBackyardNotFound   = errors.New("backyard not found")
	ErrLoopNotFound       = errors.New("loop not found")
	ErrAtletaLoopNotFound = errors.New("athlete loop record not found")
	ErrAtletaNotFound     = errors.New("athlete not found")
	ErrUserNotFound       = errors.New("user not found")
)
