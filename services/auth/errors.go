package auth

import "errors"

var (
	ErrMissingFields              = errors.New("all fields are required")
	ErrInvalidEmailDomain         = errors.New("email domain is not allowed")
	ErrWeakPassword               = errors.New("password does not meet the policy")
	ErrInvalidOrExpiredCode       = errors.New("invalid or expired verification code")
	ErrEmailAlreadyRegistered     = errors.New("email already registered")
	ErrInvalidCredentials         = errors.New("invalid email or password")
	ErrStoreUnavailable           = errors.New("store unavailable")
	ErrBillingProvisioningFailed  = errors.New("billing provisioning failed")
	ErrNotificationDeliveryFailed = errors.New("notification delivery failed")
	ErrUnauthenticated            = errors.New("authentication required")
	ErrAccountNotFound            = errors.New("account not found")
)
