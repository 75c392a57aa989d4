package models

import "errors"

var (
	ErrInvalidUser       = errors.New("provided user is empty or has an unknown role")
	ErrForbidden         = errors.New("provided user does not have permission for this operation")
	ErrNoDemand          = errors.New("requested demand does not exist")
	ErrDemandFinalized   = errors.New("demand is already approved or rejected")
	ErrDemandNotApproved = errors.New("demand has not passed the approval chain yet")
	ErrNoTender          = errors.New("requested tender does not exist")
	ErrTenderNotOpen     = errors.New("tender is not open for orders")
	ErrNoOrder           = errors.New("requested order does not exist")
	ErrOrderFinalized    = errors.New("order is already approved or rejected")
	ErrTenderAwarded     = errors.New("tender already has an approved order")
)
