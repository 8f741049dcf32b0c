package errors

import "errors"

var (
	// ErrPaymentNotFound indicates that no payment matches the given id
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPlanNotFound indicates that no payment plan matches the given id
	ErrPlanNotFound = errors.New("payment plan not found")

	// ErrNotDownPaymentPlan indicates a settlement update on a plan of another kind
	ErrNotDownPaymentPlan = errors.New("settlement status only applies to down payment plans")

	// ErrInvalidDownPaymentStatus indicates an unknown settlement status
	ErrInvalidDownPaymentStatus = errors.New("invalid down payment status")
)
