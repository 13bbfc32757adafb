package service

import (
	"errors"

	"auroramall/internal/constants"
)

// 业务错误，API层据此映射响应码
var (
	ErrUnauthorized          = errors.New(constants.ErrInsufficientPermission)
	ErrInvalidInput          = errors.New(constants.ErrInvalidParams)
	ErrOrderNotFound         = errors.New(constants.ErrOrderNotFound)
	ErrPaymentNotFound       = errors.New(constants.ErrPaymentNotFound)
	ErrInvalidTransition     = errors.New(constants.ErrInvalidTransition)
	ErrStatusChanged         = errors.New(constants.ErrStatusChanged)
	ErrOrderNotPayable       = errors.New(constants.ErrOrderNotPayable)
	ErrAlreadyPaid           = errors.New(constants.ErrAlreadyPaid)
	ErrPaymentNotConfirmable = errors.New(constants.ErrPaymentNotConfirmable)
	ErrPaymentNotCancellable = errors.New(constants.ErrPaymentNotCancellable)
	ErrUnsupportedChannel    = errors.New(constants.ErrUnsupportedChannel)
	ErrMalformedCallback     = errors.New(constants.ErrMalformedCallback)
	ErrNoOrdersCreated       = errors.New(constants.ErrNoOrdersCreated)
	ErrAlreadySubscribed     = errors.New(constants.ErrAlreadySubscribed)
	ErrMissingShipmentInfo   = errors.New(constants.ErrMissingShipmentInfo)
	ErrRefundNotAllowed      = errors.New(constants.ErrRefundNotAllowed)
)
