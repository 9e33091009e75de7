package service

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrInvalidPositionInput = errors.New("shares and price must be positive")
	ErrInvalidCashAmount    = errors.New("amount must be positive")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrSymbolNotResolvable  = errors.New("symbol can't be resolved")
)
