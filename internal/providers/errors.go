package providers

import "errors"

var ErrInvalidInput = errors.New("invalid provider input")
