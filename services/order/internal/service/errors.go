package service

import "errors"

var ErrSearchDisabled = errors.New("order search is not configured") // 503
