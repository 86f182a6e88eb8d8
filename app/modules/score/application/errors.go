package scoreservice

import "errors"

var ErrEmptySheet = errors.New("score sheet is empty")
