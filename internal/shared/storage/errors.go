package storage

import "errors"

var ErrNotFound = errors.New("storage: object not found")
