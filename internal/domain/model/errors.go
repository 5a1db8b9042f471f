package domain

import "errors"

var ErrNotFound = errors.New("not found")

var ErrAlreadyExists = errors.New("todo already exists")
