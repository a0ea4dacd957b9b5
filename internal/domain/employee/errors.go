package employee

import "errors"

var (
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrEmployeeAlreadyExists  = errors.New("employee already exists")
	ErrProfilePictureNotFound = errors.New("profile picture not found")
	ErrInvalidImageType       = errors.New("profile picture must be a PNG image")
)
