package parse

import "errors"

var errMissingPackage = errors.New("paragraph has no Package field")
