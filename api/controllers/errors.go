package controllers

import "errors"

var errNoPinger = errors.New("dependency not configured")
