package hcladapter

import "errors"

var (
	errNotAList    = errors.New("value must be a list")
	errRaggedGrid  = errors.New("grid rows must all be lists")
	errBadGridCell = errors.New("grid cells must be figure names or null")
	errBadFigSize  = errors.New("figsize must be a number or a pair of numbers")
)
