package core

import "errors"

// Sentinel errors returned (wrapped) by Database mutators.
var (
	ErrEmptyName             = errors.New("name must not be empty")
	ErrEmptyType             = errors.New("column type must not be empty")
	ErrDuplicate             = errors.New("already defined")
	ErrNotFound              = errors.New("not defined")
	ErrSameEndpoints         = errors.New("two endpoints are the same")
	ErrArity                 = errors.New("two endpoints have unequal number of fields")
	ErrDuplicateRelationship = errors.New("reference with the same endpoints already exists")
)
