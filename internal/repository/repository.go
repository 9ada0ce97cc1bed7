// Package repository contains data access interfaces. Implementations live
// in subpackages (postgres) and contain no business logic.
package repository

import "errors"

// ErrClaimConflict is returned by JobRepository.Claim when another worker won
// the claim race or the job is no longer claimable. Callers yield to the
// winner; this is not an error condition to surface.
var ErrClaimConflict = errors.New("job already claimed")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
