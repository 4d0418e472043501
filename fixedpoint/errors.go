package fixedpoint

import "errors"

var (
	// ErrAlreadyMatched names the case where the primary or secondary
	// function (or, for a basic-block fixed point, the primary or
	// secondary block) already participates in a fixed point. Store.Add
	// and Store.AddBasicBlock do not return it; they report that case as
	// (nil, false, nil).
	ErrAlreadyMatched = errors.New("fixedpoint: already matched")

	// ErrNotFound is returned by Delete for an unknown ID.
	ErrNotFound = errors.New("fixedpoint: not found")

	// ErrWrongParent is returned by AddBasicBlock when the function
	// fixed point referenced by parentID does not exist.
	ErrWrongParent = errors.New("fixedpoint: unknown parent function fixed point")
)
