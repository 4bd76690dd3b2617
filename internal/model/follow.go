package model

import "errors"

// Social graph errors. The follows table is the single source of truth for
// both the followers and following sets; its rows never surface as a type
// of their own, only as id lists.
var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
