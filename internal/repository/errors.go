package repository

import "errors"

// ErrShowNotFound is returned when no show matches the token. Handlers
// translate it into a 404.
var ErrShowNotFound = errors.New("show not found")

// ErrVersionConflict is returned by Save when another writer saved the
// same show between our load and our save. Handlers translate it into a
// 409; the caller may reload and try again.
var ErrVersionConflict = errors.New("show version conflict")

// ErrLocked is returned by a Locker when another writer holds the show.
var ErrLocked = errors.New("show is locked by another writer")

// ErrShowExists is returned by Create when the token, email or subdomain
// is already taken.
var ErrShowExists = errors.New("show already exists")
