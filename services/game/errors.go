package game

import "errors"

var (
	// ErrGameNotFound is returned when no game row exists for an id.
	ErrGameNotFound = errors.New("game not found")

	// ErrStickerNotFound is returned when no sticker row exists for an id.
	ErrStickerNotFound = errors.New("sticker not found")

	// ErrGameFinished is returned when a claim or a second finalization
	// targets a game whose elapsed time is already set.
	ErrGameFinished = errors.New("game already finished")

	// ErrEmptyCatalog is returned by target selection when no stickers exist.
	ErrEmptyCatalog = errors.New("sticker catalog is empty")

	// ErrUserRequired is returned when an operation needs a user identity.
	ErrUserRequired = errors.New("user id is required")

	// ErrUnauthenticated is returned by identity verification failures.
	ErrUnauthenticated = errors.New("unauthenticated")
)
