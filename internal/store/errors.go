package store

import "errors"

// Sentinel errors returned by the store layer. Handlers map these to
// user-facing responses; anything else is a storage failure.
var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrNoTranslations is returned when a menu entity write ends up with
	// zero valid translations. The surrounding transaction is rolled back.
	ErrNoTranslations = errors.New("store: at least one translation is required")

	// ErrLanguageInUse is returned when deleting a language that still has
	// translation rows referencing it.
	ErrLanguageInUse = errors.New("store: language is referenced by translations")

	// ErrDefaultLanguage is returned when deleting or deactivating the
	// default language.
	ErrDefaultLanguage = errors.New("store: operation not allowed on the default language")
)
