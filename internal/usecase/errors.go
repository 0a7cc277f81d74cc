package usecase

import (
	"errors"
	"fmt"

	"github.com/mpay/mpay/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func confirmationDeclined(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrConfirmationDeclined, msg)
}

// errKind classifies an error for metric labels.
func errKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrConfirmationDeclined):
		return "declined"
	case errors.Is(err, domain.ErrIntegrity):
		return "integrity"
	case errors.Is(err, domain.ErrInternalInvariant):
		return "internal"
	default:
		return "other"
	}
}
