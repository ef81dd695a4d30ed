package kb

import (
	"fmt"

	apperrors "github.com/duynguyendang/sir/pkg/common/errors"
)

var (
	ErrUnknownRelation = fmt.Errorf("%w: unknown relation", apperrors.ErrInvalidInput)
	ErrEmptyTerm       = fmt.Errorf("%w: empty term", apperrors.ErrInvalidInput)
)
