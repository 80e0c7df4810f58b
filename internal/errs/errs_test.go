package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Mohsinsiddi/w3vault/internal/errs"
	"github.com/stretchr/testify/assert"
)

func TestKindUnwrapsNestedErrors(t *testing.T) {
	inner := fmt.Errorf("%w: batch of 21", errs.ErrInvalidArgument)
	outer := fmt.Errorf("whitelist add: %w", inner)
	assert.Equal(t, errs.ErrInvalidArgument, errs.Kind(outer))
}

func TestKindUnknownError(t *testing.T) {
	assert.Nil(t, errs.Kind(errors.New("boom")))
	assert.Nil(t, errs.Kind(nil))
}

func TestKindEachSentinel(t *testing.T) {
	for _, k := range []error{
		errs.ErrUnauthorized,
		errs.ErrInvalidArgument,
		errs.ErrProtocolState,
		errs.ErrInsufficientBudget,
		errs.ErrExternalCall,
	} {
		assert.Equal(t, k, errs.Kind(fmt.Errorf("ctx: %w", k)))
	}
}
