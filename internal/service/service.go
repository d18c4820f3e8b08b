package service

import (
	"fmt"
	"strings"

	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

func lookupError(resource string, key any, err error) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(resource, map[string]any{"id": key})
	}
	return err
}

// requireFields reports the first blank value among name/value pairs.
func requireFields(pairs ...string) error {
	missing := make([]string, 0)
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.NewValidationError(fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")), map[string]any{"fields": missing})
}
