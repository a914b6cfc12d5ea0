package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

const jwtClaimCompanyID = "company_id"

// GetCompanyIDFromContext extracts the authenticated company id stored by
// Authenticate. JSON numbers decode as float64, but a string claim is
// tolerated too.
func GetCompanyIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(companyContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("company claims not found in context or invalid type")
	}

	claim, ok := claims[jwtClaimCompanyID]
	if !ok {
		return 0, fmt.Errorf("missing %q claim in token", jwtClaimCompanyID)
	}

	asFloat, ok := claim.(float64)
	if !ok {
		if asString, okStr := claim.(string); okStr {
			id, err := strconv.Atoi(asString)
			if err == nil && id > 0 {
				return id, nil
			}
		}
		return 0, fmt.Errorf("invalid type for %q claim: expected number, got %T", jwtClaimCompanyID, claim)
	}

	if asFloat != float64(int(asFloat)) {
		return 0, fmt.Errorf("%q claim is not an integer: %f", jwtClaimCompanyID, asFloat)
	}
	id := int(asFloat)
	if id <= 0 {
		return 0, fmt.Errorf("invalid company id value in %q claim: %d", jwtClaimCompanyID, id)
	}
	return id, nil
}
