package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Authentication happens upstream; this service trusts the identity headers
// set by the gateway after it has verified the caller's token.
const (
	headerEntityID = "X-Entity-ID"
	headerOrgID    = "X-Org-ID"
)

type identityKey struct{}

// Identity is the authenticated caller, as asserted by the gateway.
type Identity struct {
	EntityID uuid.UUID
	OrgID    uuid.UUID
}

// withIdentity rejects requests without valid identity headers and stores the
// parsed identity in the request context.
func (s *Server) withIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityID, err := uuid.Parse(r.Header.Get(headerEntityID))
		if err != nil {
			writeErrorMessage(w, http.StatusUnauthorized, "missing or invalid "+headerEntityID+" header")
			return
		}
		orgID, err := uuid.Parse(r.Header.Get(headerOrgID))
		if err != nil {
			writeErrorMessage(w, http.StatusUnauthorized, "missing or invalid "+headerOrgID+" header")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, Identity{EntityID: entityID, OrgID: orgID})
		next(w, r.WithContext(ctx))
	}
}

// identityFrom returns the caller identity stored by withIdentity.
func identityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}
