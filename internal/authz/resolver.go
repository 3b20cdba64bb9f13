package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"solicitud-system/internal/entities"
	apperrors "solicitud-system/pkg/errors"
)

// ActorContext is the resolved identity the engine works with: the full role
// set plus center and committee memberships. The legacy data may carry more
// than one role row per user; the policy here is union of capabilities — a
// guard passes if any held role satisfies it.
type ActorContext struct {
	ActorID   uuid.UUID   `json:"actor_id"`
	FullName  string      `json:"full_name"`
	Roles     []Role      `json:"roles"`
	CenterIDs []uuid.UUID `json:"center_ids"`
	ComiteIDs []uuid.UUID `json:"comite_ids"`
}

func (a *ActorContext) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a *ActorContext) IsAdministrador() bool {
	return a.HasRole(RoleAdministrador)
}

func (a *ActorContext) IsMemberOfCenter(centerID uuid.UUID) bool {
	for _, id := range a.CenterIDs {
		if id == centerID {
			return true
		}
	}
	return false
}

// IsDirectorOf reports whether the actor can act as director for the center.
// Administrators direct everywhere; directors only within their own centers.
func (a *ActorContext) IsDirectorOf(centerID uuid.UUID) bool {
	if a.IsAdministrador() {
		return true
	}
	return a.HasRole(RoleDirector) && a.IsMemberOfCenter(centerID)
}

func (a *ActorContext) IsComiteMemberOf(grupoID uuid.UUID) bool {
	for _, id := range a.ComiteIDs {
		if id == grupoID {
			return true
		}
	}
	return false
}

func (a *ActorContext) IsCreator(s *entities.Solicitud) bool {
	return s.CreatedBy == a.ActorID
}

// PrimaryRole gives a single role label for history records, most privileged
// first. History display wants one word, not the whole set.
func (a *ActorContext) PrimaryRole() Role {
	for _, r := range []Role{RoleAdministrador, RoleDirector, RoleCoordinador, RoleFuncionario, RoleConsulta} {
		if a.HasRole(r) {
			return r
		}
	}
	return RoleConsulta
}

// ActorStore supplies the raw grant rows for an actor.
type ActorStore interface {
	FindActorProfile(ctx context.Context, actorID uuid.UUID) (*entities.User, error)
	FindActorGrants(ctx context.Context, actorID uuid.UUID) (roles []string, centerIDs []uuid.UUID, comiteIDs []uuid.UUID, err error)
}

// Cache is the TTL cache for resolved contexts. Redis in production, a map in
// tests. A cache failure is never fatal; resolution falls through to the store.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type Resolver struct {
	store  ActorStore
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewResolver(store ActorStore, cache Cache, ttl time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, cache: cache, ttl: ttl, logger: logger}
}

func cacheKey(actorID uuid.UUID) string {
	return "actorctx:" + actorID.String()
}

// Resolve builds the ActorContext for an authenticated actor id. Pure read.
// An unknown id yields ErrUnauthenticated: a token for a profile that no
// longer exists is indistinguishable from no token at all.
func (r *Resolver) Resolve(ctx context.Context, actorID uuid.UUID) (*ActorContext, error) {
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, cacheKey(actorID)); err == nil && raw != "" {
			var cached ActorContext
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	profile, err := r.store.FindActorProfile(ctx, actorID)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}

	rawRoles, centerIDs, comiteIDs, err := r.store.FindActorGrants(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolviendo permisos del actor: %w", err)
	}

	actor := &ActorContext{
		ActorID:   actorID,
		FullName:  profile.FullName,
		CenterIDs: centerIDs,
		ComiteIDs: comiteIDs,
	}
	for _, raw := range rawRoles {
		role, err := ParseRole(raw)
		if err != nil {
			// Legacy rows occasionally hold retired role names. Skipping is
			// safe: an unknown role grants nothing.
			r.logger.Warn("rol no reconocido en los datos", zap.String("role", raw), zap.String("actorID", actorID.String()))
			continue
		}
		if !actor.HasRole(role) {
			actor.Roles = append(actor.Roles, role)
		}
	}

	if r.cache != nil {
		if encoded, err := json.Marshal(actor); err == nil {
			if err := r.cache.Set(ctx, cacheKey(actorID), string(encoded), r.ttl); err != nil {
				r.logger.Warn("no se pudo cachear el contexto del actor", zap.Error(err))
			}
		}
	}

	return actor, nil
}
