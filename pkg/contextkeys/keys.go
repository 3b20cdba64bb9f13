package contextkeys

type contextKey string

const (
	// ActorIDKey holds the authenticated user's uuid.UUID. Only the auth
	// middleware writes it; handlers read it to build the explicit
	// ActorContext passed into the engine.
	ActorIDKey contextKey = "ActorID"
)
