package domain

// ActorType is the role of the authenticated caller.
type ActorType string

const (
	ActorAdmin    ActorType = "ADMIN"
	ActorAgent    ActorType = "AGENT"
	ActorMerchant ActorType = "MERCHANT"
	ActorClient   ActorType = "CLIENT"
)

func (t ActorType) Valid() bool {
	switch t {
	case ActorAdmin, ActorAgent, ActorMerchant, ActorClient:
		return true
	}
	return false
}

// Actor is the identity on whose behalf a command executes.
// It is resolved upstream and only consumed for authorization.
type Actor struct {
	Type   ActorType         `json:"actorType"`
	ID     string            `json:"actorId"`
	Claims map[string]string `json:"-"`
}

// Is reports whether the actor has one of the given types.
func (a Actor) Is(types ...ActorType) bool {
	for _, t := range types {
		if a.Type == t {
			return true
		}
	}
	return false
}
