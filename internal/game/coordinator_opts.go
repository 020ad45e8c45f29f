package game

type CoordinatorOpt func(*Coordinator)

// WithActivityGuard wires the restricted-activity collaborator.
func WithActivityGuard(g ActivityGuard) CoordinatorOpt {
	return func(c *Coordinator) {
		c.guard = g
	}
}

// WithGroupRegistry wires durable group registration.
func WithGroupRegistry(r GroupRegistry) CoordinatorOpt {
	return func(c *Coordinator) {
		c.registry = r
	}
}

// WithCharacterLookup wires the durable name lookup used for offline
// targets.
func WithCharacterLookup(l CharacterLookup) CoordinatorOpt {
	return func(c *Coordinator) {
		c.chars = l
	}
}

// WithMixedFactions allows cross-faction groups.
func WithMixedFactions(allow bool) CoordinatorOpt {
	return func(c *Coordinator) {
		c.allowMixedFactions = allow
	}
}

// WithGMGroups allows ordinary players to invite game masters.
func WithGMGroups(allow bool) CoordinatorOpt {
	return func(c *Coordinator) {
		c.allowGMGroups = allow
	}
}
