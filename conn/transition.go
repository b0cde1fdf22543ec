package conn

// transition is the outcome of an operation: either nothing happens, the connection moves
// to the next state, or it fails. Every outcome goes through Connection.apply, which is the
// only place producing side effects.
type transition struct {
	set    bool
	next   State
	reason string
	// err is set for failures only. A failure always leads to Offline.
	err error
	// adopt is an exchange that isn't held by the current stage yet, but must be taken
	// over by the next one (or retired, if the next one cannot hold it).
	adopt *exchange
}

// stay means no transition.
var stay = transition{}

func moveTo(next State, reason string) transition {
	return transition{set: true, next: next, reason: reason}
}

func fail(reason string, err error) transition {
	return transition{set: true, next: Offline, reason: reason, err: err}
}

func (t transition) with(ex *exchange) transition {
	t.adopt = ex
	return t
}
