package tickets

type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusCompleted Status = "COMPLETED"
	StatusCanceled  Status = "CANCELED"
)

// Terminal states are never transitioned out of directly; a room is reused by
// cleanup-and-recreate, not by reopening an old ticket.
var validNext = map[Status]map[Status]bool{
	StatusOpen:      {StatusCompleted: true, StatusCanceled: true},
	StatusCompleted: {},
	StatusCanceled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
