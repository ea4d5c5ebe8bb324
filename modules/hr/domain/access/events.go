package access

// GrantedEvent fires when a new authorization row is created.
type GrantedEvent struct {
	Record Record
}

// RevokedEvent fires when an archived employee's rows are removed.
type RevokedEvent struct {
	Identity string
	Count    int
}
