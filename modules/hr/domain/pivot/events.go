package pivot

// CreatedEvent fires when a new identity appears in the source.
type CreatedEvent struct {
	Record Record
}

// UpdatedEvent fires when an existing row is rewritten in place.
type UpdatedEvent struct {
	Record Record
}

// ArchivedEvent fires when an identity vanishes from the source and its
// row is blanked.
type ArchivedEvent struct {
	Identity string
}

// SyncErrorEvent fires once per identity whose write failed; the run
// continues past it.
type SyncErrorEvent struct {
	Identity string
}
