package domain

// Agent is an automated actor (e.g. an importer) that created a transaction
// on a user's behalf.
type Agent struct {
	ID          int64
	Name        string
	Description *string
}
