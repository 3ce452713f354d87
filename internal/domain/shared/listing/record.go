package listing

// Record is a flat module record. Implementations are value types whose With*
// methods return modified copies.
type Record[T any] interface {
	RecordID() string
	WithID(id string) T
	RecordStatus() string
	WithStatus(status string) T
}
