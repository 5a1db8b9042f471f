package domain

// Todo is a single todo record. ID is assigned by the store and never
// changes; Deleted only ever moves from false to true.
type Todo struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Deleted bool   `json:"deleted"`
}

// Draft carries the client-supplied fields of a todo.
type Draft struct {
	Title  string
	Status string
}
