package eventbus

// Board event types.
const (
	TaskCreated    = "task.created"
	TaskEdited     = "task.edited"
	TaskRejected   = "task.rejected"
	TaskDeleted    = "task.deleted"
	EditingToggled = "task.editing"
	ViewChanged    = "view.changed"
	WindowMoved    = "window.moved"
	PhotoAttached  = "photo.attached"
	PhotoFailed    = "photo.failed"
	ConfigReloaded = "config.reloaded"
)

// TaskChange is the payload of the task.* events.
type TaskChange struct {
	TaskID string `json:"task_id"`
	Name   string `json:"name,omitempty"`
	Field  string `json:"field,omitempty"`
	Value  string `json:"value,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ViewChange is the payload of view.changed.
type ViewChange struct {
	Search  string `json:"search"`
	SortKey string `json:"sort_key,omitempty"`
	SortAsc bool   `json:"sort_asc,omitempty"`
	Days    int    `json:"days"`
}

// WindowMove is the payload of window.moved.
type WindowMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}
