package board

import "errors"

// Edit rejections. A rejected edit never changes the task.
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrUnknownField   = errors.New("unknown field")
	ErrReadOnlyField  = errors.New("field is not editable")
	ErrPhoneHyphen    = errors.New("phone must not contain hyphens")
	ErrInvalidHours   = errors.New("invalid estimated hours")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrInvalidSortKey = errors.New("invalid sort key")
)
