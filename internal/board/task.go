package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Task is one repair job on the board.
//
// End is derived from Start and EstimatedHours; only Store.Edit writes it.
type Task struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	PhotoURL       string  `json:"photoUrl"`
	Status         Status  `json:"status"`
	Deadline       string  `json:"deadline,omitempty"`
	EstimatedHours float64 `json:"estimatedHours"`
	Start          string  `json:"start"`
	End            string  `json:"end"`

	Menu        *string `json:"menu,omitempty"`
	Memo        *string `json:"memo,omitempty"`
	Assignee    *string `json:"assignee,omitempty"`
	ModelNumber *string `json:"modelNumber,omitempty"`
}

// Field names a Task attribute for editing and sorting.
type Field string

const (
	FieldID             Field = "id"
	FieldName           Field = "name"
	FieldPhone          Field = "phone"
	FieldEmail          Field = "email"
	FieldPhotoURL       Field = "photoUrl"
	FieldStatus         Field = "status"
	FieldDeadline       Field = "deadline"
	FieldEstimatedHours Field = "estimatedHours"
	FieldStart          Field = "start"
	FieldEnd            Field = "end"
	FieldMenu           Field = "menu"
	FieldMemo           Field = "memo"
	FieldAssignee       Field = "assignee"
	FieldModelNumber    Field = "modelNumber"
)

var allFields = []Field{
	FieldID, FieldName, FieldPhone, FieldEmail, FieldPhotoURL, FieldStatus,
	FieldDeadline, FieldEstimatedHours, FieldStart, FieldEnd,
	FieldMenu, FieldMemo, FieldAssignee, FieldModelNumber,
}

// Fields lists every task attribute.
func Fields() []Field { return append([]Field(nil), allFields...) }

// ParseField resolves a field name, ignoring case. Besides the canonical
// camelCase names it accepts a few aliases typed at the console ("hours",
// "photo", "model").
func ParseField(raw string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hours", "estimated_hours":
		return FieldEstimatedHours, nil
	case "photo", "photo_url":
		return FieldPhotoURL, nil
	case "model", "model_number":
		return FieldModelNumber, nil
	}
	for _, f := range allFields {
		if strings.EqualFold(string(f), strings.TrimSpace(raw)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
}

// Text renders a field value for display. Absent annotations render as "".
func (t Task) Text(f Field) string {
	switch f {
	case FieldID:
		return t.ID
	case FieldName:
		return t.Name
	case FieldPhone:
		return t.Phone
	case FieldEmail:
		return t.Email
	case FieldPhotoURL:
		return t.PhotoURL
	case FieldStatus:
		return t.Status.String()
	case FieldDeadline:
		return t.Deadline
	case FieldEstimatedHours:
		return strconv.FormatFloat(t.EstimatedHours, 'f', -1, 64)
	case FieldStart:
		return t.Start
	case FieldEnd:
		return t.End
	}
	if p := t.annotation(f); p != nil && *p != nil {
		return **p
	}
	return ""
}

// annotation returns the slot backing an optional free-text field.
func (t *Task) annotation(f Field) **string {
	switch f {
	case FieldMenu:
		return &t.Menu
	case FieldMemo:
		return &t.Memo
	case FieldAssignee:
		return &t.Assignee
	case FieldModelNumber:
		return &t.ModelNumber
	}
	return nil
}

// Clone returns a deep copy; the annotation pointers are not shared.
func (t Task) Clone() Task {
	cp := t
	for _, f := range []Field{FieldMenu, FieldMemo, FieldAssignee, FieldModelNumber} {
		if p := cp.annotation(f); *p != nil {
			v := **p
			*p = &v
		}
	}
	return cp
}
