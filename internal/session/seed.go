package session

import (
	"context"

	"repairboard/internal/board"
)

type seedTask struct {
	name        string
	phone       string
	status      board.Status
	hours       string
	startOffset int
	dueOffset   int
}

var demo = []seedTask{
	{name: "Tanaka Taro", phone: "09012345678", status: board.StatusNotStarted, hours: "3", startOffset: 0, dueOffset: 2},
	{name: "Suzuki Jiro", phone: "08098765432", status: board.StatusInProgress, hours: "2", startOffset: 1, dueOffset: 4},
}

// SeedDemo adds two sample jobs around today.
func (s *Session) SeedDemo(ctx context.Context) error {
	var today string
	if err := s.do(ctx, func() { today = s.today }); err != nil {
		return err
	}
	for _, d := range demo {
		t, err := s.CreateTask(ctx)
		if err != nil {
			return err
		}
		start, err := board.AddDays(today, d.startOffset)
		if err != nil {
			return err
		}
		due, err := board.AddDays(today, d.dueOffset)
		if err != nil {
			return err
		}
		edits := []struct {
			f board.Field
			v string
		}{
			{board.FieldName, d.name},
			{board.FieldPhone, d.phone},
			{board.FieldStatus, d.status.Key()},
			{board.FieldEstimatedHours, d.hours},
			{board.FieldStart, start},
			{board.FieldDeadline, due},
		}
		for _, e := range edits {
			if err := s.EditTask(ctx, t.ID, e.f, e.v); err != nil {
				return err
			}
		}
	}
	return nil
}
