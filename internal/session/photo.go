package session

import (
	"context"
	"errors"

	"repairboard/internal/board"
	"repairboard/internal/eventbus"
	"repairboard/internal/photo"
	logx "repairboard/pkg/logx"
)

func (s *Session) ingestPhoto(ctx context.Context, id, path string) error {
	fail := func(err error) error {
		fields := []logx.Field{logx.String("id", id), logx.String("path", path), logx.Err(err)}
		if errors.Is(err, photo.ErrNotImage) {
			s.log.Debug("photo ignored", fields...)
		} else {
			s.log.Warn("photo rejected", fields...)
		}
		s.publish(eventbus.PhotoFailed, eventbus.TaskChange{TaskID: id, Value: path, Error: err.Error()})
		return err
	}
	url, err := photo.Load(path, s.photoMax.Load())
	if err != nil {
		return fail(err)
	}
	// the task may have been deleted while the file was read
	if err := s.EditTask(ctx, id, board.FieldPhotoURL, url); err != nil {
		return fail(err)
	}
	s.log.Info("photo attached", logx.String("id", id), logx.String("mime", photo.MIME(url)), logx.Int("bytes", len(url)))
	s.publish(eventbus.PhotoAttached, eventbus.TaskChange{TaskID: id, Value: path})
	return nil
}
