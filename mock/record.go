package mock

import (
	"context"

	"github.com/fwojciec/sitepush"
)

var _ sitepush.RecordService = (*RecordService)(nil)

// RecordService is a mock implementation of sitepush.RecordService.
type RecordService struct {
	UpsertRecordFn func(ctx context.Context, rec *sitepush.URLRecord) error
	FindRecordsFn  func(ctx context.Context, filter sitepush.RecordFilter) ([]*sitepush.URLRecord, error)
}

func (s *RecordService) UpsertRecord(ctx context.Context, rec *sitepush.URLRecord) error {
	return s.UpsertRecordFn(ctx, rec)
}

func (s *RecordService) FindRecords(ctx context.Context, filter sitepush.RecordFilter) ([]*sitepush.URLRecord, error) {
	return s.FindRecordsFn(ctx, filter)
}
