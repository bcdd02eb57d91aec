package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oakline/callbridge/internal/repositories/postgres"
	"github.com/oakline/callbridge/internal/storage"
	"github.com/oakline/callbridge/internal/utils"
)

const exportPageSize = 500

// ExportService streams the training twins to object storage as JSONL for
// downstream model-training use. Twins are already de-identified, so the
// export performs no further transformation.
type ExportService interface {
	ExportTraining(ctx context.Context) (objectPath string, count int, err error)
}

type exportService struct {
	training postgres.TrainingRepository
	uploader storage.Uploader
	log      *logrus.Logger
}

func NewExportService(training postgres.TrainingRepository, uploader storage.Uploader, log *logrus.Logger) ExportService {
	return &exportService{training: training, uploader: uploader, log: log}
}

func (s *exportService) ExportTraining(ctx context.Context) (string, int, error) {
	const op = "ExportService.ExportTraining"

	if s.uploader == nil {
		return "", 0, utils.E(utils.CodeUnavailable, op, "no export bucket configured", nil)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	count := 0
	for offset := 0; ; offset += exportPageSize {
		page, err := s.training.ListPage(ctx, offset, exportPageSize)
		if err != nil {
			return "", 0, utils.E(utils.CodeInternal, op, "failed to list training records", err)
		}
		for _, rec := range page {
			if err := enc.Encode(rec); err != nil {
				return "", 0, utils.E(utils.CodeInternal, op, "failed to encode training record", err)
			}
			count++
		}
		if len(page) < exportPageSize {
			break
		}
	}

	object := fmt.Sprintf("training/twins-%s.jsonl", time.Now().UTC().Format("20060102T150405Z"))
	path, err := s.uploader.Upload(ctx, object, "application/x-ndjson", &buf)
	if err != nil {
		return "", 0, utils.E(utils.CodeInternal, op, "failed to upload export", err)
	}

	s.log.WithFields(logrus.Fields{"object": path, "records": count}).Info("training export complete")
	return path, count, nil
}
