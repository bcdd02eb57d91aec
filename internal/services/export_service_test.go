package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakline/callbridge/internal/models"
	"github.com/oakline/callbridge/internal/utils"
)

type pagedTrainingRepo struct {
	all []models.TrainingCallRecord
}

func (p *pagedTrainingRepo) Upsert(ctx context.Context, rec *models.TrainingCallRecord) error {
	return nil
}

func (p *pagedTrainingRepo) ListPage(ctx context.Context, offset, limit int) ([]models.TrainingCallRecord, error) {
	if offset >= len(p.all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(p.all) {
		end = len(p.all)
	}
	return p.all[offset:end], nil
}

type captureUploader struct {
	object string
	body   bytes.Buffer
}

func (u *captureUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	u.object = objectName
	if _, err := io.Copy(&u.body, r); err != nil {
		return "", err
	}
	return "gs://bucket/" + objectName, nil
}

func TestExportTraining_WritesJSONL(t *testing.T) {
	repo := &pagedTrainingRepo{}
	for i := 0; i < exportPageSize+3; i++ {
		repo.all = append(repo.all, models.TrainingCallRecord{
			CallID: fmt.Sprintf("call-%04d", i),
			Status: models.StatusEnded,
		})
	}
	up := &captureUploader{}
	svc := NewExportService(repo, up, quietLogger())

	path, count, err := svc.ExportTraining(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(repo.all), count)
	assert.True(t, strings.HasPrefix(path, "gs://bucket/training/"))
	assert.True(t, strings.HasSuffix(up.object, ".jsonl"))

	lines := strings.Split(strings.TrimRight(up.body.String(), "\n"), "\n")
	assert.Len(t, lines, len(repo.all))
	assert.Contains(t, lines[0], `"call_id":"call-0000"`)
}

func TestExportTraining_NoUploaderConfigured(t *testing.T) {
	svc := NewExportService(&pagedTrainingRepo{}, nil, quietLogger())

	_, _, err := svc.ExportTraining(context.Background())
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
}
