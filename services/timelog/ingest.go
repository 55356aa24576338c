package timelog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/services/project"
	"taskforge-controlplane/services/task"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	colProjectCode = "projectcode"
	colHours       = "hours"
	colDate        = "date"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// IngestExternalLogBatch imports a CSV timesheet with the columns
// projectCode, hours and date. A file that cannot be read as CSV or lacks a
// column fails as a whole. Rows are otherwise independent: bad or unmatched
// rows are skipped with a reason and the rest are stored.
func (s *Service) IngestExternalLogBatch(ctx context.Context, actor auth.Actor, upload ExternalLogUpload) (*IngestResult, error) {
	zapLog := logger.FromContext(ctx).With(zap.String("file", upload.FileName))

	records, cols, err := parseTimesheet(upload.Content)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{Skipped: []SkippedRow{}}
	result.ArchiveKey = s.archive(ctx, actor, upload)

	resolved := make(map[string]string)
	for i, rec := range records {
		line := i + 2
		code := strings.ToUpper(strings.TrimSpace(rec[cols[colProjectCode]]))
		result.ProcessedRecords++

		skip := func(reason string) {
			result.Skipped = append(result.Skipped, SkippedRow{Line: line, ProjectCode: code, Reason: reason})
		}

		hours, err := strconv.ParseFloat(strings.TrimSpace(rec[cols[colHours]]), 64)
		if err != nil || math.IsNaN(hours) || math.IsInf(hours, 0) {
			skip("invalid hours")
			continue
		}
		if hours < 0 {
			skip("negative hours")
			continue
		}
		date, err := s.parseDate(rec[cols[colDate]])
		if err != nil {
			skip("invalid date")
			continue
		}
		if code == "" {
			skip("missing project code")
			continue
		}

		taskID, ok := resolved[code]
		if !ok {
			taskID, err = s.resolveTask(ctx, actor.OrganizationID, code)
			if err != nil {
				return nil, err
			}
			resolved[code] = taskID
		}
		if taskID == "" {
			skip("no task found for project code")
			continue
		}

		entry := &ExternalLog{
			ID:          s.node.Generate().String(),
			TaskID:      taskID,
			Hours:       hours,
			Date:        date,
			ProjectCode: code,
		}
		if err := s.externalLogs.Create(ctx, entry); err != nil {
			zapLog.Error("failed to store external log", zap.Int("line", line), zap.Error(err))
			skip("failed to store row")
			continue
		}
		result.CreatedRecords++
	}

	zapLog.Info("external logs ingested",
		zap.Int("processed", result.ProcessedRecords),
		zap.Int("created", result.CreatedRecords),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// parseTimesheet returns the data rows and the index of each required column.
func parseTimesheet(content []byte) ([][]string, map[string]int, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errutil.ValidationFailed("empty file", nil)
		}
		return nil, nil, errutil.ValidationFailed("malformed csv", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	for _, required := range []string{colProjectCode, colHours, colDate} {
		if _, ok := cols[required]; !ok {
			return nil, nil, errutil.ValidationFailed("missing required column", nil, errutil.WithField(required, "required"))
		}
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, errutil.ValidationFailed("malformed csv", err)
	}
	return records, cols, nil
}

func (s *Service) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, s.loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// resolveTask maps a project code to the oldest task of that project. Codes
// are unique, so at most one project matches. An empty id means no match.
func (s *Service) resolveTask(ctx context.Context, orgID, code string) (string, error) {
	if orgID == "" {
		return "", nil
	}
	p, err := s.projects.FindOne(ctx, &project.Project{Code: code, OrganizationID: orgID})
	if err != nil {
		return "", errutil.Internal("failed to resolve project code", err)
	}
	if p == nil {
		return "", nil
	}

	var t task.Task
	err = s.db.WithContext(ctx).Model(&task.Task{}).
		Where("project_id = ?", p.ID).
		Order("created_at ASC").Order("id ASC").
		Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errutil.Internal("failed to resolve task", err)
	}
	return t.ID, nil
}

// archive stores the raw upload. Failures are logged; ingestion goes on.
func (s *Service) archive(ctx context.Context, actor auth.Actor, upload ExternalLogUpload) string {
	name := path.Base(upload.FileName)
	if name == "." || name == "/" {
		name = "upload.csv"
	}
	key := fmt.Sprintf("external-logs/%s/%s-%s", actor.OrganizationID, s.node.Generate().String(), name)

	if err := s.store.Put(ctx, key, upload.Content, "text/csv"); err != nil {
		logger.FromContext(ctx).Warn("failed to archive upload", zap.String("key", key), zap.Error(err))
		return ""
	}
	return key
}
