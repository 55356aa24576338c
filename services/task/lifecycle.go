package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/db/option"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/services/audit"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UpdateTaskStatus applies a partial update. Entering IN_PROGRESS or
// COMPLETED requires every task of the effective dependency set to be
// COMPLETED. The dependency check and the write share one transaction with
// the dependency rows locked, and the write is conditional on the version
// read at the start, so a concurrent change surfaces as Conflict.
func (s *Service) UpdateTaskStatus(ctx context.Context, actor auth.Actor, id string, req UpdateTaskRequest) (*Task, error) {
	before, err := s.GetOrganizationTask(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && !req.Status.Valid() {
		return nil, errutil.ValidationFailed("unknown status", nil, errutil.WithField("status", string(*req.Status)))
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, errutil.ValidationFailed("title must not be empty", nil, errutil.WithField("title", "required"))
	}

	var deps []string
	if req.Dependencies != nil {
		deps = dedupe(*req.Dependencies)
		if err := s.validateDependencies(ctx, actor.OrganizationID, before.ID, deps); err != nil {
			return nil, err
		}
	}

	if err := s.applyUpdate(ctx, before, req, deps); err != nil {
		return nil, err
	}

	after, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:   actor.UserID,
		Action:   audit.ActionUpdate,
		Target:   auditTarget,
		TargetID: id,
		Data:     audit.Change{Before: before.Snapshot(), After: after.Snapshot()},
	})

	logger.FromContext(ctx).Info("task updated",
		zap.String("task_id", id),
		zap.String("status", string(after.Status)),
		zap.Int64("version", after.Version),
	)
	return after, nil
}

func (s *Service) validateDependencies(ctx context.Context, orgID, taskID string, deps []string) error {
	for _, d := range deps {
		if d == taskID {
			return errutil.ValidationFailed("task cannot depend on itself", nil, errutil.WithField("dependencies", d))
		}
	}
	if err := s.ensureTasksExist(ctx, s.db, orgID, deps); err != nil {
		return err
	}
	cyclic, err := createsCycle(s.db.WithContext(ctx), taskID, deps)
	if err != nil {
		return errutil.Internal("failed to check dependency graph", err)
	}
	if cyclic {
		return errutil.ValidationFailed("dependencies would create a cycle", nil, errutil.WithField("dependencies", "cycle"))
	}
	return nil
}

// applyUpdate writes req against the snapshot before. deps replaces the
// dependency set when req.Dependencies is set.
func (s *Service) applyUpdate(ctx context.Context, before *Task, req UpdateTaskRequest, deps []string) error {
	effective := before.DependencyIDs()
	if req.Dependencies != nil {
		effective = deps
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Task
		if err := option.LockingUpdate(tx.Model(&Task{})).Where("id = ?", before.ID).Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errutil.NotFound("task not found", nil, errutil.WithField("id", before.ID))
			}
			return err
		}
		if current.Version != before.Version {
			return errutil.Conflict("task was modified concurrently", nil, errutil.WithField("id", before.ID))
		}

		if req.Dependencies != nil {
			if err := replaceDependencies(tx, before.ID, deps); err != nil {
				return err
			}
		}

		if req.Status != nil && req.Status.Gated() && len(effective) > 0 {
			var open []string
			err := option.LockingUpdate(tx.Model(&Task{})).
				Where("id IN ? AND status <> ?", effective, StatusCompleted).
				Order("id").
				Pluck("id", &open).Error
			if err != nil {
				return err
			}
			if len(open) > 0 {
				return &DependencyNotSatisfiedError{TaskID: before.ID, Unsatisfied: open}
			}
		}

		res := tx.Model(&Task{}).
			Where("id = ? AND version = ?", before.ID, before.Version).
			Updates(updateValues(req, s.now().UTC()))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errutil.Conflict("task was modified concurrently", nil, errutil.WithField("id", before.ID))
		}
		return nil
	})
	if err == nil {
		return nil
	}

	var se errutil.StatusError
	if errors.As(err, &se) {
		return err
	}
	logger.FromContext(ctx).Error("failed to update task", zap.String("task_id", before.ID), zap.Error(err))
	return errutil.Internal("failed to update task", err)
}

func updateValues(req UpdateTaskRequest, now time.Time) map[string]any {
	values := map[string]any{
		"version":    gorm.Expr("version + 1"),
		"updated_at": now,
	}
	if req.Title != nil {
		values["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		values["description"] = *req.Description
	}
	if req.Status != nil {
		values["status"] = *req.Status
	}
	if req.Deadline != nil {
		values["deadline"] = req.Deadline.UTC()
	}
	return values
}
