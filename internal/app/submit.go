package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/poprzeczka/internal/domain/fold"
	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/internal/domain/types"
	"github.com/okian/poprzeczka/internal/notify"
	"github.com/okian/poprzeczka/pkg/logger"
	"github.com/okian/poprzeczka/pkg/metrics"
)

// Submit appends one status report to the edition log and the audit log, then
// runs the notification trigger. A repeated submission ID is acknowledged as a
// duplicate without writing anything.
func (s *Service) Submit(ctx context.Context, editionID string, req types.SubmitRequest) (types.SubmitResult, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return types.SubmitResult{}, ErrNotStarted
	}

	ed, err := s.edition(editionID)
	if err != nil {
		metrics.RecordSubmission("rejected")
		return types.SubmitResult{}, err
	}
	sub, submitter, err := s.validate(ed, req)
	if err != nil {
		metrics.RecordSubmission("rejected")
		return types.SubmitResult{}, err
	}
	res := types.SubmitResult{
		Submission: sub,
		Context:    types.FormContext{LastSubmitter: submitter, LastDay: sub.Day},
	}

	if s.deduper.SeenAndRecord(ctx, sub.ID) {
		metrics.RecordSubmission("duplicate")
		s.logger.Debug(ctx, "duplicate submission, skipping", logger.String("id", sub.ID))
		res.Duplicate = true
		return res, nil
	}

	if err := s.store.Append(ctx, ed.Sheet, fold.Row(sub)); err != nil {
		s.deduper.Unrecord(ctx, sub.ID)
		metrics.RecordSubmission("failed")
		metrics.RecordErrorByComponent("service", "append")
		return types.SubmitResult{}, fmt.Errorf("%w: append to %s: %w", ErrStore, ed.Sheet, err)
	}

	if err := s.store.Append(ctx, s.auditSheet, auditRow(sub, submitter, ed.ID)); err != nil {
		metrics.RecordErrorByComponent("service", "audit")
		s.logger.Warn(ctx, "audit append failed", logger.String("id", sub.ID), logger.Error(err))
		res.Diagnostics = append(res.Diagnostics, "audit log: "+err.Error())
	}
	metrics.RecordSubmission("accepted")
	s.logger.Info(ctx, "submission accepted",
		logger.String("edition", ed.ID),
		logger.String("participant", sub.Participant),
		logger.Int("day", sub.Day),
		logger.String("status", sub.Status.String()),
	)

	res.Notifications = summarize(s.trigger.CheckAndSend(ctx, ed, sub))
	return res, nil
}

func (s *Service) validate(ed model.Edition, req types.SubmitRequest) (model.Submission, string, error) {
	submitter := strings.TrimSpace(req.Submitter)
	if submitter == "" {
		submitter = req.Context.LastSubmitter
	}
	participant := strings.TrimSpace(req.Participant)
	if participant == "" {
		participant = submitter
	}
	if participant == "" {
		return model.Submission{}, "", fmt.Errorf("%w: participant is required", ErrInvalidSubmission)
	}
	if submitter == "" {
		submitter = participant
	}
	if !ed.HasParticipant(participant) {
		return model.Submission{}, "", fmt.Errorf("%w: %s is not on the %s roster", ErrInvalidSubmission, participant, ed.ID)
	}

	day := req.Day
	if day == 0 {
		day = req.Context.LastDay
	}
	if day < 1 {
		return model.Submission{}, "", fmt.Errorf("%w: day must be a positive integer", ErrInvalidSubmission)
	}

	status, err := model.ParseStatus(req.Status)
	if err != nil {
		return model.Submission{}, "", fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return model.Submission{
		ID:          id,
		Participant: participant,
		Day:         day,
		Status:      status,
		Notes:       req.Notes,
		Timestamp:   s.now().UTC(),
	}, submitter, nil
}

func auditRow(sub model.Submission, submitter, edition string) []string {
	return []string{
		sub.ID,
		fold.FormatTimestamp(sub.Timestamp),
		submitter,
		edition,
		sub.Participant,
		strconv.Itoa(sub.Day),
		sub.Status.String(),
		sub.Notes,
	}
}

func summarize(r notify.Report) types.NotificationSummary {
	out := types.NotificationSummary{
		Alert:       string(r.Alert),
		OfficialDay: r.OfficialDay,
		Broadcast:   r.Broadcast,
		Queued:      len(r.Queued),
		Skipped:     r.Skipped,
	}
	for _, err := range r.Errors {
		out.Errors = append(out.Errors, err.Error())
	}
	return out
}
