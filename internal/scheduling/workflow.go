package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/schedulr/internal/instrumentation"
	"github.com/teemow/schedulr/internal/interval"
	"github.com/teemow/schedulr/internal/logging"
)

const (
	// MaxOfferedSlots caps how many slots a proposal offers.
	MaxOfferedSlots = 10

	// MeetingDuration is the length of a confirmed meeting, whatever the
	// length of the slot it was picked from.
	MeetingDuration = time.Hour
)

// WorkflowConfig holds the collaborators of a Workflow.
// Store and Notifier are required.
type WorkflowConfig struct {
	Store    *Store
	Notifier Notifier
	// Recorder is optional. Without it confirmed meetings are not saved.
	Recorder MeetingRecorder
	// Encoder is optional. Without it confirmations carry no invite.
	Encoder InviteEncoder
	// Organizer is the address used as invite organizer.
	Organizer string
	// MinSlot drops candidate slots shorter than this. Defaults to interval.DefaultMinGap.
	MinSlot time.Duration
	Logger  logging.Logger
	Clock   func() time.Time
}

// Workflow drives scheduling requests from proposal to confirmed meeting.
type Workflow struct {
	store     *Store
	notifier  Notifier
	recorder  MeetingRecorder
	encoder   InviteEncoder
	organizer string
	minSlot   time.Duration
	logger    logging.Logger
	now       func() time.Time
}

// NewWorkflow validates cfg and returns a Workflow.
func NewWorkflow(cfg WorkflowConfig) (*Workflow, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}
	w := &Workflow{
		store:     cfg.Store,
		notifier:  cfg.Notifier,
		recorder:  cfg.Recorder,
		encoder:   cfg.Encoder,
		organizer: cfg.Organizer,
		minSlot:   cfg.MinSlot,
		logger:    cfg.Logger,
		now:       cfg.Clock,
	}
	if w.minSlot <= 0 {
		w.minSlot = interval.DefaultMinGap
	}
	if w.logger == nil {
		w.logger = logging.NewSlogAdapter(nil, logging.Service("scheduling"))
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w, nil
}

// Store returns the request store the workflow operates on.
func (w *Workflow) Store() *Store {
	return w.store
}

// ProposeSlots offers candidate slots from source to the target of p.
//
// Slots shorter than the minimum slot size are dropped and at most
// MaxOfferedSlots are kept, in source order. A failing source yields
// ErrUpstream and creates nothing. A failed delivery is reported in the
// result; the request stays pending.
func (w *Workflow) ProposeSlots(ctx context.Context, p Proposal, source SlotSource) (_ ProposalResult, err error) {
	if p.TargetEmail == "" {
		return ProposalResult{}, fmt.Errorf("target email is required")
	}

	ctx, span := instrumentation.StartSpan(ctx, "scheduling.propose")
	defer func() {
		instrumentation.SetSpanError(span, err)
		span.End()
	}()

	candidates, err := source(ctx)
	if err != nil {
		return ProposalResult{}, upstream(fmt.Errorf("failed to generate candidate slots: %w", err))
	}

	offered := interval.AtLeast(candidates, w.minSlot)
	if len(offered) > MaxOfferedSlots {
		offered = offered[:MaxOfferedSlots]
	}
	if len(offered) == 0 {
		return ProposalResult{
			Status:  ResultError,
			Message: "No available time slots found to propose",
		}, nil
	}

	id := w.store.Create(p.TargetEmail, p.TargetName, p.SenderName, offered)
	span.SetAttributes(attribute.String(instrumentation.SpanAttrRequestID, id))
	req, err := w.store.Get(id)
	if err != nil {
		return ProposalResult{}, err
	}

	result := ProposalResult{
		RequestID:    id,
		SlotsOffered: len(offered),
		Slots:        interval.ToWire(offered),
	}

	err = w.notifier.SendMessage(ctx, Message{
		To:      p.TargetEmail,
		Subject: proposalSubject(p.SenderName),
		Body:    proposalBody(req),
	})
	if err != nil {
		w.logger.Warn("proposal delivery failed",
			logging.RequestID(id),
			logging.UserHash(p.TargetEmail),
			logging.Err(err))
		result.Status = ResultError
		result.Message = fmt.Sprintf("Scheduling request %s was created but the email could not be sent: %v", id, err)
		return result, nil
	}

	w.logger.Info("proposal sent",
		logging.RequestID(id),
		logging.UserHash(p.TargetEmail),
		logging.Slots(len(offered)))

	result.Status = ResultSuccess
	result.Delivered = true
	result.Message = fmt.Sprintf("Sent %d available time slot(s) to %s", len(offered), p.TargetEmail)
	return result, nil
}

// ConfirmSlot records the reply to a proposal.
//
// The slot at index (0-based) is selected, a confirmation with a calendar
// invite for [start, start+MeetingDuration) is sent, and only when that was
// delivered the meeting is recorded. Only pending requests accept a reply:
// a scheduled one returns ErrAlreadyScheduled, a failed one
// ErrRequestFailed. An out of range index moves a pending request to the
// error state and returns ErrInvalidIndex.
func (w *Workflow) ConfirmSlot(ctx context.Context, requestID string, index int) (_ Confirmation, err error) {
	ctx, span := instrumentation.StartSpan(ctx, "scheduling.confirm",
		attribute.String(instrumentation.SpanAttrRequestID, requestID))
	defer func() {
		instrumentation.SetSpanError(span, err)
		span.End()
	}()

	req, err := w.store.SelectPendingSlot(requestID, index)
	if err != nil {
		if errors.Is(err, ErrInvalidIndex) && w.store.MarkError(requestID) {
			w.logger.Warn("invalid slot selected",
				logging.RequestID(requestID),
				logging.SlotIndex(index))
		}
		return Confirmation{}, err
	}

	start := req.SelectedSlot.Start.UTC()
	meeting := interval.New(start, start.Add(MeetingDuration))
	title := meetingTitle(req)

	conf := Confirmation{
		RequestID:   requestID,
		MeetingTime: FormatSlot(meeting),
	}

	msg := Message{
		To:      req.TargetEmail,
		Subject: "Meeting confirmed: " + title,
	}
	if w.encoder != nil {
		invite, err := w.encoder.Encode(Invite{
			UID:       uuid.NewString(),
			Summary:   title,
			Organizer: w.organizer,
			Attendee:  req.TargetEmail,
			Start:     meeting.Start,
			End:       meeting.End,
			Stamp:     w.now().UTC(),
		})
		if err != nil {
			w.logger.Warn("failed to encode invite", logging.RequestID(requestID), logging.Err(err))
		} else {
			msg.Invite = invite
		}
	}
	msg.Body = confirmationBody(req, meeting, len(msg.Invite) > 0)

	if err := w.notifier.SendMessage(ctx, msg); err != nil {
		w.logger.Warn("confirmation delivery failed",
			logging.RequestID(requestID),
			logging.UserHash(req.TargetEmail),
			logging.Err(err))
		conf.Status = ResultError
		conf.Message = fmt.Sprintf("Slot %d selected but the confirmation email could not be sent: %v", index, err)
		return conf, nil
	}
	conf.EmailSent = true

	err = w.SaveMeeting(ctx, Meeting{
		RequestID: requestID,
		Email:     req.TargetEmail,
		Title:     title,
		Start:     meeting.Start,
		End:       meeting.End,
	})
	if err != nil {
		conf.Status = ResultPartial
		conf.Message = fmt.Sprintf("Meeting confirmed for %s but it could not be saved to the calendar: %v", conf.MeetingTime, err)
		return conf, nil
	}
	conf.CalendarSaved = true

	w.logger.Info("meeting scheduled",
		logging.RequestID(requestID),
		logging.SlotIndex(index),
		logging.UserHash(req.TargetEmail))

	conf.Status = ResultSuccess
	conf.Message = fmt.Sprintf("Meeting scheduled for %s", conf.MeetingTime)
	return conf, nil
}

// SaveMeeting records m with the configured recorder and marks its request
// as persisted. A request id the store does not know is not an error.
func (w *Workflow) SaveMeeting(ctx context.Context, m Meeting) error {
	if m.Email == "" {
		return fmt.Errorf("email is required")
	}
	if err := interval.New(m.Start, m.End).Validate(); err != nil {
		return err
	}
	if w.recorder == nil {
		return fmt.Errorf("%w: no calendar connected", ErrNotConfigured)
	}
	if err := w.recorder.SaveMeeting(ctx, m); err != nil {
		w.logger.Warn("failed to save meeting", logging.RequestID(m.RequestID), logging.Err(err))
		return upstream(fmt.Errorf("failed to save meeting: %w", err))
	}
	if m.RequestID != "" {
		w.store.MarkPersisted(m.RequestID)
	}
	return nil
}

// upstream tags err with ErrUpstream unless it already is one.
func upstream(err error) error {
	if errors.Is(err, ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}
