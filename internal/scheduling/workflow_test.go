package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/schedulr/internal/interval"
	"github.com/teemow/schedulr/internal/logging"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (f *fakeNotifier) SendMessage(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeRecorder struct {
	saved []Meeting
	err   error
}

func (f *fakeRecorder) SaveMeeting(_ context.Context, m Meeting) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, m)
	return nil
}

type fakeEncoder struct {
	invites []Invite
	err     error
}

func (f *fakeEncoder) Encode(inv Invite) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.invites = append(f.invites, inv)
	return []byte("BEGIN:VCALENDAR"), nil
}

type fixture struct {
	store    *Store
	notifier *fakeNotifier
	recorder *fakeRecorder
	encoder  *fakeEncoder
	workflow *Workflow
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    NewStore(),
		notifier: &fakeNotifier{},
		recorder: &fakeRecorder{},
		encoder:  &fakeEncoder{},
	}
	w, err := NewWorkflow(WorkflowConfig{
		Store:     f.store,
		Notifier:  f.notifier,
		Recorder:  f.recorder,
		Encoder:   f.encoder,
		Organizer: "alice@example.com",
		Logger:    logging.Discard(),
		Clock:     func() time.Time { return base },
	})
	require.NoError(t, err)
	f.workflow = w
	return f
}

func bob() Proposal {
	return Proposal{SenderName: "Alice", TargetName: "Bob", TargetEmail: "bob@example.com"}
}

func TestNewWorkflow_RequiresCollaborators(t *testing.T) {
	_, err := NewWorkflow(WorkflowConfig{Notifier: &fakeNotifier{}})
	assert.Error(t, err)

	_, err = NewWorkflow(WorkflowConfig{Store: NewStore()})
	assert.Error(t, err)

	w, err := NewWorkflow(WorkflowConfig{Store: NewStore(), Notifier: &fakeNotifier{}})
	require.NoError(t, err)
	assert.NotNil(t, w.Store())
}

func TestProposeSlots(t *testing.T) {
	f := newFixture(t)

	result, err := f.workflow.ProposeSlots(context.Background(), bob(), StaticSlots(testSlots()))
	require.NoError(t, err)

	assert.Equal(t, ResultSuccess, result.Status)
	assert.True(t, result.Delivered)
	assert.Equal(t, 2, result.SlotsOffered)
	assert.Len(t, result.Slots, 2)

	req, err := f.store.Get(result.RequestID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, "bob@example.com", req.TargetEmail)

	require.Len(t, f.notifier.sent, 1)
	msg := f.notifier.sent[0]
	assert.Equal(t, "bob@example.com", msg.To)
	assert.Equal(t, "Meeting request from Alice", msg.Subject)
	assert.Contains(t, msg.Body, "Hi Bob,")
	assert.Contains(t, msg.Body, "1. Mon, Mar 10 at 9:00 AM - 10:00 AM UTC")
	assert.Contains(t, msg.Body, "2. Mon, Mar 10 at 12:00 PM - 1:00 PM UTC")
	assert.Nil(t, msg.Invite)
}

func TestProposeSlots_FiltersAndTruncates(t *testing.T) {
	f := newFixture(t)

	var candidates []interval.Interval
	// A 10 minute slot that must be dropped, then 12 usable ones.
	candidates = append(candidates, interval.New(base, base.Add(10*time.Minute)))
	for i := 0; i < 12; i++ {
		start := base.Add(time.Duration(i+1) * time.Hour)
		candidates = append(candidates, interval.New(start, start.Add(45*time.Minute)))
	}

	result, err := f.workflow.ProposeSlots(context.Background(), bob(), StaticSlots(candidates))
	require.NoError(t, err)
	assert.Equal(t, MaxOfferedSlots, result.SlotsOffered)

	req, err := f.store.Get(result.RequestID)
	require.NoError(t, err)
	require.Len(t, req.OfferedSlots, MaxOfferedSlots)
	assert.True(t, req.OfferedSlots[0].Equal(candidates[1]))
	assert.True(t, req.OfferedSlots[9].Equal(candidates[10]))
	assert.Contains(t, f.notifier.sent[0].Body, "\n10. ")
	assert.NotContains(t, f.notifier.sent[0].Body, "\n11. ")
}

func TestProposeSlots_NoUsableSlots(t *testing.T) {
	f := newFixture(t)

	short := []interval.Interval{interval.New(base, base.Add(5*time.Minute))}
	result, err := f.workflow.ProposeSlots(context.Background(), bob(), StaticSlots(short))
	require.NoError(t, err)

	assert.Equal(t, ResultError, result.Status)
	assert.Empty(t, result.RequestID)
	assert.Empty(t, f.store.List())
	assert.Empty(t, f.notifier.sent)
}

func TestProposeSlots_SourceFailure(t *testing.T) {
	f := newFixture(t)

	failing := func(context.Context) ([]interval.Interval, error) {
		return nil, errors.New("quota exceeded")
	}
	_, err := f.workflow.ProposeSlots(context.Background(), bob(), failing)

	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Empty(t, f.store.List())
}

func TestProposeSlots_DeliveryFailureKeepsRequest(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")

	result, err := f.workflow.ProposeSlots(context.Background(), bob(), StaticSlots(testSlots()))
	require.NoError(t, err)

	assert.Equal(t, ResultError, result.Status)
	assert.False(t, result.Delivered)
	require.NotEmpty(t, result.RequestID)

	req, err := f.store.Get(result.RequestID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
}

func TestProposeSlots_RequiresTarget(t *testing.T) {
	f := newFixture(t)
	_, err := f.workflow.ProposeSlots(context.Background(), Proposal{SenderName: "Alice"}, StaticSlots(testSlots()))
	assert.Error(t, err)
}

func proposed(t *testing.T, f *fixture) string {
	t.Helper()
	result, err := f.workflow.ProposeSlots(context.Background(), bob(), StaticSlots(testSlots()))
	require.NoError(t, err)
	f.notifier.sent = nil
	return result.RequestID
}

func TestConfirmSlot(t *testing.T) {
	f := newFixture(t)
	id := proposed(t, f)

	conf, err := f.workflow.ConfirmSlot(context.Background(), id, 1)
	require.NoError(t, err)

	assert.Equal(t, ResultSuccess, conf.Status)
	assert.True(t, conf.EmailSent)
	assert.True(t, conf.CalendarSaved)
	assert.Equal(t, "Mon, Mar 10 at 12:00 PM - 1:00 PM UTC", conf.MeetingTime)

	require.Len(t, f.notifier.sent, 1)
	msg := f.notifier.sent[0]
	assert.Equal(t, "Meeting confirmed: Alice / Bob", msg.Subject)
	assert.NotEmpty(t, msg.Invite)

	require.Len(t, f.encoder.invites, 1)
	inv := f.encoder.invites[0]
	assert.Equal(t, "alice@example.com", inv.Organizer)
	assert.Equal(t, "bob@example.com", inv.Attendee)
	assert.Equal(t, base, inv.Stamp)
	assert.NotEmpty(t, inv.UID)

	require.Len(t, f.recorder.saved, 1)
	saved := f.recorder.saved[0]
	assert.Equal(t, id, saved.RequestID)
	assert.True(t, saved.Start.Equal(base.Add(3*time.Hour)))
	assert.Equal(t, MeetingDuration, saved.End.Sub(saved.Start))

	req, err := f.store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, req.Status)
	assert.True(t, req.Persisted)
}

func TestConfirmSlot_MeetingIsOneHourFromSlotStart(t *testing.T) {
	f := newFixture(t)
	long := []interval.Interval{interval.New(base, base.Add(4*time.Hour))}
	result, err := f.workflow.ProposeSlots(context.Background(), bob(), StaticSlots(long))
	require.NoError(t, err)

	_, err = f.workflow.ConfirmSlot(context.Background(), result.RequestID, 0)
	require.NoError(t, err)

	inv := f.encoder.invites[0]
	assert.True(t, inv.Start.Equal(base))
	assert.True(t, inv.End.Equal(base.Add(time.Hour)))
}

func TestConfirmSlot_UnknownRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.ConfirmSlot(context.Background(), "missing", 0)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.notifier.sent)
}

func TestConfirmSlot_InvalidIndexMarksError(t *testing.T) {
	f := newFixture(t)
	id := proposed(t, f)

	_, err := f.workflow.ConfirmSlot(context.Background(), id, 999)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	req, err := f.store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusError, req.Status)
	assert.Nil(t, req.SelectedSlot)
	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.recorder.saved)
}

func TestConfirmSlot_DeliveryFailureSkipsPersistence(t *testing.T) {
	f := newFixture(t)
	id := proposed(t, f)
	f.notifier.err = errors.New("smtp down")

	conf, err := f.workflow.ConfirmSlot(context.Background(), id, 0)
	require.NoError(t, err)

	assert.Equal(t, ResultError, conf.Status)
	assert.False(t, conf.EmailSent)
	assert.False(t, conf.CalendarSaved)
	assert.Empty(t, f.recorder.saved)

	req, err := f.store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, req.Status)
	assert.False(t, req.Persisted)
}

func TestConfirmSlot_PersistenceFailureIsPartial(t *testing.T) {
	f := newFixture(t)
	id := proposed(t, f)
	f.recorder.err = errors.New("calendar quota")

	conf, err := f.workflow.ConfirmSlot(context.Background(), id, 0)
	require.NoError(t, err)

	assert.Equal(t, ResultPartial, conf.Status)
	assert.True(t, conf.EmailSent)
	assert.False(t, conf.CalendarSaved)
	assert.Contains(t, conf.Message, "calendar quota")

	req, err := f.store.Get(id)
	require.NoError(t, err)
	assert.False(t, req.Persisted)
}

func TestConfirmSlot_EncoderFailureStillSends(t *testing.T) {
	f := newFixture(t)
	id := proposed(t, f)
	f.encoder.err = errors.New("bad invite")

	conf, err := f.workflow.ConfirmSlot(context.Background(), id, 0)
	require.NoError(t, err)

	assert.True(t, conf.EmailSent)
	require.Len(t, f.notifier.sent, 1)
	assert.Nil(t, f.notifier.sent[0].Invite)
	assert.NotContains(t, f.notifier.sent[0].Body, "invite is attached")
}

func TestConfirmSlot_BodyMentionsAttachedInvite(t *testing.T) {
	f := newFixture(t)
	id := proposed(t, f)

	_, err := f.workflow.ConfirmSlot(context.Background(), id, 0)
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].Body, "A calendar invite is attached.")
}

func TestConfirmSlot_WithoutEncoderSendsNoInvite(t *testing.T) {
	notifier := &fakeNotifier{}
	w, err := NewWorkflow(WorkflowConfig{
		Store:    NewStore(),
		Notifier: notifier,
		Recorder: &fakeRecorder{},
		Logger:   logging.Discard(),
	})
	require.NoError(t, err)
	result, err := w.ProposeSlots(context.Background(), bob(), StaticSlots(testSlots()))
	require.NoError(t, err)

	_, err = w.ConfirmSlot(context.Background(), result.RequestID, 0)
	require.NoError(t, err)

	require.Len(t, notifier.sent, 2)
	confirmation := notifier.sent[1]
	assert.Empty(t, confirmation.Invite)
	assert.Contains(t, confirmation.Body, "confirmed for")
	assert.NotContains(t, confirmation.Body, "invite is attached")
}

func TestConfirmSlot_ScheduledRequestIsFinal(t *testing.T) {
	f := newFixture(t)
	id := proposed(t, f)

	_, err := f.workflow.ConfirmSlot(context.Background(), id, 0)
	require.NoError(t, err)

	_, err = f.workflow.ConfirmSlot(context.Background(), id, 99)
	assert.ErrorIs(t, err, ErrAlreadyScheduled)

	req, err := f.store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, req.Status)
	assert.True(t, req.Persisted)
	require.NotNil(t, req.SelectedSlot)

	_, err = f.workflow.ConfirmSlot(context.Background(), id, 1)
	assert.ErrorIs(t, err, ErrAlreadyScheduled)

	req, err = f.store.Get(id)
	require.NoError(t, err)
	assert.True(t, testSlots()[0].Equal(*req.SelectedSlot))
	assert.Len(t, f.notifier.sent, 1)
	assert.Len(t, f.recorder.saved, 1)
}

func TestConfirmSlot_FailedRequestRejectsReply(t *testing.T) {
	f := newFixture(t)
	id := proposed(t, f)

	_, err := f.workflow.ConfirmSlot(context.Background(), id, 99)
	require.ErrorIs(t, err, ErrInvalidIndex)

	_, err = f.workflow.ConfirmSlot(context.Background(), id, 0)
	assert.ErrorIs(t, err, ErrRequestFailed)

	req, err := f.store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusError, req.Status)
	assert.Nil(t, req.SelectedSlot)
	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.recorder.saved)
}

func TestSaveMeeting(t *testing.T) {
	f := newFixture(t)
	id := proposed(t, f)

	err := f.workflow.SaveMeeting(context.Background(), Meeting{
		RequestID: id,
		Email:     "bob@example.com",
		Title:     "Coffee",
		Start:     base,
		End:       base.Add(time.Hour),
	})
	require.NoError(t, err)

	req, err := f.store.Get(id)
	require.NoError(t, err)
	assert.True(t, req.Persisted)
	assert.Equal(t, "Coffee", f.recorder.saved[0].Title)
}

func TestSaveMeeting_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		meeting Meeting
	}{
		{name: "missing email", meeting: Meeting{Start: base, End: base.Add(time.Hour)}},
		{name: "end before start", meeting: Meeting{Email: "bob@example.com", Start: base, End: base.Add(-time.Hour)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, f.workflow.SaveMeeting(context.Background(), tt.meeting))
		})
	}
	assert.Empty(t, f.recorder.saved)
}

func TestSaveMeeting_UnknownRequestIsNotAnError(t *testing.T) {
	f := newFixture(t)

	err := f.workflow.SaveMeeting(context.Background(), Meeting{
		RequestID: "missing",
		Email:     "bob@example.com",
		Start:     base,
		End:       base.Add(time.Hour),
	})
	assert.NoError(t, err)
	assert.Len(t, f.recorder.saved, 1)
}

func TestSaveMeeting_Errors(t *testing.T) {
	m := Meeting{Email: "bob@example.com", Start: base, End: base.Add(time.Hour)}

	w, err := NewWorkflow(WorkflowConfig{Store: NewStore(), Notifier: &fakeNotifier{}, Logger: logging.Discard()})
	require.NoError(t, err)
	assert.ErrorIs(t, w.SaveMeeting(context.Background(), m), ErrNotConfigured)

	f := newFixture(t)
	f.recorder.err = errors.New("403")
	assert.ErrorIs(t, f.workflow.SaveMeeting(context.Background(), m), ErrUpstream)
}
