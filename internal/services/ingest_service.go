package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/oakline/callbridge/internal/models"
	"github.com/oakline/callbridge/internal/pipeline/pseudo"
	"github.com/oakline/callbridge/internal/pipeline/redact"
	"github.com/oakline/callbridge/internal/pipeline/resolve"
	"github.com/oakline/callbridge/internal/pipeline/schedule"
	"github.com/oakline/callbridge/internal/pipeline/sensitive"
	"github.com/oakline/callbridge/internal/pipeline/transcript"
	"github.com/oakline/callbridge/internal/providers/stt"
	mongorepo "github.com/oakline/callbridge/internal/repositories/mongo"
	pgrepo "github.com/oakline/callbridge/internal/repositories/postgres"
	"github.com/oakline/callbridge/internal/utils"
)

// IngestResult is what the webhook handler echoes back to the platform.
type IngestResult struct {
	CallID      string
	BusinessID  string
	MessageType string
	Status      string
	Warning     string
}

type IngestService interface {
	Process(ctx context.Context, body []byte) (*IngestResult, error)
}

// IngestDeps wires the pipeline. Events and STT are optional: a nil audit
// repo skips archiving, a nil provider skips the recording fallback.
type IngestDeps struct {
	Calls    pgrepo.CallRepository
	Training pgrepo.TrainingRepository
	Events   mongorepo.EventLogRepository
	Tenants  TenantResolver
	Pseudo   *pseudo.Engine
	Redactor *redact.Engine
	Detector *sensitive.Detector
	STT      stt.Provider
	Outputs  map[string]string
	Logger   *logrus.Logger
}

type ingestService struct {
	d IngestDeps
}

func NewIngestService(d IngestDeps) IngestService {
	return &ingestService{d: d}
}

// Process runs one delivery through the full pipeline: resolve scalars,
// reconstruct the transcript, parse the schedule, upsert the operational
// record, and on the terminal event derive and upsert the training twin.
// The twin write is its own failure domain; its errors are logged, never
// returned.
func (s *ingestService) Process(ctx context.Context, body []byte) (*IngestResult, error) {
	const op = "IngestService.Process"

	ev, err := resolve.ParseEvent(body)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "malformed event payload", err)
	}
	r := resolve.New(ev, s.d.Outputs)

	callID := r.CallID()
	if callID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "missing call identifier", nil)
	}

	s.archive(ctx, callID, ev.Type, body)

	res := &IngestResult{CallID: callID, MessageType: ev.Type, Status: r.Status()}

	biz, err := s.d.Tenants.Resolve(ctx, r.CalledNumber(), r.WorkflowID())
	if err != nil {
		// resolution infrastructure trouble is downgraded to a miss: the
		// event is still accepted and recorded without a tenant
		s.d.Logger.WithError(err).WithField("call_id", callID).Warn("tenant lookup failed")
		biz = nil
	}
	if biz == nil {
		res.Warning = "no matching business for event"
	} else {
		res.BusinessID = biz.ID
	}

	names := s.knownNames(biz, r.CallerName())
	loc := businessLocation(biz)

	rawTranscript, turns := s.reconstruct(ctx, r)

	tAssess := s.d.Detector.Assess(rawTranscript, names)
	sAssess := s.d.Detector.Assess(r.Summary(), names)

	sched := schedule.FromBooking(r.Booking(), loc)
	if sched == nil {
		sched = schedule.FromSlots(r.SlotVariables(), loc)
	}

	rec, cols := s.buildOperational(r, res, biz, tAssess.Sanitized, sAssess.Sanitized, turns, sched)
	if err := s.d.Calls.Upsert(ctx, rec, cols); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist call record", err)
	}

	if r.IsTerminal() {
		twin := s.buildTwin(ctx, r, rec, biz, rawTranscript, tAssess, sAssess, turns, names)
		if err := s.d.Training.Upsert(ctx, twin); err != nil {
			s.d.Logger.WithError(err).WithField("call_id", callID).Error("training twin persist failed")
		}
	}

	return res, nil
}

// archive stores the raw delivery in the audit log. Best effort: failures
// are logged and swallowed, same as the training twin's failure domain.
func (s *ingestService) archive(ctx context.Context, callID, kind string, body []byte) {
	if s.d.Events == nil {
		return
	}
	entry := &models.EventLog{
		DeliveryID: uuid.NewString(),
		CallID:     callID,
		Type:       kind,
		Payload:    string(body),
	}
	if err := s.d.Events.Insert(ctx, entry); err != nil {
		s.d.Logger.WithError(err).WithField("call_id", callID).Warn("event archive failed")
	}
}

// reconstruct prefers the structured message array, degrades to the raw
// transcript string, and on a terminal report with neither asks the stt
// provider to transcribe the recording.
func (s *ingestService) reconstruct(ctx context.Context, r *resolve.Resolver) (string, []models.ConversationTurn) {
	raw := r.Transcript()
	turns := transcript.Reconstruct(r.Messages())
	if len(turns) == 0 && raw != "" {
		turns = transcript.Reconstruct(raw)
	}
	if raw == "" && len(turns) > 0 {
		raw = renderTurns(turns)
	}

	if raw == "" && r.IsTerminal() && s.d.STT != nil && r.RecordingURL() != "" {
		text, _, err := s.d.STT.TranscribeURI(ctx, r.RecordingURL(), "")
		if err != nil {
			s.d.Logger.WithError(err).WithField("call_id", r.CallID()).Warn("recording transcription failed")
		} else if text != "" {
			raw = text
			if len(turns) == 0 {
				turns = transcript.Reconstruct(text)
			}
		}
	}
	return raw, turns
}

// buildOperational assembles the upsert payload and the column list this
// event is allowed to overwrite, so sparse late deliveries never blank out
// fields an earlier event filled.
func (s *ingestService) buildOperational(
	r *resolve.Resolver,
	res *IngestResult,
	biz *models.Business,
	sanitizedTranscript, sanitizedSummary string,
	turns []models.ConversationTurn,
	sched *models.Schedule,
) (*models.CallRecord, []string) {
	now := time.Now().UTC()
	rec := &models.CallRecord{
		CallID:    res.CallID,
		Status:    res.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	cols := []string{"status", "updated_at"}

	if biz != nil {
		rec.BusinessID = &biz.ID
		rec.ProgramID = biz.ProgramID
		cols = append(cols, "business_id", "program_id")
	}

	phone, name, email := r.CallerPhone(), r.CallerName(), r.CallerEmail()
	if phone != "" {
		rec.CallerPhone = phone
		cols = append(cols, "caller_phone")
	}
	if name != "" {
		rec.CallerName = name
		cols = append(cols, "caller_name")
	}
	if email != "" {
		rec.CallerEmail = email
		cols = append(cols, "caller_email")
	}

	// Always set on insert; only overwritten once a real identity exists,
	// so the per-event placeholder for unidentified callers never churns a
	// stored linkage.
	rec.PatientFingerprint = s.d.Pseudo.Fingerprint(phone, email, name)
	if phone != "" || email != "" || name != "" {
		cols = append(cols, "patient_fingerprint")
	}

	if sanitizedTranscript != "" {
		rec.Transcript = sanitizedTranscript
		cols = append(cols, "transcript")
	}
	if len(turns) > 0 {
		rec.Turns = mustJSON(turns)
		cols = append(cols, "turns")
	}
	if sanitizedSummary != "" {
		rec.Summary = sanitizedSummary
		cols = append(cols, "summary")
	}
	if intent := r.Intent(); intent != "" {
		rec.Intent = intent
		cols = append(cols, "intent")
	}
	if conf := r.Confidence(); conf > 0 {
		rec.Confidence = conf
		cols = append(cols, "confidence")
	}
	if sched != nil {
		rec.Schedule = mustJSON(sched)
		cols = append(cols, "schedule")
	}
	if esc := r.Escalation(); esc != nil {
		rec.Escalation = mustJSON(esc)
		cols = append(cols, "escalation")
	}
	if t := r.StartedAt(); t != nil {
		rec.StartedAt = t
		cols = append(cols, "started_at")
	}
	if t := r.EndedAt(); t != nil {
		rec.EndedAt = t
		cols = append(cols, "ended_at")
	}
	if reason := r.EndedReason(); reason != "" {
		rec.EndedReason = reason
		cols = append(cols, "ended_reason")
	}

	return rec, cols
}

// buildTwin derives the de-identified sibling record. Every identity field
// is tokenized, every text field redacted, and the only date that survives
// is the year-month of the call.
func (s *ingestService) buildTwin(
	ctx context.Context,
	r *resolve.Resolver,
	rec *models.CallRecord,
	biz *models.Business,
	rawTranscript string,
	tAssess, sAssess sensitive.Assessment,
	turns []models.ConversationTurn,
	names []string,
) *models.TrainingCallRecord {
	name, phone, email, fingerprint := s.twinIdentity(ctx, r, rec)
	if r.CallerName() == "" && name != "" {
		names = append(names, name)
	}

	now := time.Now().UTC()
	twin := &models.TrainingCallRecord{
		CallID:             rec.CallID,
		Status:             rec.Status,
		CallerNameToken:    s.d.Pseudo.Token(name, pseudo.NamespaceName),
		CallerPhoneToken:   s.d.Pseudo.Token(phone, pseudo.NamespacePhone),
		CallerEmailToken:   s.d.Pseudo.Token(email, pseudo.NamespaceEmail),
		PatientFingerprint: fingerprint,
		Intent:             rec.Intent,
		Confidence:         rec.Confidence,
		Escalated:          rec.Escalation != nil,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if biz != nil {
		twin.BusinessID = &biz.ID
	}

	// The detector hardens sensitive narratives itself; everything else
	// still goes through the standard redaction pipeline.
	twin.Transcript = s.trainingText(rawTranscript, tAssess, names)
	twin.Summary = s.trainingText(sAssess.Sanitized, sAssess, names)

	if len(turns) > 0 {
		redacted := make([]models.ConversationTurn, len(turns))
		for i, t := range turns {
			rt := t
			rt.Text = s.d.Redactor.Redact(t.Text, names)
			rt.Timestamp = nil // turn timestamps are day-precise
			redacted[i] = rt
		}
		twin.Turns = mustJSON(redacted)
	}

	if cats := union(tAssess.Categories, sAssess.Categories); len(cats) > 0 {
		twin.SensitiveCategories = mustJSON(cats)
	}

	month := now
	if rec.EndedAt != nil {
		month = *rec.EndedAt
	} else if rec.StartedAt != nil {
		month = *rec.StartedAt
	}
	twin.CallMonth = month.UTC().Format("2006-01")

	return twin
}

// twinIdentity merges the terminal event's identity fields with the stored
// record's. Identity often arrives on an early status or conversation event
// and is absent from the terminal report, and the twin must tokenize the
// merged view, not just the last delivery.
func (s *ingestService) twinIdentity(ctx context.Context, r *resolve.Resolver, rec *models.CallRecord) (name, phone, email, fingerprint string) {
	name, phone, email = r.CallerName(), r.CallerPhone(), r.CallerEmail()
	fingerprint = rec.PatientFingerprint

	if name != "" && phone != "" && email != "" {
		return name, phone, email, fingerprint
	}

	prior, err := s.d.Calls.GetByCallID(ctx, rec.CallID)
	if err != nil {
		return name, phone, email, fingerprint
	}
	if name == "" {
		name = prior.CallerName
	}
	if phone == "" {
		phone = prior.CallerPhone
	}
	if email == "" {
		email = prior.CallerEmail
	}

	switch {
	case name != "" || phone != "" || email != "":
		fingerprint = s.d.Pseudo.Fingerprint(phone, email, name)
	case prior.PatientFingerprint != "":
		// No identity anywhere: keep the placeholder already stored so the
		// twin and the operational record stay linked.
		fingerprint = prior.PatientFingerprint
	}
	return name, phone, email, fingerprint
}

func (s *ingestService) trainingText(text string, a sensitive.Assessment, names []string) string {
	if len(a.Categories) > 0 {
		return a.Training
	}
	return s.d.Redactor.Redact(text, names)
}

// knownNames builds the redaction allow-list: the business's registered
// names plus the caller's own.
func (s *ingestService) knownNames(biz *models.Business, callerName string) []string {
	var names []string
	if biz != nil {
		names = append(names, biz.KnownNames...)
	}
	if strings.TrimSpace(callerName) != "" {
		names = append(names, callerName)
	}
	return names
}

func businessLocation(biz *models.Business) *time.Location {
	if biz == nil || biz.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(biz.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func renderTurns(turns []models.ConversationTurn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		label := "User"
		if t.Role == models.RoleAssistant {
			label = "AI"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(t.Text)
	}
	return b.String()
}

func union(a, b []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func mustJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
