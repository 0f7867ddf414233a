package webhook

import (
	"context"
	"net/http"
	"testing"

	"upboost_crm_backend/internal/leads"
	leadsdomain "upboost_crm_backend/internal/leads/domain"
	"upboost_crm_backend/internal/leads/repository"
	"upboost_crm_backend/platform/apperr"
	"upboost_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeReconciler struct {
	result   *leads.Result
	err      error
	calls    int
	policies []leads.Policy
	inputs   []leads.Input
}

func (f *fakeReconciler) Reconcile(_ context.Context, policy leads.Policy, in leads.Input) (*leads.Result, error) {
	f.calls++
	f.policies = append(f.policies, policy)
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeAudit struct {
	entries []LogEntry
}

func (f *fakeAudit) Insert(_ context.Context, entry *LogEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

type fakeOwnerConfig struct {
	emails []string
}

func (f *fakeOwnerConfig) GetOperatorEmails() []string { return f.emails }

type fakeNotifier struct {
	sent int
	to   string
}

func (f *fakeNotifier) SendNewLeadEmail(_ context.Context, toEmail, _, _, _ string) error {
	f.sent++
	f.to = toEmail
	return nil
}

func createdResult() *leads.Result {
	return &leads.Result{
		Lead: &repository.Lead{
			ID:      uuid.New(),
			Name:    "Maria Souza",
			Phone:   "5511999887766",
			Source:  leadsdomain.SourceAnuncio,
			Stage:   leadsdomain.StageNovoLead,
			OwnerID: uuid.New(),
		},
		Action:  leads.ActionCreated,
		Created: true,
	}
}

func newTestService(rec *fakeReconciler, audit *fakeAudit) *Service {
	return NewService(rec, audit, &fakeOwnerConfig{}, logger.New("development"))
}

func TestHandleBotconversaCreatesLead(t *testing.T) {
	rec := &fakeReconciler{result: createdResult()}
	audit := &fakeAudit{}
	svc := newTestService(rec, audit)

	raw := []byte(`{"name": "Maria Souza", "phone": "5511999887766", "source": "anuncio"}`)
	outcome := svc.HandleBotconversa(context.Background(), EventMessage, raw)

	if outcome.HTTPStatus != http.StatusCreated {
		t.Fatalf("expected 201, got %d", outcome.HTTPStatus)
	}
	if outcome.Status != StatusProcessed {
		t.Errorf("expected processed status, got %q", outcome.Status)
	}
	if outcome.Action != leads.ActionCreated {
		t.Errorf("expected created action, got %q", outcome.Action)
	}
	if outcome.LeadID == nil {
		t.Error("expected lead id on outcome")
	}
	if len(rec.policies) != 1 || !rec.policies[0].UpdateName {
		t.Error("botconversa should reconcile with name updates enabled")
	}
	if rec.inputs[0].SourceHint != "anuncio" {
		t.Errorf("expected source hint forwarded, got %q", rec.inputs[0].SourceHint)
	}
}

func TestHandleBotconversaExistingLeadReturns200(t *testing.T) {
	result := createdResult()
	result.Created = false
	result.Action = leads.ActionUpdated
	rec := &fakeReconciler{result: result}
	svc := newTestService(rec, &fakeAudit{})

	outcome := svc.HandleBotconversa(context.Background(), EventMessage,
		[]byte(`{"name": "Maria", "phone": "5511999887766"}`))

	if outcome.HTTPStatus != http.StatusOK {
		t.Fatalf("expected 200 for existing lead, got %d", outcome.HTTPStatus)
	}
	if outcome.Action != leads.ActionUpdated {
		t.Errorf("expected updated action, got %q", outcome.Action)
	}
}

func TestHandleBotconversaInvalidJSON(t *testing.T) {
	rec := &fakeReconciler{}
	svc := newTestService(rec, &fakeAudit{})

	outcome := svc.HandleBotconversa(context.Background(), EventMessage, []byte(`{not json`))

	if outcome.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", outcome.HTTPStatus)
	}
	if outcome.Status != StatusError {
		t.Errorf("expected error status, got %q", outcome.Status)
	}
	if rec.calls != 0 {
		t.Error("malformed payload must not reach the reconciler")
	}
}

func TestHandleBotconversaTestConnection(t *testing.T) {
	rec := &fakeReconciler{}
	svc := newTestService(rec, &fakeAudit{})

	outcome := svc.HandleBotconversa(context.Background(), EventMessage, []byte(`{"test": true}`))

	if outcome.HTTPStatus != http.StatusOK {
		t.Fatalf("expected 200, got %d", outcome.HTTPStatus)
	}
	if outcome.Status != StatusIgnored {
		t.Errorf("expected ignored status, got %q", outcome.Status)
	}
	if rec.calls != 0 {
		t.Error("test connection must not reach the reconciler")
	}
}

func TestHandleBotconversaValidationError(t *testing.T) {
	rec := &fakeReconciler{err: apperr.Validation("phone number is required")}
	svc := newTestService(rec, &fakeAudit{})

	outcome := svc.HandleBotconversa(context.Background(), EventMessage,
		[]byte(`{"name": "Sem Telefone"}`))

	if outcome.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", outcome.HTTPStatus)
	}
	if outcome.Status != StatusError {
		t.Errorf("expected error status, got %q", outcome.Status)
	}
	if outcome.Err == nil {
		t.Error("expected error carried on outcome")
	}
}

func TestHandleEvolutionMessage(t *testing.T) {
	rec := &fakeReconciler{result: createdResult()}
	svc := newTestService(rec, &fakeAudit{})

	raw := []byte(`{
		"event": "messages.upsert",
		"instance": "vendas",
		"data": {"key": {"remoteJid": "5511988776655@s.whatsapp.net", "fromMe": false}, "pushName": "Carlos"}
	}`)
	outcome := svc.HandleEvolution(context.Background(), raw)

	if outcome.Status != StatusProcessed {
		t.Fatalf("expected processed status, got %q", outcome.Status)
	}
	if outcome.Event != "messages.upsert" {
		t.Errorf("expected event captured, got %q", outcome.Event)
	}
	if len(rec.policies) != 1 || rec.policies[0].UpdateName {
		t.Error("evolution push names must not overwrite curated lead names")
	}
	if rec.inputs[0].Phone != "5511988776655" {
		t.Errorf("expected phone from JID, got %q", rec.inputs[0].Phone)
	}
}

func TestHandleEvolutionIgnoresOwnMessages(t *testing.T) {
	rec := &fakeReconciler{}
	svc := newTestService(rec, &fakeAudit{})

	raw := []byte(`{
		"event": "messages.upsert",
		"data": {"key": {"remoteJid": "5511988776655@s.whatsapp.net", "fromMe": true}}
	}`)
	outcome := svc.HandleEvolution(context.Background(), raw)

	if outcome.Status != StatusIgnored {
		t.Fatalf("expected ignored status, got %q", outcome.Status)
	}
	if outcome.HTTPStatus != http.StatusOK {
		t.Errorf("ignored events still acknowledge with 200, got %d", outcome.HTTPStatus)
	}
	resp, ok := outcome.Response.(ignoredResponse)
	if !ok || !resp.Ignored || resp.Reason != "Message from me" {
		t.Errorf("got response %+v, want ignored with reason %q", outcome.Response, "Message from me")
	}
	if rec.calls != 0 {
		t.Error("own messages must not reach the reconciler")
	}
}

func TestHandleEvolutionIgnoresOtherEvents(t *testing.T) {
	rec := &fakeReconciler{}
	svc := newTestService(rec, &fakeAudit{})

	outcome := svc.HandleEvolution(context.Background(),
		[]byte(`{"event": "connection.update", "data": {}}`))

	if outcome.Status != StatusIgnored {
		t.Fatalf("expected ignored status, got %q", outcome.Status)
	}
	resp, ok := outcome.Response.(ignoredResponse)
	if !ok || resp.Reason != "Unsupported event" {
		t.Errorf("got response %+v, want ignored with reason %q", outcome.Response, "Unsupported event")
	}
	if rec.calls != 0 {
		t.Error("non-message events must not reach the reconciler")
	}
}

func TestRecordWritesOneAuditRowPerOutcome(t *testing.T) {
	rec := &fakeReconciler{result: createdResult()}
	audit := &fakeAudit{}
	svc := newTestService(rec, audit)
	ctx := context.Background()

	outcomes := []Outcome{
		svc.HandleBotconversa(ctx, EventMessage, []byte(`{"name": "A", "phone": "5511999887766"}`)),
		svc.HandleBotconversa(ctx, EventMessage, []byte(`{bad`)),
		svc.HandleEvolution(ctx, []byte(`{"event": "connection.update"}`)),
	}
	for _, o := range outcomes {
		svc.Record(ctx, o, []byte(`{}`))
	}

	if len(audit.entries) != len(outcomes) {
		t.Fatalf("expected %d audit rows, got %d", len(outcomes), len(audit.entries))
	}
	if audit.entries[0].Status != StatusProcessed {
		t.Errorf("expected first row processed, got %q", audit.entries[0].Status)
	}
	if audit.entries[1].Status != StatusError || audit.entries[1].Error == nil {
		t.Error("expected second row to carry the error")
	}
	if audit.entries[2].Status != StatusIgnored {
		t.Errorf("expected third row ignored, got %q", audit.entries[2].Status)
	}
	if audit.entries[0].LeadID == nil {
		t.Error("processed row should reference the lead")
	}
}

func TestNewLeadNotificationGoesToFirstOperator(t *testing.T) {
	rec := &fakeReconciler{result: createdResult()}
	svc := NewService(rec, &fakeAudit{},
		&fakeOwnerConfig{emails: []string{"dherick@upboost.pro", "kelwin@upboost.com"}},
		logger.New("development"))
	notifier := &fakeNotifier{}
	svc.SetNewLeadNotifier(notifier)

	svc.HandleBotconversa(context.Background(), EventMessage,
		[]byte(`{"name": "Maria", "phone": "5511999887766"}`))

	if notifier.sent != 1 {
		t.Fatalf("expected one notification, got %d", notifier.sent)
	}
	if notifier.to != "dherick@upboost.pro" {
		t.Errorf("expected first operator notified, got %q", notifier.to)
	}
}

func TestNoNotificationOnExistingLead(t *testing.T) {
	result := createdResult()
	result.Created = false
	result.Action = leads.ActionUpdated
	rec := &fakeReconciler{result: result}
	svc := NewService(rec, &fakeAudit{},
		&fakeOwnerConfig{emails: []string{"dherick@upboost.pro"}},
		logger.New("development"))
	notifier := &fakeNotifier{}
	svc.SetNewLeadNotifier(notifier)

	svc.HandleBotconversa(context.Background(), EventMessage,
		[]byte(`{"name": "Maria", "phone": "5511999887766"}`))

	if notifier.sent != 0 {
		t.Fatalf("existing leads must not trigger new-lead email, sent %d", notifier.sent)
	}
}

func TestNovoContatoIsCreateOnly(t *testing.T) {
	result := createdResult()
	result.Created = false
	result.Action = leads.ActionAlreadyExists
	rec := &fakeReconciler{result: result}
	svc := newTestService(rec, &fakeAudit{})

	outcome := svc.HandleBotconversa(context.Background(), EventNewContact,
		[]byte(`{"name": "Maria", "phone": "5511999887766"}`))

	if len(rec.policies) != 1 || !rec.policies[0].CreateOnly {
		t.Fatal("novo-contato must reconcile with the create-only policy")
	}
	if outcome.HTTPStatus != http.StatusOK {
		t.Errorf("expected 200 for an existing contact, got %d", outcome.HTTPStatus)
	}
	if outcome.Action != leads.ActionAlreadyExists {
		t.Errorf("expected already_exists action, got %q", outcome.Action)
	}
}
