package domain

import "testing"

func TestIsProtectedStage(t *testing.T) {
	protected := []string{StageAgendado, StageEmAtendimento, StagePosVenda, StageFinalizado}
	for _, stage := range protected {
		if !IsProtectedStage(stage) {
			t.Errorf("expected %s to be protected", stage)
		}
	}

	open := []string{StageNovoLead, StageEmNegociacao, StagePerdido}
	for _, stage := range open {
		if IsProtectedStage(stage) {
			t.Errorf("expected %s not to be protected", stage)
		}
	}
}

func TestIsKnownStage(t *testing.T) {
	if !IsKnownStage(StageNovoLead) {
		t.Error("expected NOVO_LEAD to be known")
	}
	if IsKnownStage("QUALQUER") {
		t.Error("expected QUALQUER to be unknown")
	}
}
