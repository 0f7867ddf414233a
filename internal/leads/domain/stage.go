// Package domain provides core business rules for the leads bounded context.
package domain

const (
	StageNovoLead      = "NOVO_LEAD"
	StageEmNegociacao  = "EM_NEGOCIACAO"
	StageAgendado      = "AGENDADO"
	StageEmAtendimento = "EM_ATENDIMENTO"
	StagePosVenda      = "POS_VENDA"
	StageFinalizado    = "FINALIZADO"
	StagePerdido       = "PERDIDO"
)

var knownStages = map[string]struct{}{
	StageNovoLead:      {},
	StageEmNegociacao:  {},
	StageAgendado:      {},
	StageEmAtendimento: {},
	StagePosVenda:      {},
	StageFinalizado:    {},
	StagePerdido:       {},
}

// protectedStages are stages that represent active commercial work.
// Inbound webhook traffic must never regress a lead out of them.
var protectedStages = map[string]bool{
	StageAgendado:      true,
	StageEmAtendimento: true,
	StagePosVenda:      true,
	StageFinalizado:    true,
}

// IsKnownStage reports whether the stage is part of the pipeline.
func IsKnownStage(stage string) bool {
	_, ok := knownStages[stage]
	return ok
}

// IsProtectedStage reports whether webhook reconciliation must leave the
// lead's stage untouched.
func IsProtectedStage(stage string) bool {
	return protectedStages[stage]
}
