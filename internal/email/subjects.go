package email

const (
	subjectNewLead              = "Novo lead recebido"
	subjectAppointmentBooked    = "Agendamento confirmado"
	subjectAppointmentReminder  = "Lembrete: agendamento em breve"
	subjectAppointmentCancelled = "Agendamento cancelado"
)
