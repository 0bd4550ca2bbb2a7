package email

const (
	subjectRequestReceivedFmt     = "Recibimos tu solicitud de adopción %s"
	subjectAppointmentConfirmed   = "Tu visita está confirmada"
	subjectAppointmentRescheduled = "Tu visita cambió de horario"
	subjectAppointmentReminder    = "Recordatorio: tu visita es mañana"
	subjectEvaluationAdvanced     = "¡Tu visita salió muy bien!"
	subjectEvaluationNotAdvanced  = "Resultado de tu visita"
	subjectAdoptionApprovedFmt    = "¡Felicidades! Adopción %s aprobada"
	subjectAdoptionRejectedFmt    = "Resolución de tu solicitud %s"
)
