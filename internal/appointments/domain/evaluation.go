// Package domain holds the pure decision rules for visit evaluation.
// No persistence or transport concerns live here.
package domain

import "patitas_backend/platform/apperr"

// Attendance records whether the requester showed up for the visit.
type Attendance string

const (
	// AttendanceAttended means the requester was present for the visit.
	AttendanceAttended Attendance = "attended"
	// AttendanceNoShowOrUnfit means the requester missed the visit or was
	// turned away before the interaction took place.
	AttendanceNoShowOrUnfit Attendance = "no_show_or_unfit"
)

// Interaction records how the supervised visit went.
type Interaction string

const (
	// InteractionGoodApproved means staff judged the visit positively.
	InteractionGoodApproved Interaction = "good_approved"
	// InteractionUnfit means staff judged the requester unsuitable.
	InteractionUnfit Interaction = "unfit"
)

// AppointmentStatus is the lifecycle state of a visit appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// RequestStatus is the lifecycle state of an adoption request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestInReview RequestStatus = "in_review"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Outcome is the resolved effect of recording a visit evaluation.
type Outcome struct {
	// Interaction is the effective interaction, which may be forced to
	// unfit when the requester did not attend.
	Interaction Interaction
	// AppointmentStatus is the terminal status the appointment moves to.
	AppointmentStatus AppointmentStatus
	// RequestStatus is the status the linked request moves to.
	RequestStatus RequestStatus
	// FreesAnimal is true when the animal returns to the adoptable pool.
	FreesAnimal bool
}

// RequestAdvanced reports whether the outcome moved the request forward
// toward review rather than back or nowhere.
func (o Outcome) RequestAdvanced() bool {
	return o.RequestStatus == RequestInReview
}

// ResolveEvaluation maps a recorded attendance and interaction to the
// lifecycle transitions they imply. A no-show overrides whatever
// interaction was submitted: there was no visit to judge, so the
// interaction is forced to unfit and the request stays pending, letting
// the requester book another visit. An attended visit requires an
// explicit interaction.
func ResolveEvaluation(attendance Attendance, interaction Interaction) (Outcome, error) {
	switch attendance {
	case AttendanceNoShowOrUnfit:
		return Outcome{
			Interaction:       InteractionUnfit,
			AppointmentStatus: AppointmentCancelled,
			RequestStatus:     RequestPending,
			FreesAnimal:       false,
		}, nil

	case AttendanceAttended:
		switch interaction {
		case InteractionGoodApproved:
			return Outcome{
				Interaction:       InteractionGoodApproved,
				AppointmentStatus: AppointmentCompleted,
				RequestStatus:     RequestInReview,
				FreesAnimal:       false,
			}, nil
		case InteractionUnfit:
			return Outcome{
				Interaction:       InteractionUnfit,
				AppointmentStatus: AppointmentCancelled,
				RequestStatus:     RequestRejected,
				FreesAnimal:       true,
			}, nil
		case "":
			return Outcome{}, apperr.Validation("interaction is required when the requester attended")
		default:
			return Outcome{}, apperr.Validation("interaction must be good_approved or unfit")
		}

	default:
		return Outcome{}, apperr.Validation("attendance must be attended or no_show_or_unfit")
	}
}
