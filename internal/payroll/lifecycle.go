package payroll

import (
	payrollerrors "github.com/faisallbhr/simple-hris/internal/payroll/errors"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusPaid     = "paid"
)

var Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusPaid}

// Lifecycle is the soft-delete axis of a payroll, independent of Status.
type Lifecycle string

const (
	LifecycleActive    Lifecycle = "active"
	LifecycleTrashed   Lifecycle = "trashed"
	LifecycleDestroyed Lifecycle = "destroyed"
)

type Event string

const (
	EventUpdate       Event = "update"
	EventApprove      Event = "approve"
	EventReject       Event = "reject"
	EventGenerateSlip Event = "generate_slip"
	EventUploadProof  Event = "upload_payment_proof"
	EventDelete       Event = "delete"
	EventRestore      Event = "restore"
	EventForceDelete  Event = "force_delete"
)

// EventForStatus maps a requested decision to its lifecycle event.
func EventForStatus(status string) (Event, bool) {
	switch status {
	case StatusApproved:
		return EventApprove, true
	case StatusRejected:
		return EventReject, true
	}
	return "", false
}

// CheckTransition is the single guard for every payroll mutation. It returns
// the status the payroll holds once the event is applied.
func CheckTransition(p *Payroll, event Event) (string, error) {
	lifecycle := p.Lifecycle()

	switch event {
	case EventRestore, EventForceDelete:
		if lifecycle != LifecycleTrashed {
			return "", payrollerrors.ErrPayrollNotTrashed
		}
		return p.Status, nil
	}

	if lifecycle != LifecycleActive {
		return "", payrollerrors.ErrPayrollTrashed
	}

	switch event {
	case EventUpdate:
		if p.Status != StatusPending {
			return "", payrollerrors.ErrUpdateOnlyPending
		}
		return StatusPending, nil

	case EventApprove, EventReject:
		if p.Status != StatusPending {
			return "", payrollerrors.ErrStatusOnlyPending
		}
		if event == EventApprove {
			return StatusApproved, nil
		}
		return StatusRejected, nil

	case EventGenerateSlip:
		if p.Status != StatusApproved {
			return "", payrollerrors.ErrGenerateOnlyApproved
		}
		if p.IsGenerated {
			return "", payrollerrors.ErrSlipAlreadyGenerated
		}
		return StatusApproved, nil

	case EventUploadProof:
		if p.Status != StatusApproved {
			return "", payrollerrors.ErrProofOnlyApproved
		}
		if !p.IsGenerated {
			return "", payrollerrors.ErrProofRequiresSlip
		}
		if p.PaymentProof != nil && *p.PaymentProof != "" {
			return "", payrollerrors.ErrProofAlreadyUploaded
		}
		return StatusPaid, nil

	case EventDelete:
		if p.Status != StatusPending {
			return "", payrollerrors.ErrDeleteOnlyPending
		}
		return StatusPending, nil
	}

	return "", payrollerrors.ErrInvalidStatusTransition
}
