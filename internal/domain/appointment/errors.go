package appointment

// Business error codes surfaced by the booking use cases.
const (
	CodeCatalogMismatch      = "catalog_mismatch"
	CodeMembershipRequired   = "membership_required"
	CodeSlotExhausted        = "slot_exhausted"
	CodeSlotNotFound         = "slot_not_found"
	CodeDateNotScheduled     = "date_not_scheduled"
	CodeInvalidDate          = "invalid_date"
	CodeInvalidRecurrence    = "invalid_recurrence"
	CodeDateInPast           = "date_in_past"
	CodeInvalidStatus        = "invalid_status"
	CodeInvalidCategory      = "invalid_cancellation_category"
	CodeAppointmentNotFound  = "appointment_not_found"
	CodeIntentNotFound       = "intent_not_found"
	CodeIntentExpired        = "intent_expired"
	CodeIntentFailed         = "intent_failed"
	CodePaymentNotCompleted  = "payment_not_completed"
	CodeAmountMismatch       = "payment_amount_mismatch"
	CodePaymentProvider      = "payment_provider_error"
	CodePaymentsDisabled     = "payments_disabled"
	CodeConfirmationBusy     = "confirmation_in_progress"
	CodeStorageDisabled      = "storage_disabled"
	CodeUnsupportedFile      = "unsupported_file"
	CodeForbiddenAppointment = "forbidden_appointment"
)
