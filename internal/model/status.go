package model

// QuoteStatus is the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteApproved QuoteStatus = "approved"
	QuoteRejected QuoteStatus = "rejected"
	QuoteExpired  QuoteStatus = "expired"
)

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteDraft: {QuoteSent, QuoteApproved},
	QuoteSent:  {QuoteDraft, QuoteApproved, QuoteRejected, QuoteExpired},
}

// Valid reports whether s is a known quote status
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteDraft, QuoteSent, QuoteApproved, QuoteRejected, QuoteExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether the quote may move from s to next
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether items and rates may still change
func (s QuoteStatus) Editable() bool {
	return s == QuoteDraft || s == QuoteSent
}

// Terminal reports whether no further transition is possible
func (s QuoteStatus) Terminal() bool {
	return len(quoteTransitions[s]) == 0
}

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:   {InvoiceSent, InvoiceCancelled},
	InvoiceSent:    {InvoiceOverdue, InvoicePaid, InvoiceCancelled},
	InvoiceOverdue: {InvoicePaid, InvoiceCancelled},
}

// Valid reports whether s is a known invoice status
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoiceOverdue, InvoicePaid, InvoiceCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the invoice may move from s to next
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether items and rates may still change
func (s InvoiceStatus) Editable() bool {
	return s == InvoiceDraft
}

// AcceptsPayments reports whether payments may be recorded
func (s InvoiceStatus) AcceptsPayments() bool {
	return s == InvoiceSent || s == InvoiceOverdue
}

// Terminal reports whether no further transition is possible
func (s InvoiceStatus) Terminal() bool {
	return len(invoiceTransitions[s]) == 0
}
