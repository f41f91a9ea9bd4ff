package enums

import "fmt"

// InquiryStatus tracks a customer inquiry from submission to completion.
type InquiryStatus string

const (
	InquiryStatusPending   InquiryStatus = "pending"
	InquiryStatusQuoted    InquiryStatus = "quoted"
	InquiryStatusBooked    InquiryStatus = "booked"
	InquiryStatusCancelled InquiryStatus = "cancelled"
	InquiryStatusCompleted InquiryStatus = "completed"
)

var validInquiryStatuses = []InquiryStatus{
	InquiryStatusPending,
	InquiryStatusQuoted,
	InquiryStatusBooked,
	InquiryStatusCancelled,
	InquiryStatusCompleted,
}

// String implements fmt.Stringer.
func (i InquiryStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InquiryStatus.
func (i InquiryStatus) IsValid() bool {
	for _, candidate := range validInquiryStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (i InquiryStatus) IsTerminal() bool {
	return i == InquiryStatusCancelled || i == InquiryStatusCompleted
}

// ParseInquiryStatus converts raw input into an InquiryStatus.
func ParseInquiryStatus(value string) (InquiryStatus, error) {
	for _, candidate := range validInquiryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inquiry status %q", value)
}
