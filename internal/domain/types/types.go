package types

import "strings"

type ServiceMode string

// Booking Service - owns the booking lifecycle (creation, accept/complete/cancel)
// Caregiver & Location Service - caregiver availability, location fixes, proximity matching
// Admin Service - monitoring and oversight
const (
	BookingService              ServiceMode = "booking-service"
	CaregiverAndLocationService ServiceMode = "caregiver-service"
	AdminService                ServiceMode = "admin-service"
)

// UserRole identifies which side of the marketplace an account is on.
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RoleCareseeker UserRole = "careseeker"
	RoleCaregiver  UserRole = "caregiver"
	RoleAdmin      UserRole = "admin"
)

// CaregiverTier is the credential level of a caregiver. It drives the
// hourly rate and the scope of service the caregiver may provide.
type CaregiverTier string

const (
	TierBasic CaregiverTier = "Basic"
	TierCNA   CaregiverTier = "CNA"
	TierLVN   CaregiverTier = "LVN"
	TierRN    CaregiverTier = "RN"
	TierNP    CaregiverTier = "NP"
	TierPT    CaregiverTier = "PT"
	TierHHA   CaregiverTier = "HHA"
)

func (t CaregiverTier) String() string {
	return string(t)
}

// Tiers lists all known caregiver tiers.
func Tiers() []CaregiverTier {
	return []CaregiverTier{TierBasic, TierCNA, TierLVN, TierRN, TierNP, TierPT, TierHHA}
}

// ParseTier resolves a tier string case-insensitively into the closed enum.
func ParseTier(s string) (CaregiverTier, bool) {
	for _, t := range Tiers() {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// BookingStatus is the lifecycle state of a booking. The set is closed:
// unknown strings must be rejected at the edges, never carried around.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusAccepted  BookingStatus = "accepted"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) String() string {
	return string(s)
}

// Terminal reports whether no further transitions are allowed.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseBookingStatus resolves a status string case-insensitively.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	for _, st := range []BookingStatus{StatusPending, StatusAccepted, StatusCompleted, StatusCancelled} {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// PaymentMethod is one of the payment options offered at booking time.
type PaymentMethod string

const (
	PayCash       PaymentMethod = "Cash"
	PayVisa       PaymentMethod = "Credit Card (Visa)"
	PayMasterCard PaymentMethod = "Credit Card (MasterCard)"
	PayAmex       PaymentMethod = "Credit Card (American Express)"
	PayDebit      PaymentMethod = "Debit Card"
	PayApplePay   PaymentMethod = "Apple Pay"
	PayGooglePay  PaymentMethod = "Google Pay"
	PayPayPal     PaymentMethod = "PayPal"
	PayVenmo      PaymentMethod = "Venmo"
	PayZelle      PaymentMethod = "Zelle"
	PayCheck      PaymentMethod = "Check"
)

// PaymentMethods lists every accepted payment method.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PayCash, PayVisa, PayMasterCard, PayAmex, PayDebit,
		PayApplePay, PayGooglePay, PayPayPal, PayVenmo, PayZelle, PayCheck,
	}
}

// ParsePaymentMethod resolves a payment method string case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	for _, m := range PaymentMethods() {
		if strings.EqualFold(s, string(m)) {
			return m, true
		}
	}
	return "", false
}
