package entities

import (
	"sort"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// Onboarding steps, in wizard order.
const (
	StepPersonnel     = 1
	StepStripe        = 2
	StepPOS           = 3
	StepQRStands      = 4
	StepGoogleReviews = 5

	FirstStep         = StepPersonnel
	LastStep          = StepGoogleReviews
	LastRequiredStep  = StepPOS
	FinalizedStepMark = LastStep
)

// PersonnelRole is the role a staff member gets at the restaurant
type PersonnelRole string

const (
	PersonnelRoleStaff   PersonnelRole = "staff"
	PersonnelRoleManager PersonnelRole = "manager"
)

// Valid reports whether the role is one of the known roles.
func (r PersonnelRole) Valid() bool {
	return r == PersonnelRoleStaff || r == PersonnelRoleManager
}

// Personnel is a staff member collected during onboarding
type Personnel struct {
	ID        string        `json:"id"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Phone     null.String   `json:"phone"`
	Password  string        `json:"password"`
	Role      PersonnelRole `json:"role"`
}

// PhoneNumber returns the trimmed phone, or "" when absent.
func (p Personnel) PhoneNumber() string {
	if !p.Phone.Valid {
		return ""
	}
	return strings.TrimSpace(p.Phone.String)
}

// AddPersonnelInput represents input for adding a staff member
type AddPersonnelInput struct {
	FirstName       string        `json:"firstName"`
	LastName        string        `json:"lastName"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	Password        string        `json:"password"`
	PasswordConfirm string        `json:"passwordConfirm"`
	Role            PersonnelRole `json:"role"`
}

// StripeData is the payment account step payload
type StripeData struct {
	Connected bool        `json:"connected"`
	AccountID null.String `json:"accountId"`
}

// POSData is the point-of-sale integration step payload
type POSData struct {
	POSType     string `json:"posType"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	BaseURL     string `json:"baseUrl"`
	Environment string `json:"environment"`
	IsActive    bool   `json:"isActive"`
}

// Configured reports whether all four credentials are supplied.
func (p POSData) Configured() bool {
	return strings.TrimSpace(p.POSType) != "" &&
		strings.TrimSpace(p.Username) != "" &&
		strings.TrimSpace(p.Password) != "" &&
		strings.TrimSpace(p.BaseURL) != ""
}

// GoogleReviewData is the review link step payload
type GoogleReviewData struct {
	PlaceID      string `json:"placeId"`
	ReviewLink   string `json:"reviewLink"`
	IsConfigured bool   `json:"isConfigured"`
}

// TableSections counts tables per floor area
type TableSections struct {
	Bar    int `json:"bar"`
	Binnen int `json:"binnen"`
	Terras int `json:"terras"`
	Lounge int `json:"lounge"`
}

// Total returns the number of tables across all sections.
func (s TableSections) Total() int {
	return s.Bar + s.Binnen + s.Terras + s.Lounge
}

// FloorPlan is an uploaded floor plan reference
type FloorPlan struct {
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// QRStandData is the QR stand configuration step payload
type QRStandData struct {
	SelectedDesign string        `json:"selectedDesign"`
	TableCount     int           `json:"tableCount"`
	TableSections  TableSections `json:"tableSections"`
	FloorPlans     []FloorPlan   `json:"floorPlans"`
	IsConfigured   bool          `json:"isConfigured"`
}

// StepSet is a sorted set of completed step numbers.
type StepSet []int

// Has reports whether step is in the set.
func (s StepSet) Has(step int) bool {
	for _, v := range s {
		if v == step {
			return true
		}
	}
	return false
}

// With returns a copy of the set including step.
func (s StepSet) With(step int) StepSet {
	if s.Has(step) {
		return s
	}
	out := append(StepSet{}, s...)
	out = append(out, step)
	sort.Ints(out)
	return out
}

// Without returns a copy of the set excluding step.
func (s StepSet) Without(step int) StepSet {
	out := make(StepSet, 0, len(s))
	for _, v := range s {
		if v != step {
			out = append(out, v)
		}
	}
	return out
}

// RequiredCount counts completed required steps.
func (s StepSet) RequiredCount() int {
	n := 0
	for _, v := range s {
		if v >= FirstStep && v <= LastRequiredStep {
			n++
		}
	}
	return n
}

// OnboardingRecord is the wizard scratch state for one restaurant
type OnboardingRecord struct {
	RestaurantID     int              `json:"restaurantId"`
	PersonnelData    []Personnel      `json:"personnelData"`
	StripeData       StripeData       `json:"stripeData"`
	POSData          POSData          `json:"posData"`
	GoogleReviewData GoogleReviewData `json:"googleReviewData"`
	QRStandData      QRStandData      `json:"qrStandData"`
	CompletedSteps   StepSet          `json:"completedSteps"`
	CurrentStep      int              `json:"currentStep"`
	SavedAt          time.Time        `json:"savedAt"`
}

// NewOnboardingRecord returns the empty record created on first visit.
func NewOnboardingRecord(restaurantID int) *OnboardingRecord {
	return &OnboardingRecord{
		RestaurantID:   restaurantID,
		PersonnelData:  []Personnel{},
		CompletedSteps: StepSet{},
		CurrentStep:    FirstStep,
	}
}

// HasStarted reports whether any onboarding investment exists.
func (r *OnboardingRecord) HasStarted() bool {
	return r.CurrentStep > FirstStep || len(r.PersonnelData) > 0
}

// HasManager reports whether at least one personnel entry is a manager.
func (r *OnboardingRecord) HasManager() bool {
	for _, p := range r.PersonnelData {
		if p.Role == PersonnelRoleManager {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate without touching saved state.
func (r *OnboardingRecord) Clone() *OnboardingRecord {
	out := *r
	out.PersonnelData = append([]Personnel{}, r.PersonnelData...)
	out.CompletedSteps = append(StepSet{}, r.CompletedSteps...)
	out.QRStandData.FloorPlans = append([]FloorPlan(nil), r.QRStandData.FloorPlans...)
	return &out
}

// ValidStep reports whether step is a wizard step.
func ValidStep(step int) bool {
	return step >= FirstStep && step <= LastStep
}

// IsRequiredStep reports whether step gates activation.
func IsRequiredStep(step int) bool {
	return step >= FirstStep && step <= LastRequiredStep
}

// StepSatisfied reports whether the data of record supports step being
// complete. Optional steps carry no data requirement.
func StepSatisfied(r *OnboardingRecord, step int) bool {
	switch step {
	case StepPersonnel:
		return r.HasManager()
	case StepStripe:
		return r.StripeData.Connected
	case StepPOS:
		return r.POSData.Configured()
	case StepQRStands, StepGoogleReviews:
		return true
	default:
		return false
	}
}

// ReconcileSteps keeps only the completed steps re-derivable from the record.
func ReconcileSteps(r *OnboardingRecord) StepSet {
	out := StepSet{}
	for _, step := range r.CompletedSteps {
		if !ValidStep(step) || out.Has(step) {
			continue
		}
		if StepSatisfied(r, step) {
			out = out.With(step)
		}
	}
	return out
}

// ResumeStep is the first step not yet completed, or the last step when all are.
func ResumeStep(completed StepSet) int {
	for step := FirstStep; step <= LastStep; step++ {
		if !completed.Has(step) {
			return step
		}
	}
	return LastStep
}

// RequiredComplete reports whether every required step is completed.
func RequiredComplete(completed StepSet) bool {
	for step := FirstStep; step <= LastRequiredStep; step++ {
		if !completed.Has(step) {
			return false
		}
	}
	return true
}

// CompletionPolicy decides whether a completed step stays completed after
// its data stops satisfying it within the same editing session.
type CompletionPolicy string

const (
	// CompletionContinuous re-derives completed steps on every write.
	CompletionContinuous CompletionPolicy = "continuous"
	// CompletionSticky keeps a step completed once marked, until the next load.
	CompletionSticky CompletionPolicy = "sticky"
)

// ParseCompletionPolicy falls back to continuous for unknown values.
func ParseCompletionPolicy(v string) CompletionPolicy {
	if CompletionPolicy(strings.ToLower(strings.TrimSpace(v))) == CompletionSticky {
		return CompletionSticky
	}
	return CompletionContinuous
}

// OnboardingView is what the wizard renders for a restaurant
type OnboardingView struct {
	RestaurantID   int               `json:"restaurantId"`
	RestaurantName string            `json:"restaurantName"`
	CurrentStep    int               `json:"currentStep"`
	FurthestStep   int               `json:"furthestStep"`
	CompletedSteps StepSet           `json:"completedSteps"`
	ReadOnly       bool              `json:"readOnly"`
	Record         *OnboardingRecord `json:"record"`
}

// OnboardingResult is returned by a step completion
type OnboardingResult struct {
	View      *OnboardingView `json:"view,omitempty"`
	Finalized bool            `json:"finalized"`
	Staff     []*User         `json:"staff,omitempty"`
}

// POSStatus is the cached POS connection status of a restaurant
type POSStatus struct {
	RestaurantID int       `json:"restaurantId"`
	Configured   bool      `json:"configured"`
	Active       bool      `json:"active"`
	POSType      string    `json:"posType,omitempty"`
	Environment  string    `json:"environment,omitempty"`
	CheckedAt    time.Time `json:"checkedAt"`
}
