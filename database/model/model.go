package model

// AttendanceStatus is the fixed enumeration an enrollment moves through.
// No transition graph is enforced; any status may move to any other.
type AttendanceStatus string

const (
	Invited             AttendanceStatus = "INVITED"
	EmailOpened         AttendanceStatus = "EMAIL_OPENED"
	Registered          AttendanceStatus = "REGISTERED"
	Confirmed           AttendanceStatus = "CONFIRMED"
	PendingConfirmation AttendanceStatus = "PENDING_CONFIRMATION"
	Attended            AttendanceStatus = "ATTENDED"
	NoShow              AttendanceStatus = "NO_SHOW"
	Cancelled           AttendanceStatus = "CANCELLED"
)

// AttendanceStatuses lists every valid status, in dashboard display order.
var AttendanceStatuses = []AttendanceStatus{
	Invited, EmailOpened, Registered, Confirmed,
	PendingConfirmation, Attended, NoShow, Cancelled,
}

// Valid reports whether s is one of the fixed attendance statuses.
func (s AttendanceStatus) Valid() bool {
	for _, known := range AttendanceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentNone    PaymentStatus = "NONE"
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// SuperAdminRole marks an identity as unrestricted: no event scoping applies.
const SuperAdminRole = "SUPER_ADMIN"

// WildcardModule in an event grant matches any module for that identity/event.
const WildcardModule = "*"

// Identity is an actor that can log in and hold roles and event grants.
type Identity struct {
	Id           int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash"`
	TotpSecret   string `json:"-"`
	Roles        []Role `json:"roles" gorm:"many2many:identity_roles;"`
}

type Role struct {
	Id   int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

// EventGrant is a per-identity, per-event, per-module permission row.
// At most one row exists per (identity, event, module); re-submitting the
// same key updates the flags in place.
type EventGrant struct {
	Id         int    `json:"id" gorm:"primaryKey;autoIncrement"`
	IdentityId int    `json:"identityId" form:"identityId" gorm:"uniqueIndex:idx_grant_key;not null"`
	EventId    int    `json:"eventId" form:"eventId" gorm:"uniqueIndex:idx_grant_key;not null"`
	Module     string `json:"module" form:"module" gorm:"uniqueIndex:idx_grant_key;not null"`
	CanRead    bool   `json:"canRead" form:"canRead"`
	CanCreate  bool   `json:"canCreate" form:"canCreate"`
	CanUpdate  bool   `json:"canUpdate" form:"canUpdate"`
	CanDelete  bool   `json:"canDelete" form:"canDelete"`
}

type Event struct {
	Id        int        `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Name      string     `json:"name" form:"name" gorm:"not null"`
	Location  string     `json:"location" form:"location"`
	StartsAt  int64      `json:"startsAt" form:"startsAt"`
	EndsAt    int64      `json:"endsAt" form:"endsAt"`
	Active    bool       `json:"active" form:"active" gorm:"default:true"`
	Campaigns []Campaign `json:"campaigns,omitempty" gorm:"foreignKey:EventId"`
}

type Subevent struct {
	Id      int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	EventId int    `json:"eventId" form:"eventId" gorm:"index;not null"`
	Name    string `json:"name" form:"name" gorm:"not null"`
}

// Campaign is a registration drive: the unit enrollments and form schemas
// attach to. It belongs to exactly one event and optionally one subevent.
type Campaign struct {
	Id                   int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	EventId              int    `json:"eventId" form:"eventId" gorm:"index;not null"`
	SubeventId           *int   `json:"subeventId" form:"subeventId"`
	Name                 string `json:"name" form:"name" gorm:"not null"`
	Slug                 string `json:"slug" form:"slug" gorm:"uniqueIndex"`
	RequiresRegistration bool   `json:"requiresRegistration" form:"requiresRegistration" gorm:"default:true"`
	RequiresPayment      bool   `json:"requiresPayment" form:"requiresPayment"`
	Active               bool   `json:"active" form:"active" gorm:"default:true"`
}

type EntryType struct {
	Id         int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	CampaignId int    `json:"campaignId" form:"campaignId" gorm:"index;not null"`
	Name       string `json:"name" form:"name" gorm:"not null"`
	Price      int64  `json:"price" form:"price"`
}

// Contact is one natural person, keyed by normalized email. The unique
// index is what makes concurrent upserts safe; every write path goes
// through the contact service.
type Contact struct {
	Id         int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email      string `json:"email" form:"email" gorm:"uniqueIndex;not null"`
	FirstName  string `json:"firstName" form:"firstName"`
	LastName   string `json:"lastName" form:"lastName"`
	Phone      string `json:"phone" form:"phone"`
	NationalId string `json:"nationalId" form:"nationalId"`
	Company    string `json:"company" form:"company"`
	Activity   string `json:"activity" form:"activity"`
	Profession string `json:"profession" form:"profession"`
	Commune    string `json:"commune" form:"commune"`
}

// Enrollment links one contact to one campaign. The unique index on
// (campaign_id, contact_id) is the idempotency boundary: re-registration
// updates, never duplicates.
type Enrollment struct {
	Id               int              `json:"id" gorm:"primaryKey;autoIncrement"`
	CampaignId       int              `json:"campaignId" gorm:"uniqueIndex:idx_enrollment_key;not null"`
	ContactId        int              `json:"contactId" gorm:"uniqueIndex:idx_enrollment_key;not null"`
	AttendanceStatus AttendanceStatus `json:"attendanceStatus" gorm:"not null;default:REGISTERED"`
	PaymentStatus    PaymentStatus    `json:"paymentStatus" gorm:"not null;default:NONE"`
	Note             string           `json:"note"`
	EntryTypeId      *int             `json:"entryTypeId"`
	BadgeCode        string           `json:"badgeCode" gorm:"uniqueIndex"`
	Contact          *Contact         `json:"contact,omitempty" gorm:"foreignKey:ContactId"`
}

// FormField is one entry of a campaign's custom-field schema. ContactField
// is empty for plain custom fields; when set it names the Contact column
// the answer belongs to (those answers are written to the contact, never
// duplicated into responses).
type FormField struct {
	Id           int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	CampaignId   int    `json:"campaignId" form:"campaignId" gorm:"index;not null"`
	Label        string `json:"label" form:"label" gorm:"not null"`
	ContactField string `json:"contactField" form:"contactField"`
	Multiple     bool   `json:"multiple" form:"multiple"`
	Required     bool   `json:"required" form:"required"`
	Active       bool   `json:"active" form:"active" gorm:"default:true"`
	Position     int    `json:"position" form:"position"`
}

// FormResponse is one typed answer attached to an enrollment. Answers are
// upserted per (enrollment, field), never appended. Value holds either a
// scalar string or a JSON array for multi-select fields.
type FormResponse struct {
	Id           int    `json:"id" gorm:"primaryKey;autoIncrement"`
	EnrollmentId int    `json:"enrollmentId" gorm:"uniqueIndex:idx_response_key;not null"`
	FieldId      int    `json:"fieldId" gorm:"uniqueIndex:idx_response_key;not null"`
	Value        string `json:"value"`
}
