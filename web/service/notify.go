package service

import (
	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/logger"
)

// Notifier is told about enrollment transitions after they commit.
// Delivery lives outside this system; implementations must tolerate being
// called often and their failures never affect the committed write.
type Notifier interface {
	EnrollmentChanged(enrollment *model.Enrollment, previous model.AttendanceStatus)
}

// LogNotifier is the default Notifier: it only records the transition.
type LogNotifier struct{}

func (LogNotifier) EnrollmentChanged(enrollment *model.Enrollment, previous model.AttendanceStatus) {
	logger.Infof("enrollment %d moved %s -> %s (campaign %d, contact %d)",
		enrollment.Id, previous, enrollment.AttendanceStatus, enrollment.CampaignId, enrollment.ContactId)
}
