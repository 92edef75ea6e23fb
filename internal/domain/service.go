package domain

// ServiceKey identifies one of the authenticated target services.
type ServiceKey string

const (
	// ServiceQueueMobile is the mobile queue application: status polling and
	// list activation.
	ServiceQueueMobile ServiceKey = "queue_mobile"
	// ServiceQueueDesktop is the desktop queue application: planned schedules
	// and per-list detail pages.
	ServiceQueueDesktop ServiceKey = "queue_desktop"
	// ServiceDaisy is the student directory used for contextual lookups.
	ServiceDaisy ServiceKey = "daisy"
)

func ServiceKeys() []ServiceKey {
	return []ServiceKey{ServiceQueueMobile, ServiceQueueDesktop, ServiceDaisy}
}

func (k ServiceKey) Valid() bool {
	switch k {
	case ServiceQueueMobile, ServiceQueueDesktop, ServiceDaisy:
		return true
	}
	return false
}
