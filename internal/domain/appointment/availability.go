package appointment

type AvailabilityInput struct {
	ChurchID  uint
	ServiceID uint
	// YYYY-MM-DD in the church timezone.
	Date string
}

type TimeSlot struct {
	ScheduleID     uint   `json:"schedule_id"`
	ScheduleTimeID uint   `json:"schedule_time_id"`
	Start          string `json:"start"`
	End            string `json:"end"`
	Capacity       int    `json:"capacity"`
	Remaining      int    `json:"remaining"`
}
