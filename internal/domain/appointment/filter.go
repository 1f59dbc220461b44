package appointment

// ListFilter narrows the joined listing. Zero values mean "no filter".
type ListFilter struct {
	Date     string
	DateFrom string
	DateTo   string
	ClientID uint
	PetID    uint
	StaffID  uint
	Status   string
}
