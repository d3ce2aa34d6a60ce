package models

// FormOption is one selectable value of a booking form field. Values
// must match the option values the wafid form expects verbatim.
type FormOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var Countries = []FormOption{
	{"SA", "Saudi Arabia"},
	{"AE", "United Arab Emirates"},
	{"KW", "Kuwait"},
	{"QA", "Qatar"},
	{"OM", "Oman"},
	{"BH", "Bahrain"},
	{"IN", "India"},
	{"PK", "Pakistan"},
	{"BD", "Bangladesh"},
	{"NP", "Nepal"},
	{"PH", "Philippines"},
	{"LK", "Sri Lanka"},
	{"ID", "Indonesia"},
	{"ET", "Ethiopia"},
	{"EG", "Egypt"},
}

var DestinationCountries = []FormOption{
	{"SA", "Saudi Arabia"},
	{"AE", "United Arab Emirates"},
	{"KW", "Kuwait"},
	{"QA", "Qatar"},
	{"OM", "Oman"},
	{"BH", "Bahrain"},
}

var Genders = []FormOption{
	{"1", "Male"},
	{"2", "Female"},
}

var MaritalStatuses = []FormOption{
	{"1", "Single"},
	{"2", "Married"},
	{"3", "Divorced"},
	{"4", "Widowed"},
}

var VisaTypes = []FormOption{
	{"1", "Work Visa"},
	{"2", "Family Visa"},
	{"3", "Domestic Worker"},
	{"4", "Student Visa"},
}

var Positions = []FormOption{
	{"101", "Driver"},
	{"102", "Housemaid"},
	{"103", "Nurse"},
	{"104", "Engineer"},
	{"105", "Technician"},
	{"106", "Labourer"},
	{"107", "Accountant"},
	{PositionOther, "Other"},
}

// FormOptions bundles every lookup list the slip form needs.
func FormOptions() map[string][]FormOption {
	return map[string][]FormOption{
		"countries":             Countries,
		"destination_countries": DestinationCountries,
		"nationalities":         Countries,
		"genders":               Genders,
		"marital_statuses":      MaritalStatuses,
		"visa_types":            VisaTypes,
		"positions":             Positions,
	}
}
