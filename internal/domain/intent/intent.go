package intent

// Type is a chat message category.
type Type string

const (
	FindProvider  Type = "findProvider"
	Emergency     Type = "emergency"
	Hours         Type = "hours"
	Location      Type = "location"
	Accessibility Type = "accessibility"
	HomeVisit     Type = "homeVisit"
	Greeting      Type = "greeting"
	Help          Type = "help"
	Thanks        Type = "thanks"
	Unknown       Type = "unknown"
)

// IsValid checks if t is a known intent, including Unknown.
func (t Type) IsValid() bool {
	switch t {
	case FindProvider, Emergency, Hours, Location, Accessibility, HomeVisit, Greeting, Help, Thanks, Unknown:
		return true
	}
	return false
}

// Searches reports whether replies for t are backed by a provider search.
func (t Type) Searches() bool {
	switch t {
	case FindProvider, Emergency, Location, Accessibility, HomeVisit:
		return true
	}
	return false
}

// Result is the outcome of classifying one message.
type Result struct {
	Type       Type    `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Specialty is a medical specialty recognised in chat messages.
type Specialty string

const (
	Cardiology    Specialty = "cardiology"
	Dermatology   Specialty = "dermatology"
	Pediatrics    Specialty = "pediatrics"
	Ophthalmology Specialty = "ophthalmology"
	Dentistry     Specialty = "dentistry"
	Gynecology    Specialty = "gynecology"
	General       Specialty = "general"
)

var searchTerms = map[Specialty]string{
	Cardiology:    "cardio",
	Dermatology:   "dermat",
	Pediatrics:    "pediatr",
	Ophthalmology: "ophthalm",
	Dentistry:     "dent",
	Gynecology:    "gyn",
	General:       "general",
}

// SearchTerm returns the query stem used to look providers up for s.
func (s Specialty) SearchTerm() string {
	if term, ok := searchTerms[s]; ok {
		return term
	}
	return string(s)
}
