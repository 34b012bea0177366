package intent

import (
	"fmt"
	"strings"

	"github.com/cityhealth/directory/internal/domain/lang"
)

// Keywords maps a language to its keyword list. A missing language falls back to English.
type Keywords map[lang.Code][]string

// For returns the list for code, or the English list when code has none.
func (k Keywords) For(code lang.Code) []string {
	if list, ok := k[code]; ok && len(list) > 0 {
		return list
	}
	return k[lang.English]
}

// IntentEntry binds an intent to its keywords.
type IntentEntry struct {
	Type     Type
	Keywords Keywords
}

// SpecialtyEntry binds a specialty to its keywords.
type SpecialtyEntry struct {
	Specialty Specialty
	Keywords  Keywords
}

// Lexicon is an insertion-ordered keyword table. Order decides ties.
type Lexicon struct {
	intents     []IntentEntry
	specialties []SpecialtyEntry
}

// NewLexicon validates and creates a Lexicon.
// Every entry needs a non-empty English list, and keywords are stored lowercased.
func NewLexicon(intents []IntentEntry, specialties []SpecialtyEntry) (*Lexicon, error) {
	seen := make(map[Type]bool, len(intents))
	for i := range intents {
		e := &intents[i]
		if !e.Type.IsValid() || e.Type == Unknown {
			return nil, fmt.Errorf("invalid intent %q", e.Type)
		}
		if seen[e.Type] {
			return nil, fmt.Errorf("duplicate intent %q", e.Type)
		}
		seen[e.Type] = true
		if len(e.Keywords[lang.English]) == 0 {
			return nil, fmt.Errorf("intent %q: english keywords are required", e.Type)
		}
		e.Keywords = lowered(e.Keywords)
	}
	for i := range specialties {
		e := &specialties[i]
		if len(e.Keywords[lang.English]) == 0 {
			return nil, fmt.Errorf("specialty %q: english keywords are required", e.Specialty)
		}
		e.Keywords = lowered(e.Keywords)
	}
	return &Lexicon{intents: intents, specialties: specialties}, nil
}

// Intents returns the intent entries in evaluation order.
func (l *Lexicon) Intents() []IntentEntry { return l.intents }

// Specialties returns the specialty entries in evaluation order.
func (l *Lexicon) Specialties() []SpecialtyEntry { return l.specialties }

func lowered(k Keywords) Keywords {
	out := make(Keywords, len(k))
	for code, list := range k {
		ll := make([]string, len(list))
		for i, w := range list {
			ll[i] = strings.ToLower(w)
		}
		out[code] = ll
	}
	return out
}

// DefaultLexicon returns the built-in trilingual lexicon.
// Arabic has no accessibility or home-visit list; those intents match English keywords.
func DefaultLexicon() *Lexicon {
	l, err := NewLexicon(defaultIntents(), defaultSpecialties())
	if err != nil {
		panic(fmt.Sprintf("default lexicon: %v", err))
	}
	return l
}

func defaultIntents() []IntentEntry {
	return []IntentEntry{
		{FindProvider, Keywords{
			lang.English: {"doctor", "clinic", "hospital", "find", "need", "search", "looking for", "specialist", "pharmacy", "lab"},
			lang.French:  {"médecin", "medecin", "docteur", "clinique", "hôpital", "hopital", "trouver", "cherche", "besoin", "pharmacie", "laboratoire", "spécialiste"},
			lang.Arabic:  {"طبيب", "عيادة", "مستشفى", "صيدلية", "مختبر", "ابحث", "أريد", "أحتاج"},
		}},
		{Emergency, Keywords{
			lang.English: {"emergency", "urgent", "ambulance", "accident", "bleeding", "now", "help me", "critical"},
			lang.French:  {"urgence", "urgent", "ambulance", "accident", "saigne", "maintenant", "au secours", "grave"},
			lang.Arabic:  {"طوارئ", "عاجل", "إسعاف", "اسعاف", "حادث", "نزيف", "الآن", "خطير"},
		}},
		{Hours, Keywords{
			lang.English: {"hours", "open", "close", "opening", "schedule", "time", "when"},
			lang.French:  {"horaires", "ouvert", "fermé", "ferme", "ouverture", "heure", "quand"},
			lang.Arabic:  {"ساعات", "مفتوح", "مغلق", "وقت", "متى", "دوام"},
		}},
		{Location, Keywords{
			lang.English: {"where", "address", "near", "location", "nearby", "city", "directions"},
			lang.French:  {"où", "adresse", "près", "proche", "localisation", "ville", "itinéraire"},
			lang.Arabic:  {"أين", "اين", "عنوان", "قريب", "موقع", "مدينة"},
		}},
		{Accessibility, Keywords{
			lang.English: {"wheelchair", "accessible", "accessibility", "disabled", "ramp", "disability"},
			lang.French:  {"fauteuil roulant", "accessible", "accessibilité", "handicapé", "rampe", "handicap"},
		}},
		{HomeVisit, Keywords{
			lang.English: {"home visit", "house call", "at home", "come to", "visit"},
			lang.French:  {"visite à domicile", "domicile", "à la maison", "se déplacer", "visite"},
		}},
		{Greeting, Keywords{
			lang.English: {"hello", "hi", "hey", "good morning", "good evening", "greetings"},
			lang.French:  {"bonjour", "salut", "bonsoir", "coucou"},
			lang.Arabic:  {"مرحبا", "السلام عليكم", "أهلا", "اهلا", "صباح الخير", "مساء الخير"},
		}},
		{Help, Keywords{
			lang.English: {"help", "how does", "what can you", "assist", "guide"},
			lang.French:  {"aide", "aider", "comment", "que peux-tu", "guide"},
			lang.Arabic:  {"مساعدة", "ساعدني", "كيف", "ماذا يمكنك"},
		}},
		{Thanks, Keywords{
			lang.English: {"thank", "thanks", "appreciate", "grateful"},
			lang.French:  {"merci", "remercie", "reconnaissant"},
			lang.Arabic:  {"شكرا", "شكرًا", "ممتن", "بارك الله"},
		}},
	}
}

func defaultSpecialties() []SpecialtyEntry {
	return []SpecialtyEntry{
		{Cardiology, Keywords{
			lang.English: {"cardio", "heart"},
			lang.French:  {"cardio", "cœur", "coeur"},
			lang.Arabic:  {"قلب", "القلب"},
		}},
		{Dermatology, Keywords{
			lang.English: {"dermat", "skin"},
			lang.French:  {"dermato", "peau"},
			lang.Arabic:  {"جلد", "جلدية"},
		}},
		{Pediatrics, Keywords{
			lang.English: {"pediatr", "child", "kid", "baby"},
			lang.French:  {"pédiatr", "pediatr", "enfant", "bébé"},
			lang.Arabic:  {"أطفال", "اطفال", "طفل"},
		}},
		{Ophthalmology, Keywords{
			lang.English: {"ophthalm", "eye"},
			lang.French:  {"ophtalm", "yeux", "œil"},
			lang.Arabic:  {"عيون", "عين"},
		}},
		{Dentistry, Keywords{
			lang.English: {"dentist", "dental", "tooth", "teeth"},
			lang.French:  {"dentist", "dentaire", "dent"},
			lang.Arabic:  {"أسنان", "اسنان"},
		}},
		{Gynecology, Keywords{
			lang.English: {"gyneco", "gynaeco", "pregnan"},
			lang.French:  {"gynéco", "gyneco", "enceinte", "grossesse"},
			lang.Arabic:  {"نساء", "حمل"},
		}},
		{General, Keywords{
			lang.English: {"general", "family doctor"},
			lang.French:  {"généraliste", "generaliste", "médecine générale"},
			lang.Arabic:  {"طبيب عام", "عامة"},
		}},
	}
}
