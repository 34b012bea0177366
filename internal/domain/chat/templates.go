package chat

import (
	"github.com/cityhealth/directory/internal/domain/intent"
	"github.com/cityhealth/directory/internal/domain/lang"
)

type localized map[lang.Code]string

func (l localized) get(code lang.Code) string {
	if s, ok := l[code.OrDefault()]; ok {
		return s
	}
	return l[lang.Default]
}

var templates = map[intent.Type]localized{
	intent.FindProvider: {
		lang.English: "Here are some verified providers that may help you:",
		lang.French:  "Voici quelques professionnels vérifiés qui peuvent vous aider :",
		lang.Arabic:  "إليك بعض مقدمي الرعاية المعتمدين الذين قد يساعدونك:",
	},
	intent.Emergency: {
		lang.English: "If this is life-threatening, call 14 (civil protection) right away. These providers are open 24/7:",
		lang.French:  "En cas de danger vital, appelez immédiatement le 14 (protection civile). Ces établissements sont ouverts 24h/24 :",
		lang.Arabic:  "إذا كانت الحالة خطيرة، اتصل فورا بالرقم 14 (الحماية المدنية). هذه المرافق مفتوحة 24/24:",
	},
	intent.Hours: {
		lang.English: "Opening hours are listed on each provider's page. Emergency services are open 24/7.",
		lang.French:  "Les horaires sont indiqués sur la fiche de chaque professionnel. Les urgences sont ouvertes 24h/24.",
		lang.Arabic:  "مواعيد العمل مذكورة في صفحة كل مقدم رعاية. مصالح الاستعجالات مفتوحة 24/24.",
	},
	intent.Location: {
		lang.English: "Here are verified providers in your area:",
		lang.French:  "Voici des professionnels vérifiés près de chez vous :",
		lang.Arabic:  "إليك مقدمي رعاية معتمدين في منطقتك:",
	},
	intent.Accessibility: {
		lang.English: "These providers are wheelchair accessible:",
		lang.French:  "Ces établissements sont accessibles en fauteuil roulant :",
		lang.Arabic:  "هذه المرافق مهيأة لذوي الاحتياجات الخاصة:",
	},
	intent.HomeVisit: {
		lang.English: "These providers offer home visits:",
		lang.French:  "Ces professionnels se déplacent à domicile :",
		lang.Arabic:  "يقدم هؤلاء الأطباء زيارات منزلية:",
	},
	intent.Greeting: {
		lang.English: "Hello! I can help you find doctors, clinics, pharmacies and emergency services.",
		lang.French:  "Bonjour ! Je peux vous aider à trouver des médecins, cliniques, pharmacies et urgences.",
		lang.Arabic:  "مرحبا! يمكنني مساعدتك في العثور على الأطباء والعيادات والصيدليات وخدمات الطوارئ.",
	},
	intent.Help: {
		lang.English: "Ask me for a specialist, an emergency service, a provider near you, or one that offers home visits.",
		lang.French:  "Demandez-moi un spécialiste, un service d'urgence, un professionnel proche ou qui se déplace à domicile.",
		lang.Arabic:  "اسألني عن طبيب مختص أو خدمة طوارئ أو مقدم رعاية قريب منك أو يقدم زيارات منزلية.",
	},
	intent.Thanks: {
		lang.English: "You're welcome! Take care.",
		lang.French:  "Je vous en prie ! Prenez soin de vous.",
		lang.Arabic:  "على الرحب والسعة! اعتن بنفسك.",
	},
	intent.Unknown: {
		lang.English: "Sorry, I didn't understand. Try asking for a doctor, a pharmacy or an emergency service.",
		lang.French:  "Désolé, je n'ai pas compris. Essayez de demander un médecin, une pharmacie ou les urgences.",
		lang.Arabic:  "عذرا، لم أفهم. جرب السؤال عن طبيب أو صيدلية أو خدمة طوارئ.",
	},
}

var noResults = localized{
	lang.English: "I couldn't find a matching provider. Try the search page with fewer filters.",
	lang.French:  "Je n'ai trouvé aucun professionnel correspondant. Essayez la recherche avec moins de filtres.",
	lang.Arabic:  "لم أجد مقدم رعاية مطابق. جرب صفحة البحث بعدد أقل من المرشحات.",
}

var apology = localized{
	lang.English: "Sorry, I can't search the directory right now. Please use the search page.",
	lang.French:  "Désolé, la recherche est indisponible pour le moment. Veuillez utiliser la page de recherche.",
	lang.Arabic:  "عذرا، البحث غير متاح حاليا. يرجى استخدام صفحة البحث.",
}

var quickReplies = map[lang.Code][]string{
	lang.English: {"Find a doctor", "Emergency", "Pharmacy near me", "Home visit"},
	lang.French:  {"Trouver un médecin", "Urgence", "Pharmacie proche", "Visite à domicile"},
	lang.Arabic:  {"ابحث عن طبيب", "طوارئ", "صيدلية قريبة", "زيارة منزلية"},
}

// Template returns the static reply text for t in code, English when code is unsupported.
func Template(t intent.Type, code lang.Code) string {
	if l, ok := templates[t]; ok {
		return l.get(code)
	}
	return templates[intent.Unknown].get(code)
}

// NoResults is the reply to a search-backed intent that found nothing.
func NoResults(code lang.Code) string { return noResults.get(code) }

// Apology is the reply when the directory search failed.
func Apology(code lang.Code) string { return apology.get(code) }

// QuickReplies returns the suggested follow-up messages for code.
func QuickReplies(code lang.Code) []string {
	src := quickReplies[code.OrDefault()]
	out := make([]string, len(src))
	copy(out, src)
	return out
}
