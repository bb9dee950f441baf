// Package vocab holds the canonical maintenance-domain vocabulary shared by
// the query normalizer, the response validator and the fallback template
// matcher. Keeping every table here avoids the three consumers drifting
// apart on what counts as a domain term.
package vocab

// Placeholders substituted by the normalizer for volatile tokens so that
// "status of TR-01" and "status of TR-02" normalize to the same query.
const (
	PlaceholderEquipmentID = "ID_EQUIPAMENTO"
	PlaceholderDate        = "DATA"
)

// StopWords are dropped during normalization. The assistant serves a mixed
// Portuguese/English user base, so both languages are listed.
var StopWords = map[string]struct{}{
	// English
	"a": {}, "an": {}, "and": {}, "are": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "show": {}, "tell": {}, "the": {}, "to": {}, "was": {},
	"were": {}, "what": {}, "when": {}, "where": {}, "which": {}, "who": {},
	"will": {}, "with": {}, "me": {}, "my": {}, "about": {}, "please": {},
	"give": {}, "list": {}, "all": {},
	// Portuguese
	"o": {}, "os": {}, "as": {}, "um": {}, "uma": {}, "de": {}, "do": {},
	"da": {}, "dos": {}, "das": {}, "no": {}, "na": {}, "nos": {}, "nas": {},
	"em": {}, "para": {}, "por": {}, "com": {}, "que": {}, "qual": {},
	"quais": {}, "quando": {}, "onde": {}, "como": {}, "e": {}, "ou": {},
	"mostre": {}, "liste": {}, "todos": {}, "todas": {}, "sobre": {},
}

// Synonyms fold colloquial or translated terms onto one canonical token.
// Entries map lowercase input token -> canonical token.
var Synonyms = map[string]string{
	// status
	"situation": "status", "situacao": "status", "condition": "status",
	"estado": "status", "state": "status",
	// transformer (pt nickname "trafo")
	"trafo": "transformer", "trafos": "transformer",
	"transformers": "transformer", "transformador": "transformer",
	"transformadores": "transformer",
	// generator
	"generators": "generator", "gerador": "generator",
	"geradores": "generator",
	// maintenance
	"manutencao": "maintenance", "manutencoes": "maintenance",
	"servicing": "maintenance", "upkeep": "maintenance",
	"maintenances": "maintenance",
	// failure
	"failures": "failure", "falha": "failure", "falhas": "failure",
	"fault": "failure", "faults": "failure", "defect": "failure",
	"defeito": "failure", "defeitos": "failure", "breakdown": "failure",
	// cost
	"costs": "cost", "custo": "cost", "custos": "cost", "expense": "cost",
	"expenses": "cost", "gasto": "cost", "gastos": "cost", "price": "cost",
	// equipment
	"equipments": "equipment", "equipamento": "equipment",
	"equipamentos": "equipment", "device": "equipment",
	"devices": "equipment", "machine": "equipment", "machines": "equipment",
	// scheduling
	"schedule": "scheduled", "agendada": "scheduled", "agendadas": "scheduled",
	"preventiva": "preventive", "preventivas": "preventive",
	"corretiva": "corrective", "corretivas": "corrective",
}

// DomainKeywords are the canonical terms that mark a query or a response as
// belonging to the maintenance domain. Checked after synonym folding.
var DomainKeywords = map[string]struct{}{
	"equipment": {}, "maintenance": {}, "status": {}, "failure": {},
	"cost": {}, "transformer": {}, "generator": {}, "inspection": {},
	"scheduled": {}, "preventive": {}, "corrective": {}, "substation": {},
	"subestacao": {}, "repair": {}, "reparo": {}, "operational": {},
	"operacional": {}, "downtime": {}, "turbine": {}, "turbina": {},
	"motor": {}, "bomba": {}, "pump": {},
}

// OffTopicMarkers flag a query as outside the maintenance domain
// regardless of what the model answered.
var OffTopicMarkers = []string{
	"football", "soccer", "futebol", "basketball", "recipe", "receita",
	"movie", "filme", "music", "musica", "song", "lottery", "loteria",
	"horoscope", "horoscopo", "celebrity", "novela", "weather forecast",
	"restaurant", "travel", "viagem", "joke", "piada", "game", "jogo",
}

// InadequatePatterns are hedge/apology/error phrases that disqualify a
// generated response even when it is long enough.
var InadequatePatterns = []string{
	"i don't know", "i do not know", "i cannot help", "i can't help",
	"i am unable", "i'm unable", "as an ai", "error", "exception",
	"nao sei", "não sei", "nao posso ajudar", "não posso ajudar",
	"desculpe, nao", "sorry, i",
}

// HelpIndicators mark a response as a deliberate help message, which is
// exempt from the domain-keyword requirement.
var HelpIndicators = []string{
	"you can ask", "try asking", "for example", "examples of questions",
	"voce pode perguntar", "você pode perguntar", "por exemplo",
	"exemplos de perguntas", "available queries",
}

// Template is one fallback response category: keyword-matched against the
// query, carrying a canned explanation and example follow-up queries.
type Template struct {
	Name     string
	Keywords []string
	Message  string
	Examples []string
}

// Templates is the fixed category table used by the fallback responder.
// Order matters: the first matching template wins.
var Templates = []Template{
	{
		Name:     "status",
		Keywords: []string{"status", "operational", "operacional", "condition"},
		Message: "I could not produce a reliable answer about equipment status. " +
			"Status queries work best when they name a specific equipment or family.",
		Examples: []string{
			"What is the status of transformer TR-01?",
			"Which equipment is out of service today?",
			"Show the operational status of the main generators",
		},
	},
	{
		Name:     "maintenance",
		Keywords: []string{"maintenance", "scheduled", "preventive", "corrective", "inspection"},
		Message: "I could not produce a reliable answer about maintenance activities. " +
			"Try asking about scheduled, preventive or corrective maintenance for a period or equipment.",
		Examples: []string{
			"Which maintenances are scheduled for next week?",
			"List the preventive maintenance done on generator GE-02",
			"How many corrective maintenances happened this month?",
		},
	},
	{
		Name:     "failures",
		Keywords: []string{"failure", "downtime", "repair", "reparo"},
		Message: "I could not produce a reliable answer about failures. " +
			"Failure queries can filter by equipment, severity or period.",
		Examples: []string{
			"Which equipment failed most often this year?",
			"Show the latest failures of the transformers",
		},
	},
	{
		Name:     "costs",
		Keywords: []string{"cost", "budget", "orcamento"},
		Message: "I could not produce a reliable answer about costs. " +
			"Cost queries can aggregate by equipment, type of maintenance or period.",
		Examples: []string{
			"What was the total maintenance cost last quarter?",
			"Which equipment has the highest repair cost?",
		},
	},
}
