// internal/models/strategy.go
package models

// Strategy is a narrative template the carousel should follow.
type Strategy struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Strategies is the static catalog shown in the strategy picker.
var Strategies = []Strategy{
	{
		ID:          "Contrarian Authority",
		Title:       "Contrarian Authority",
		Description: "Ataque ao senso comum com argumento forte + prova + CTA.",
		Icon:        "⚡",
	},
	{
		ID:          "Diagnóstico Implacável",
		Title:       "Diagnóstico Implacável",
		Description: "Nomeia o erro do público e mostra o custo escondido.",
		Icon:        "🩺",
	},
	{
		ID:          "Framework Proprietário",
		Title:       "Framework Proprietário",
		Description: "Cria um método em 3–5 etapas para o tema.",
		Icon:        "🧩",
	},
	{
		ID:          "Myth-Busting Cirúrgico",
		Title:       "Myth-Busting Cirúrgico",
		Description: "Mito → verdade → implicação prática.",
		Icon:        "🔪",
	},
	{
		ID:          "Caso/Story com virada",
		Title:       "Caso/Story com virada",
		Description: "História curta com tensão → insight → ação.",
		Icon:        "📖",
	},
}

// ToneOptions are the selectable voice tones.
var ToneOptions = []string{
	"Provocativo",
	"Empático",
	"Técnico",
	"Indignado",
	"Inspirador",
}

// CTAOptions are the selectable call-to-action types.
var CTAOptions = []string{
	"Agendar",
	"DM com palavra-chave",
	"Link na bio",
	"Lista de espera",
}

// FindStrategy looks a strategy up by id.
func FindStrategy(id string) (Strategy, bool) {
	for _, s := range Strategies {
		if s.ID == id {
			return s, true
		}
	}
	return Strategy{}, false
}

// Catalog groups the static picker metadata.
type Catalog struct {
	Strategies []Strategy `json:"strategies"`
	Tones      []string   `json:"tones"`
	CTAs       []string   `json:"ctas"`
	SlideCount int        `json:"slide_count"`
}

// GetCatalog returns the picker metadata.
func GetCatalog() Catalog {
	return Catalog{
		Strategies: Strategies,
		Tones:      ToneOptions,
		CTAs:       CTAOptions,
		SlideCount: SlideCount,
	}
}
