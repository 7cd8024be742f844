package model

import "strings"

// LocationType is the internal business taxonomy used across both providers.
type LocationType int

const (
	Food LocationType = iota
	Shop
	Cultural
	Stadium
	Entertainment
	Souvenirs
	Others
)

func (t LocationType) String() string {
	switch t {
	case Food:
		return "food"
	case Shop:
		return "shop"
	case Cultural:
		return "cultural"
	case Stadium:
		return "stadium"
	case Entertainment:
		return "entertainment"
	case Souvenirs:
		return "souvenirs"
	default:
		return "others"
	}
}

// DenueKeywords maps each category to the Spanish search terms sent to the
// DENUE endpoint, one request per term per zone.
var DenueKeywords = map[LocationType][]string{
	Food:          {"restaurante", "taquería", "cafetería", "antojitos"},
	Shop:          {"centro comercial", "mercado", "tienda departamental"},
	Cultural:      {"museo", "galería de arte", "centro cultural"},
	Stadium:       {"estadio", "arena deportiva"},
	Entertainment: {"cine", "teatro", "parque de diversiones"},
	Souvenirs:     {"artesanías", "souvenirs"},
}

// KeywordQuery pairs a search term with the category it was issued for.
type KeywordQuery struct {
	Keyword  string
	Category LocationType
}

// DenueQueries flattens DenueKeywords into a stable, ordered query list.
func DenueQueries() []KeywordQuery {
	order := []LocationType{Food, Shop, Cultural, Stadium, Entertainment, Souvenirs}
	var out []KeywordQuery
	for _, cat := range order {
		for _, kw := range DenueKeywords[cat] {
			out = append(out, KeywordQuery{Keyword: kw, Category: cat})
		}
	}
	return out
}

// denueClassifier maps DENUE free-text activity strings to a category via
// substring matching. Order matters: first match wins.
var denueClassifier = []struct {
	category LocationType
	keywords []string
}{
	{Food, []string{"restaurante", "cafetería", "cafeteria", "comida", "antojitos", "taquería", "tacos", "fonda", "cocina", "marisc", "pizz", "panader"}},
	{Entertainment, []string{"cine", "teatro", "entretenimiento", "diversión", "diversion", "espectáculos", "espectaculos", "cantina", "bar", "centro nocturno", "billar"}},
	{Shop, []string{"comercio al por menor", "tienda", "supermercado", "mercado", "bazar", "centro comercial", "abarrotes"}},
	{Souvenirs, []string{"artesanía", "artesania", "souvenir", "regalos", "recuerdos"}},
	{Cultural, []string{"museo", "galería", "galeria", "cultural", "biblioteca", "arqueológ", "arqueolog", "monumento"}},
	{Stadium, []string{"estadio", "deportivo", "arena", "autódromo", "autodromo", "fútbol", "futbol"}},
}

// ClassifyActivity maps a DENUE activity description to a LocationType.
// Unmatched activities fall through to Others.
func ClassifyActivity(activity string) LocationType {
	lower := strings.ToLower(activity)
	for _, entry := range denueClassifier {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return Others
}

// stadiumNameKeywords relabel a place as Stadium when its name carries
// stadium evidence, regardless of the upstream category. Upstream
// classification is noisy for the big venues.
var stadiumNameKeywords = []string{
	"estadio", "arena", "autódromo", "autodromo", "foro sol", "coloso de santa úrsula",
}

// IsStadiumName reports whether a business name indicates a stadium venue.
func IsStadiumName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range stadiumNameKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
