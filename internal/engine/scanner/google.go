package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"github.com/turismolocal/poiscan/internal/model"
)

const (
	googleBaseURL = "https://places.googleapis.com/v1"

	searchFieldMask = "places.id,places.displayName,places.primaryType,places.types," +
		"places.rating,places.userRatingCount,places.priceLevel,places.location," +
		"places.formattedAddress,places.googleMapsUri"
	detailsFieldMask = "regularOpeningHours,websiteUri,nationalPhoneNumber," +
		"internationalPhoneNumber,photos,priceRange"
)

// googleTypeCategory is the allow-list: any place whose primary or secondary
// type appears here is considered relevant to visitors.
var googleTypeCategory = map[string]model.LocationType{
	"restaurant":           model.Food,
	"mexican_restaurant":   model.Food,
	"fast_food_restaurant": model.Food,
	"cafe":                 model.Food,
	"coffee_shop":          model.Food,
	"bakery":               model.Food,
	"ice_cream_shop":       model.Food,
	"food_court":           model.Food,
	"meal_takeaway":        model.Food,

	"shopping_mall":    model.Shop,
	"market":           model.Shop,
	"supermarket":      model.Shop,
	"department_store": model.Shop,
	"clothing_store":   model.Shop,

	"gift_shop": model.Souvenirs,

	"museum":              model.Cultural,
	"art_gallery":         model.Cultural,
	"tourist_attraction":  model.Cultural,
	"historical_landmark": model.Cultural,
	"church":              model.Cultural,
	"monument":            model.Cultural,
	"cultural_center":     model.Cultural,

	"stadium":        model.Stadium,
	"sports_complex": model.Stadium,

	"amusement_park":           model.Entertainment,
	"night_club":               model.Entertainment,
	"bar":                      model.Entertainment,
	"movie_theater":            model.Entertainment,
	"performing_arts_theater":  model.Entertainment,
	"concert_hall":             model.Entertainment,
	"zoo":                      model.Entertainment,
	"aquarium":                 model.Entertainment,
	"park":                     model.Entertainment,
}

// googleDeniedTypes reject a place outright, whatever else it matches.
var googleDeniedTypes = map[string]bool{
	"gas_station":         true,
	"atm":                 true,
	"bank":                true,
	"car_dealer":          true,
	"car_repair":          true,
	"car_wash":            true,
	"parking":             true,
	"storage":             true,
	"funeral_home":        true,
	"cemetery":            true,
	"insurance_agency":    true,
	"lawyer":              true,
	"real_estate_agency":  true,
	"dentist":             true,
	"doctor":              true,
	"hospital":            true,
	"laundry":             true,
}

// googleTransitTypes are accepted unconditionally: visitors need them even
// though they carry no rating signal.
var googleTransitTypes = map[string]bool{
	"airport":               true,
	"international_airport": true,
	"train_station":         true,
	"subway_station":        true,
	"bus_station":           true,
	"transit_station":       true,
}

type googlePlace struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	PrimaryType     string   `json:"primaryType"`
	Types           []string `json:"types"`
	Rating          *float64 `json:"rating"`
	UserRatingCount *int     `json:"userRatingCount"`
	PriceLevel      string   `json:"priceLevel"`
	Location        struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	FormattedAddress string `json:"formattedAddress"`
	GoogleMapsURI    string `json:"googleMapsUri"`
}

type googleSearchResponse struct {
	Places []googlePlace `json:"places"`
}

type googleMoney struct {
	Units        string `json:"units"`
	CurrencyCode string `json:"currencyCode"`
}

type googleDetails struct {
	RegularOpeningHours *struct {
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
	} `json:"regularOpeningHours"`
	WebsiteURI               string `json:"websiteUri"`
	NationalPhoneNumber      string `json:"nationalPhoneNumber"`
	InternationalPhoneNumber string `json:"internationalPhoneNumber"`
	Photos                   []struct {
		Name string `json:"name"`
	} `json:"photos"`
	PriceRange *struct {
		StartPrice *googleMoney `json:"startPrice"`
		EndPrice   *googleMoney `json:"endPrice"`
	} `json:"priceRange"`
}

// GoogleSource scans zones against the Places API: one searchNearby call
// per zone, one details call per accepted place.
type GoogleSource struct {
	client     *Client
	apiKey     string
	baseURL    string
	maxResults int
	cache      *zoneCache
	logger     *log.Logger
}

func NewGoogleSource(client *Client, apiKey string, maxResults int, cache *zoneCache, logger *log.Logger) *GoogleSource {
	if maxResults <= 0 || maxResults > 20 {
		maxResults = 20
	}
	return &GoogleSource{
		client:     client,
		apiKey:     apiKey,
		baseURL:    googleBaseURL,
		maxResults: maxResults,
		cache:      cache,
		logger:     logger,
	}
}

func (s *GoogleSource) Name() string { return model.SourceGoogle }

func (s *GoogleSource) Validate() error {
	if s.apiKey == "" {
		return fmt.Errorf("google api key: %w", ErrMissingCredential)
	}
	return nil
}

func (s *GoogleSource) FetchZone(ctx context.Context, zone model.Zone) (ZoneResult, error) {
	if recs, ok := s.cache.Get(zone.Name, "nearby"); ok {
		return ZoneResult{Records: recs}, nil
	}

	body := map[string]any{
		"maxResultCount": s.maxResults,
		"locationRestriction": map[string]any{
			"circle": map[string]any{
				"center": map[string]any{
					"latitude":  zone.Lat,
					"longitude": zone.Lng,
				},
				"radius": float64(zone.RadiusMeters),
			},
		},
	}

	var resp googleSearchResponse
	err := s.client.PostJSON(ctx, s.baseURL+"/places:searchNearby", map[string]string{
		"X-Goog-Api-Key":   s.apiKey,
		"X-Goog-FieldMask": searchFieldMask,
	}, body, &resp)
	if err != nil {
		return ZoneResult{}, fmt.Errorf("searching zone %q: %w", zone.Name, err)
	}

	var res ZoneResult
	for _, p := range resp.Places {
		category, ok := s.classify(p)
		if !ok {
			continue
		}
		if p.Location.Latitude == 0 && p.Location.Longitude == 0 {
			continue
		}

		rec := s.toRecord(p, category)

		details, err := s.fetchDetails(ctx, p.ID)
		if err != nil {
			res.Failed++
			s.logger.Warn().Str("place", p.ID).Err(err).Msg("place details failed, keeping base record")
		} else {
			applyDetails(&rec, details, s.baseURL)
		}

		// Upstream types are noisy for the big venues; the name wins.
		if model.IsStadiumName(rec.Name) {
			rec.BusinessCategory = model.Stadium.String()
		}

		res.Records = append(res.Records, rec)
	}

	s.cache.Put(zone.Name, "nearby", res.Records)
	return res, nil
}

// classify decides whether a place is kept and under which category.
// Deny-list first; stadiums and transit hubs pass unconditionally; anything
// else must match the allow-list and clear the relevance floor.
func (s *GoogleSource) classify(p googlePlace) (model.LocationType, bool) {
	all := make([]string, 0, len(p.Types)+1)
	if p.PrimaryType != "" {
		all = append(all, p.PrimaryType)
	}
	all = append(all, p.Types...)

	for _, t := range all {
		if googleDeniedTypes[t] {
			return 0, false
		}
	}

	for _, t := range all {
		if cat, ok := googleTypeCategory[t]; ok && cat == model.Stadium {
			return model.Stadium, true
		}
		if googleTransitTypes[t] {
			return model.Others, true
		}
	}

	var category model.LocationType
	matched := false
	for _, t := range all {
		if cat, ok := googleTypeCategory[t]; ok {
			category, matched = cat, true
			break
		}
	}
	if !matched {
		return 0, false
	}

	rating := 0.0
	if p.Rating != nil {
		rating = *p.Rating
	}
	reviews := 0
	if p.UserRatingCount != nil {
		reviews = *p.UserRatingCount
	}
	if rating >= 2.0 || reviews >= 20 {
		return category, true
	}
	return 0, false
}

func (s *GoogleSource) toRecord(p googlePlace, category model.LocationType) model.BusinessRecord {
	rec := model.BusinessRecord{
		Source:           model.SourceGoogle,
		PrimaryType:      p.PrimaryType,
		Name:             p.DisplayName.Text,
		Types:            strings.Join(p.Types, "|"),
		PriceLevel:       p.PriceLevel,
		Lat:              p.Location.Latitude,
		Lng:              p.Location.Longitude,
		GoogleMapsURI:    p.GoogleMapsURI,
		FormattedAddress: p.FormattedAddress,
		BusinessCategory: category.String(),
		ExternalID:       p.ID,
	}
	if p.Rating != nil {
		rec.Rating = *p.Rating
		rec.HasRating = true
	}
	if p.UserRatingCount != nil {
		rec.UserRatingsTotal = *p.UserRatingCount
		rec.HasRatingsTotal = true
	}
	return rec
}

func (s *GoogleSource) fetchDetails(ctx context.Context, placeID string) (*googleDetails, error) {
	reqURL := s.baseURL + "/places/" + placeID
	var det googleDetails
	err := s.client.GetJSON(ctx, reqURL, map[string]string{
		"X-Goog-Api-Key":   s.apiKey,
		"X-Goog-FieldMask": detailsFieldMask,
	}, &det)
	if err != nil {
		return nil, err
	}
	return &det, nil
}

func applyDetails(rec *model.BusinessRecord, det *googleDetails, baseURL string) {
	if det.RegularOpeningHours != nil {
		rec.OpeningHours = strings.Join(det.RegularOpeningHours.WeekdayDescriptions, "; ")
	}
	rec.Website = det.WebsiteURI
	rec.PhoneNational = det.NationalPhoneNumber
	rec.PhoneInternational = det.InternationalPhoneNumber
	if len(det.Photos) > 0 && det.Photos[0].Name != "" {
		rec.PhotoURI = fmt.Sprintf("%s/%s/media?maxWidthPx=800", baseURL, det.Photos[0].Name)
	}
	if det.PriceRange != nil {
		rec.PriceRangeMin = formatMoney(det.PriceRange.StartPrice)
		rec.PriceRangeMax = formatMoney(det.PriceRange.EndPrice)
	}
}

func formatMoney(m *googleMoney) string {
	if m == nil || m.Units == "" {
		return ""
	}
	if m.CurrencyCode == "" {
		return m.Units
	}
	return m.Units + " " + m.CurrencyCode
}
