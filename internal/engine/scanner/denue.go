package scanner

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/phuslu/log"

	"github.com/turismolocal/poiscan/internal/model"
)

const denueBaseURL = "https://www.inegi.org.mx/app/api/denue/v1/consulta"

// denueRecord mirrors the DENUE response shape: a flat list of businesses
// with capitalized Spanish field names and stringly-typed coordinates.
type denueRecord struct {
	ID             string `json:"Id"`
	Nombre         string `json:"Nombre"`
	RazonSocial    string `json:"Razon_social"`
	ClaseActividad string `json:"Clase_actividad"`
	Calle          string `json:"Calle"`
	NumExterior    string `json:"Num_Exterior"`
	Colonia        string `json:"Colonia"`
	CP             string `json:"CP"`
	Ubicacion      string `json:"Ubicacion"`
	Telefono       string `json:"Telefono"`
	SitioInternet  string `json:"Sitio_internet"`
	Tipo           string `json:"Tipo"`
	Longitud       string `json:"Longitud"`
	Latitud        string `json:"Latitud"`
}

// DenueSource scans zones against the INEGI DENUE directory: one request
// per Spanish keyword, fanned out in bounded batches per zone.
type DenueSource struct {
	client    *Client
	token     string
	baseURL   string
	queries   []model.KeywordQuery
	batchSize int
	cache     *zoneCache
	logger    *log.Logger
}

func NewDenueSource(client *Client, token string, batchSize int, cache *zoneCache, logger *log.Logger) *DenueSource {
	if batchSize <= 0 {
		batchSize = 3
	}
	return &DenueSource{
		client:    client,
		token:     token,
		baseURL:   denueBaseURL,
		queries:   model.DenueQueries(),
		batchSize: batchSize,
		cache:     cache,
		logger:    logger,
	}
}

func (s *DenueSource) Name() string { return model.SourceINEGI }

func (s *DenueSource) Validate() error {
	if s.token == "" {
		return fmt.Errorf("denue token: %w", ErrMissingCredential)
	}
	return nil
}

// fetchResult is the per-keyword fan-out outcome. Errors stay visible here
// so the zone result can report a failure count instead of silently
// coercing everything to an empty list.
type fetchResult struct {
	Query   model.KeywordQuery
	Records []model.BusinessRecord
	Err     error
}

// FetchZone runs all keyword queries for a zone, category by category,
// fanning each category's keywords out in batches of batchSize and joining
// between batches. A failed keyword is counted and skipped; it never aborts
// the zone. Fully-fetched categories are memoized per zone.
func (s *DenueSource) FetchZone(ctx context.Context, zone model.Zone) (ZoneResult, error) {
	byCategory := make(map[model.LocationType][]model.KeywordQuery)
	var order []model.LocationType
	for _, q := range s.queries {
		if _, seen := byCategory[q.Category]; !seen {
			order = append(order, q.Category)
		}
		byCategory[q.Category] = append(byCategory[q.Category], q)
	}

	var res ZoneResult
	for _, cat := range order {
		if recs, ok := s.cache.Get(zone.Name, cat.String()); ok {
			res.Records = append(res.Records, recs...)
			continue
		}

		records, failed := s.fetchCategory(ctx, zone, byCategory[cat])
		res.Failed += failed
		res.Records = append(res.Records, records...)
		if failed == 0 {
			s.cache.Put(zone.Name, cat.String(), records)
		}
	}
	return res, nil
}

// fetchCategory fans the category's keywords out in bounded batches.
func (s *DenueSource) fetchCategory(ctx context.Context, zone model.Zone, queries []model.KeywordQuery) (records []model.BusinessRecord, failed int) {
	for start := 0; start < len(queries); start += s.batchSize {
		end := min(start+s.batchSize, len(queries))
		batch := queries[start:end]

		results := make([]fetchResult, len(batch))
		var wg sync.WaitGroup
		for i, q := range batch {
			wg.Add(1)
			go func(i int, q model.KeywordQuery) {
				defer wg.Done()
				recs, err := s.fetchKeyword(ctx, zone, q)
				results[i] = fetchResult{Query: q, Records: recs, Err: err}
			}(i, q)
		}
		wg.Wait()

		for _, r := range results {
			if r.Err != nil {
				failed++
				s.logger.Warn().Str("zone", zone.Name).Str("keyword", r.Query.Keyword).
					Err(r.Err).Msg("keyword query failed")
				continue
			}
			records = append(records, r.Records...)
		}
	}
	return records, failed
}

func (s *DenueSource) fetchKeyword(ctx context.Context, zone model.Zone, q model.KeywordQuery) ([]model.BusinessRecord, error) {
	reqURL := fmt.Sprintf("%s/Buscar/%s/%s,%s/%d/%s",
		s.baseURL,
		url.PathEscape(q.Keyword),
		strconv.FormatFloat(zone.Lat, 'f', 6, 64),
		strconv.FormatFloat(zone.Lng, 'f', 6, 64),
		zone.RadiusMeters,
		url.PathEscape(s.token),
	)

	var rows []denueRecord
	if err := s.client.GetJSON(ctx, reqURL, nil, &rows); err != nil {
		return nil, err
	}

	recs := make([]model.BusinessRecord, 0, len(rows))
	for _, row := range rows {
		rec, ok := s.toRecord(row)
		if !ok {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// toRecord normalizes one DENUE row. Rows without parseable coordinates
// are dropped. Rating data does not exist in DENUE; the Has* flags stay
// false and the CSV codec renders N/A.
func (s *DenueSource) toRecord(row denueRecord) (model.BusinessRecord, bool) {
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(row.Latitud), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(row.Longitud), 64)
	if errLat != nil || errLng != nil {
		return model.BusinessRecord{}, false
	}

	category := model.ClassifyActivity(row.ClaseActividad)
	name := row.Nombre
	if name == "" {
		name = row.RazonSocial
	}
	if model.IsStadiumName(name) {
		category = model.Stadium
	}

	return model.BusinessRecord{
		Source:           model.SourceINEGI,
		PrimaryType:      row.ClaseActividad,
		Name:             name,
		Types:            strings.TrimRight(row.ClaseActividad+"|"+row.Tipo, "|"),
		PriceLevel:       "N/A",
		PriceRangeMin:    "N/A",
		PriceRangeMax:    "N/A",
		Lat:              lat,
		Lng:              lng,
		PhoneNational:    row.Telefono,
		Website:          row.SitioInternet,
		FormattedAddress: denueAddress(row),
		BusinessCategory: category.String(),
		ExternalID:       row.ID,
	}, true
}

func denueAddress(row denueRecord) string {
	if row.Ubicacion != "" {
		return row.Ubicacion
	}
	parts := []string{}
	street := strings.TrimSpace(row.Calle + " " + row.NumExterior)
	if street != "" {
		parts = append(parts, street)
	}
	if row.Colonia != "" {
		parts = append(parts, row.Colonia)
	}
	if row.CP != "" {
		parts = append(parts, "CP "+row.CP)
	}
	return strings.Join(parts, ", ")
}
