package service

import (
	"context"

	"github.com/deppfellow/dealer-dashboard/internal/errs"
	"github.com/deppfellow/dealer-dashboard/internal/repository"
)

// Pagination describes where a TablePage sits in the full result.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// TablePage is one page of a data table.
type TablePage struct {
	Data       []repository.Record `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

// Region is one shaded country on the world map.
type Region struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
	Name  string  `json:"name"`
}

// Marker is one pin on the markers map.
type Marker struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MapData holds either Regions or Markers depending on the requested type.
type MapData struct {
	Regions []Region `json:"regions,omitempty"`
	Markers []Marker `json:"markers,omitempty"`
}

// DataService backs the generic data visualisation endpoints.
type DataService struct {
	store RecordStore
}

func NewDataService(store RecordStore) *DataService {
	return &DataService{store: store}
}

// Table returns one page of any allow-listed table. Hidden columns of the
// matching resource are stripped.
func (s *DataService) Table(ctx context.Context, table string, req repository.PageRequest) (*TablePage, error) {
	if !s.store.KnowsTable(table) {
		return nil, errs.NewBadRequestError("Unknown table", nil, []errs.FieldError{{Field: "table", Error: "is invalid"}})
	}

	page, err := s.store.GetPage(ctx, table, req)
	if err != nil {
		return nil, err
	}

	records := page.Records
	for _, resource := range Resources() {
		if resource.Table != table {
			continue
		}
		for i := range records {
			records[i] = stripHidden(records[i], resource.Hidden)
		}
	}

	return &TablePage{
		Data: records,
		Pagination: Pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: page.Total,
			Pages: page.Pages,
		},
	}, nil
}

// Chart returns the sample chart for kind: line, bar or pie.
func (s *DataService) Chart(kind string) (*Chart, error) {
	switch kind {
	case "line":
		return &Chart{
			Labels: []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
			Datasets: []Series{
				{Label: "Sales 2022", Data: []float64{65, 59, 80, 81, 56, 55, 40, 45, 60, 55, 70, 80}},
				{Label: "Sales 2023", Data: []float64{28, 48, 40, 19, 86, 27, 90, 85, 90, 100, 95, 110}},
			},
		}, nil
	case "bar":
		return &Chart{
			Labels: []string{"Q1", "Q2", "Q3", "Q4"},
			Datasets: []Series{
				{Label: "Revenue", Data: []float64{15000, 20000, 17500, 25000}},
				{Label: "Expenses", Data: []float64{10000, 12000, 9500, 15000}},
			},
		}, nil
	case "pie":
		return &Chart{
			Labels:   []string{"Product A", "Product B", "Product C", "Product D"},
			Datasets: []Series{{Data: []float64{35, 25, 20, 20}}},
		}, nil
	default:
		return nil, errs.NewBadRequestError("Invalid chart type", nil, []errs.FieldError{{Field: "type", Error: "must be one of: line bar pie"}})
	}
}

// Map returns the sample map data for kind: world or markers.
func (s *DataService) Map(kind string) (*MapData, error) {
	switch kind {
	case "world":
		return &MapData{Regions: []Region{
			{ID: "US", Value: 2000, Name: "United States"},
			{ID: "CA", Value: 1200, Name: "Canada"},
			{ID: "GB", Value: 1800, Name: "United Kingdom"},
			{ID: "DE", Value: 1600, Name: "Germany"},
			{ID: "FR", Value: 1400, Name: "France"},
			{ID: "CN", Value: 2200, Name: "China"},
			{ID: "IN", Value: 1900, Name: "India"},
			{ID: "BR", Value: 1100, Name: "Brazil"},
			{ID: "AU", Value: 900, Name: "Australia"},
		}}, nil
	case "markers":
		return &MapData{Markers: []Marker{
			{Lat: 40.7128, Lng: -74.0060, Name: "New York", Value: 2000},
			{Lat: 34.0522, Lng: -118.2437, Name: "Los Angeles", Value: 1700},
			{Lat: 51.5074, Lng: -0.1278, Name: "London", Value: 1800},
			{Lat: 48.8566, Lng: 2.3522, Name: "Paris", Value: 1500},
			{Lat: 35.6762, Lng: 139.6503, Name: "Tokyo", Value: 2200},
			{Lat: 22.3193, Lng: 114.1694, Name: "Hong Kong", Value: 1900},
			{Lat: -33.8688, Lng: 151.2093, Name: "Sydney", Value: 1300},
			{Lat: -37.8136, Lng: 144.9631, Name: "Melbourne", Value: 1100},
		}}, nil
	default:
		return nil, errs.NewBadRequestError("Invalid map type", nil, []errs.FieldError{{Field: "type", Error: "must be one of: world markers"}})
	}
}
