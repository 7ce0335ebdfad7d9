package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/amana-asso/delivery-service/internal/model"
)

// RouteSheetRenderer turns an assembled route sheet into a document.
type RouteSheetRenderer interface {
	Generate(sheet model.RouteSheet) ([]byte, error)
}

// ExportService assembles route sheets for an occasion and renders
// them as spreadsheet or PDF documents.
type ExportService struct {
	deliveries DeliveryStore
	families   FamilyReader
	drivers    DriverReader
	excel      RouteSheetRenderer
	pdf        RouteSheetRenderer
	log        zerolog.Logger
}

func NewExportService(deliveries DeliveryStore, families FamilyReader, drivers DriverReader, excel, pdf RouteSheetRenderer, log zerolog.Logger) *ExportService {
	return &ExportService{
		deliveries: deliveries,
		families:   families,
		drivers:    drivers,
		excel:      excel,
		pdf:        pdf,
		log:        log,
	}
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *ExportService) ExportWorkbook(ctx context.Context, occasion string, date time.Time) (*ExportResult, error) {
	sheet, err := s.BuildRouteSheet(ctx, occasion, date)
	if err != nil {
		return nil, err
	}

	content, err := s.excel.Generate(*sheet)
	if err != nil {
		return nil, err
	}
	return &ExportResult{FileName: buildFileName(occasion, date, "xlsx"), Content: content}, nil
}

func (s *ExportService) ExportPDF(ctx context.Context, occasion string, date time.Time) (*ExportResult, error) {
	sheet, err := s.BuildRouteSheet(ctx, occasion, date)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Generate(*sheet)
	if err != nil {
		return nil, err
	}
	return &ExportResult{FileName: buildFileName(occasion, date, "pdf"), Content: content}, nil
}

// BuildRouteSheet groups the occasion's assignments per driver in
// visiting order and enriches each stop with family details. Returns
// ErrNotFound when no assignment exists for the occasion.
func (s *ExportService) BuildRouteSheet(ctx context.Context, occasion string, date time.Time) (*model.RouteSheet, error) {
	if occasion == "" {
		return nil, fmt.Errorf("%w: occasion is required", ErrInvalidInput)
	}

	deliveries, err := s.deliveries.ListByOccasion(ctx, occasion, date)
	if err != nil {
		return nil, err
	}
	if len(deliveries) == 0 {
		return nil, ErrNotFound
	}

	byDriver := make(map[int64][]model.Delivery)
	totalParts := 0
	for _, d := range deliveries {
		totalParts += d.PartsCount
		if d.DriverID == nil {
			continue
		}
		byDriver[*d.DriverID] = append(byDriver[*d.DriverID], d)
	}

	driverIDs := make([]int64, 0, len(byDriver))
	for id := range byDriver {
		driverIDs = append(driverIDs, id)
	}
	sort.Slice(driverIDs, func(i, j int) bool { return driverIDs[i] < driverIDs[j] })

	sheet := &model.RouteSheet{
		Occasion:   occasion,
		Date:       date,
		TotalParts: totalParts,
	}

	for _, driverID := range driverIDs {
		driver, err := s.drivers.GetByID(ctx, driverID)
		if err != nil {
			s.log.Warn().Int64("driver_id", driverID).Msg("driver missing, skipping route")
			continue
		}

		rows := byDriver[driverID]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].RouteOrder < rows[j].RouteOrder })

		route := model.DriverRoute{Driver: *driver}
		for _, d := range rows {
			stop := model.RouteStop{
				Order:     d.RouteOrder,
				FamilyID:  d.FamilyID,
				Parts:     d.PartsCount,
				WithChild: d.WithChild,
				Status:    d.Status(),
			}
			if family, err := s.families.GetStop(ctx, d.FamilyID); err == nil {
				stop.FamilyName = family.Name
				stop.Address = family.Address
				stop.Phone = family.Phone
			}
			route.Stops = append(route.Stops, stop)
		}
		sheet.Routes = append(sheet.Routes, route)
	}

	return sheet, nil
}

func buildFileName(occasion string, date time.Time, ext string) string {
	name := sanitizeFileName(occasion)
	if name == "" {
		name = "livraisons"
	}
	return fmt.Sprintf("livraisons-%s-%s.%s", name, date.Format("20060102"), ext)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
