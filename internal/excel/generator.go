package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/amana-asso/delivery-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders a route workbook: one summary sheet plus one sheet
// per driver with the ordered stops.
func (g *Generator) Generate(sheet model.RouteSheet) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Récapitulatif"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, sheet); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, route := range sheet.Routes {
		sheetName := buildSheetName(route.Driver, usedNames)
		usedNames[sheetName] = struct{}{}

		file.NewSheet(sheetName)
		if err := g.writeRoute(file, sheetName, sheet, route); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, rs model.RouteSheet) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	totalStops := 0
	for _, route := range rs.Routes {
		totalStops += len(route.Stops)
	}

	set("A1", "Occasion")
	set("B1", rs.Occasion)
	set("A2", "Date de livraison")
	set("B2", formatDate(rs.Date))
	set("A3", "Nombre de livreurs")
	set("B3", len(rs.Routes))
	set("A4", "Nombre de livraisons")
	set("B4", totalStops)
	set("A5", "Nombre de parts")
	set("B5", rs.TotalParts)

	tableRow := 7
	set(fmt.Sprintf("A%d", tableRow), "Livreur")
	set(fmt.Sprintf("B%d", tableRow), "Secteur")
	set(fmt.Sprintf("C%d", tableRow), "Livraisons")
	set(fmt.Sprintf("D%d", tableRow), "Parts")

	for i, route := range rs.Routes {
		parts := 0
		for _, stop := range route.Stops {
			parts += stop.Parts
		}
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), route.Driver.FullName())
		set(fmt.Sprintf("B%d", row), route.Driver.SectorName)
		set(fmt.Sprintf("C%d", row), len(route.Stops))
		set(fmt.Sprintf("D%d", row), parts)
	}

	_ = file.SetColWidth(sheet, "A", "A", 32)
	_ = file.SetColWidth(sheet, "B", "B", 24)
	_ = file.SetColWidth(sheet, "C", "D", 14)
	return nil
}

func (g *Generator) writeRoute(file *excelize.File, sheet string, rs model.RouteSheet, route model.DriverRoute) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Livreur")
	set("B1", route.Driver.FullName())
	set("A2", "Secteur")
	set("B2", route.Driver.SectorName)
	set("A3", "Occasion")
	set("B3", rs.Occasion)
	set("A4", "Date de livraison")
	set("B4", formatDate(rs.Date))
	set("A5", "Téléphone")
	set("B5", route.Driver.Phone)

	tableRow := 7
	headers := []string{
		"Ordre",
		"Famille",
		"Adresse",
		"Téléphone",
		"Parts",
		"Jouets",
		"Statut",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, stop := range route.Stops {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), stop.Order)
		set(fmt.Sprintf("B%d", row), stop.FamilyName)
		set(fmt.Sprintf("C%d", row), stop.Address)
		set(fmt.Sprintf("D%d", row), stop.Phone)
		set(fmt.Sprintf("E%d", row), stop.Parts)
		set(fmt.Sprintf("F%d", row), formatBool(stop.WithChild))
		set(fmt.Sprintf("G%d", row), string(stop.Status))
	}

	_ = file.SetColWidth(sheet, "A", "A", 8)
	_ = file.SetColWidth(sheet, "B", "B", 28)
	_ = file.SetColWidth(sheet, "C", "C", 42)
	_ = file.SetColWidth(sheet, "D", "D", 18)
	_ = file.SetColWidth(sheet, "E", "G", 12)
	return nil
}

func buildSheetName(driver model.Driver, used map[string]struct{}) string {
	base := strings.TrimSpace(driver.FullName())
	if base == "" {
		base = fmt.Sprintf("Livreur %d", driver.ID)
	}
	base = sanitizeSheetName(base)

	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Feuille"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Feuille"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatBool(value bool) string {
	if value {
		return "Oui"
	}
	return "Non"
}
