package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/amana-asso/delivery-service/internal/model"
	"github.com/amana-asso/delivery-service/internal/qr"
)

// NotificationService emails each driver their route for an occasion.
// Mail failures are recoverable: one bad recipient never aborts the
// batch.
type NotificationService struct {
	deliveries DeliveryStore
	families   FamilyReader
	drivers    DriverReader
	mailer     Mailer
	links      *qr.LinkBuilder
	log        zerolog.Logger
}

func NewNotificationService(deliveries DeliveryStore, families FamilyReader, drivers DriverReader, mailer Mailer, links *qr.LinkBuilder, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		deliveries: deliveries,
		families:   families,
		drivers:    drivers,
		mailer:     mailer,
		links:      links,
		log:        log,
	}
}

type NotifyError struct {
	DriverID int64  `json:"driver_id"`
	Error    string `json:"error"`
}

type NotifyResult struct {
	Success int           `json:"success"`
	Failed  int           `json:"failed"`
	Errors  []NotifyError `json:"errors"`
}

// NotifyAllDrivers emails every driver holding undelivered assignments
// for the occasion and date.
func (s *NotificationService) NotifyAllDrivers(ctx context.Context, occasion string, date time.Time) (*NotifyResult, error) {
	deliveries, err := s.deliveries.ListByOccasion(ctx, occasion, date)
	if err != nil {
		return nil, err
	}

	byDriver := make(map[int64][]model.Delivery)
	for _, d := range deliveries {
		if d.DriverID == nil || d.Delivered {
			continue
		}
		byDriver[*d.DriverID] = append(byDriver[*d.DriverID], d)
	}

	driverIDs := make([]int64, 0, len(byDriver))
	for id := range byDriver {
		driverIDs = append(driverIDs, id)
	}
	sort.Slice(driverIDs, func(i, j int) bool { return driverIDs[i] < driverIDs[j] })

	result := &NotifyResult{Errors: []NotifyError{}}
	for _, driverID := range driverIDs {
		if err := s.notifyDriver(ctx, driverID, occasion, date, byDriver[driverID]); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, NotifyError{DriverID: driverID, Error: err.Error()})
			s.log.Error().Err(err).Int64("driver_id", driverID).Msg("driver notification failed")
			continue
		}
		result.Success++
	}

	s.log.Info().Int("notified", result.Success).Int("failed", result.Failed).Str("occasion", occasion).Msg("driver notifications sent")
	return result, nil
}

// NotifyDriver emails a single driver their undelivered route.
func (s *NotificationService) NotifyDriver(ctx context.Context, driverID int64, occasion string, date time.Time) error {
	deliveries, err := s.deliveries.ListUndeliveredByDriver(ctx, driverID, occasion, date)
	if err != nil {
		return err
	}
	return s.notifyDriver(ctx, driverID, occasion, date, deliveries)
}

func (s *NotificationService) notifyDriver(ctx context.Context, driverID int64, occasion string, date time.Time, deliveries []model.Delivery) error {
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return fmt.Errorf("driver %d: %w", driverID, ErrNotFound)
	}
	if driver.Email == "" {
		return fmt.Errorf("driver %d has no email address", driverID)
	}
	if len(deliveries) == 0 {
		return nil
	}

	sort.SliceStable(deliveries, func(i, j int) bool {
		return deliveries[i].RouteOrder < deliveries[j].RouteOrder
	})

	subject := fmt.Sprintf("Livraisons %s du %s", occasion, date.Format("02/01/2006"))
	text, htmlBody := s.buildDriverEmail(ctx, driver, occasion, date, deliveries)

	return s.mailer.Send(driver.Email, subject, text, htmlBody)
}

func (s *NotificationService) buildDriverEmail(ctx context.Context, driver *model.Driver, occasion string, date time.Time, deliveries []model.Delivery) (string, string) {
	dateStr := date.Format("2006-01-02")

	var text strings.Builder
	var body strings.Builder

	fmt.Fprintf(&text, "Bonjour %s,\n\n", driver.FullName())
	fmt.Fprintf(&text, "Voici vos livraisons pour %s le %s :\n\n", occasion, date.Format("02/01/2006"))

	fmt.Fprintf(&body, "<p>Bonjour %s,</p>", html.EscapeString(driver.FullName()))
	fmt.Fprintf(&body, "<p>Voici vos livraisons pour <b>%s</b> le <b>%s</b> :</p>", html.EscapeString(occasion), date.Format("02/01/2006"))
	body.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	body.WriteString("<tr><th>#</th><th>Famille</th><th>Adresse</th><th>Téléphone</th><th>Parts</th><th>Statut</th></tr>")

	for _, d := range deliveries {
		name, address, phone := "?", "", ""
		if family, err := s.families.GetStop(ctx, d.FamilyID); err == nil {
			name, address, phone = family.Name, family.Address, family.Phone
		}

		fmt.Fprintf(&text, "%d. %s - %s - %s - %d part(s)\n", d.RouteOrder, name, address, phone, d.PartsCount)
		fmt.Fprintf(&text, "   Livré : %s\n", s.links.StatusURL(d.FamilyID, occasion, dateStr, model.DeliveryStatusDelivered))

		deliveredLink := s.links.StatusURL(d.FamilyID, occasion, dateStr, model.DeliveryStatusDelivered)
		fmt.Fprintf(&body, "<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td><a href=\"%s\">Marquer livré</a></td></tr>",
			d.RouteOrder, html.EscapeString(name), html.EscapeString(address), html.EscapeString(phone), d.PartsCount, deliveredLink)
	}

	body.WriteString("</table>")
	fmt.Fprintf(&text, "\nMerci pour votre engagement.\n")
	body.WriteString("<p>Merci pour votre engagement.</p>")

	return text.String(), body.String()
}
